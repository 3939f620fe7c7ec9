package vault

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// DiskStore keeps documents on the local filesystem. Contents live at
// <dir>/<id>, metadata in a JSON sidecar at <dir>/<id>.meta, so a
// restarted process can still list and open everything.
type DiskStore struct {
	dir     string
	maxSize int64

	mu   sync.RWMutex
	docs map[string]*Info
}

// NewDiskStore creates a disk-backed vault rooted at dir. maxSize of 0
// means no limit. Existing documents in dir are picked up.
func NewDiskStore(dir string, maxSize int64) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	s := &DiskStore{
		dir:     dir,
		maxSize: maxSize,
		docs:    make(map[string]*Info),
	}
	if err := s.loadExisting(); err != nil {
		return nil, err
	}
	return s, nil
}

// loadExisting rebuilds the in-memory index from metadata sidecars.
func (s *DiskStore) loadExisting() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".meta") {
			continue
		}
		id := strings.TrimSuffix(name, ".meta")
		info, err := s.loadMeta(id)
		if err != nil {
			continue
		}
		s.docs[id] = info
	}
	return nil
}

// Save stores a document and returns its id.
func (s *DiskStore) Save(filename, contentType string, size int64, r io.Reader) (string, error) {
	if s.maxSize > 0 && size > s.maxSize {
		return "", ErrTooLarge
	}

	id := generateID()
	path := filepath.Join(s.dir, id)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var reader io.Reader = r
	if s.maxSize > 0 {
		reader = io.LimitReader(r, s.maxSize+1) // +1 to detect overflow
	}

	written, err := io.Copy(f, reader)
	if err != nil {
		os.Remove(path)
		return "", err
	}
	if s.maxSize > 0 && written > s.maxSize {
		os.Remove(path)
		return "", ErrTooLarge
	}

	info := &Info{
		ID:          id,
		Filename:    filename,
		ContentType: contentType,
		Size:        written,
		CreatedAt:   time.Now(),
	}

	s.mu.Lock()
	s.docs[id] = info
	s.mu.Unlock()

	if err := s.saveMeta(id, info); err != nil {
		return "", err
	}
	return id, nil
}

// Open returns the document and a reader over its contents.
func (s *DiskStore) Open(id string) (*Document, error) {
	if !validID(id) {
		return nil, ErrBadID
	}

	s.mu.RLock()
	info, ok := s.docs[id]
	s.mu.RUnlock()

	if !ok {
		var err error
		info, err = s.loadMeta(id)
		if err != nil {
			return nil, ErrNotFound
		}
	}

	f, err := os.Open(filepath.Join(s.dir, id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &Document{Info: *info, Reader: f}, nil
}

// List returns metadata for every stored document, newest first.
func (s *DiskStore) List() ([]Info, error) {
	s.mu.RLock()
	infos := make([]Info, 0, len(s.docs))
	for _, info := range s.docs {
		infos = append(infos, *info)
	}
	s.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})
	return infos, nil
}

// Delete removes a document and its metadata.
func (s *DiskStore) Delete(id string) error {
	if !validID(id) {
		return ErrBadID
	}

	s.mu.Lock()
	_, ok := s.docs[id]
	delete(s.docs, id)
	s.mu.Unlock()

	if !ok {
		if _, err := os.Stat(filepath.Join(s.dir, id)); os.IsNotExist(err) {
			return ErrNotFound
		}
	}

	os.Remove(filepath.Join(s.dir, id))
	os.Remove(s.metaPath(id))
	return nil
}

func (s *DiskStore) metaPath(id string) string {
	return filepath.Join(s.dir, id+".meta")
}

func (s *DiskStore) saveMeta(id string, info *Info) error {
	data, err := json.Marshal(info)
	if err != nil {
		return err
	}
	return os.WriteFile(s.metaPath(id), data, 0644)
}

func (s *DiskStore) loadMeta(id string) (*Info, error) {
	data, err := os.ReadFile(s.metaPath(id))
	if err != nil {
		return nil, err
	}
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// generateID generates a cryptographically random document id.
func generateID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
