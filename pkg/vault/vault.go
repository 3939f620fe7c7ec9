// Package vault stores the documents users attach to conversations.
// Backends implement Store; DiskStore keeps documents on the local
// filesystem and S3Store keeps them in an S3 bucket.
package vault

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"
)

// ErrNotFound is returned when a document doesn't exist.
var ErrNotFound = errors.New("vault: document not found")

// ErrTooLarge is returned when a document exceeds the size limit.
var ErrTooLarge = errors.New("vault: document too large")

// ErrBadID is returned for malformed document ids.
var ErrBadID = errors.New("vault: malformed document id")

// Store is the interface for vault storage backends.
type Store interface {
	// Save stores a document and returns its id.
	Save(filename string, contentType string, size int64, r io.Reader) (id string, err error)

	// Open returns the document and a reader over its contents.
	// The caller must close the returned document.
	Open(id string) (*Document, error)

	// List returns metadata for every stored document, newest first.
	List() ([]Info, error)

	// Delete removes a document. Deleting an unknown id returns
	// ErrNotFound.
	Delete(id string) error
}

// Info is document metadata.
type Info struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

// Document is a stored document opened for reading.
type Document struct {
	Info

	// URL is a direct-access URL when the backend provides one
	// (presigned S3 URL). Empty for disk storage.
	URL string

	// Reader provides the document contents. May be nil when only
	// metadata was requested.
	Reader io.ReadCloser
}

// Close closes the document reader if open.
func (d *Document) Close() error {
	if d.Reader != nil {
		return d.Reader.Close()
	}
	return nil
}

// validID reports whether id looks like one of our hex ids. Anything
// else is rejected before it can reach the filesystem or bucket, which
// also closes the path-traversal hole for the disk backend.
func validID(id string) bool {
	if id == "" {
		return false
	}
	_, err := hex.DecodeString(id)
	return err == nil
}

// Handler returns an http.Handler for the vault endpoint: POST saves a
// multipart document, GET lists stored documents.
func Handler(store Store) http.Handler {
	return HandlerWithLimit(store, 10<<20)
}

// HandlerWithLimit returns a vault handler with a request size limit.
func HandlerWithLimit(store Store, maxSize int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			infos, err := store.List()
			if err != nil {
				http.Error(w, "List failed", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(infos)

		case http.MethodPost:
			// Limit the body before parsing to bound memory.
			r.Body = http.MaxBytesReader(w, r.Body, maxSize)

			if err := r.ParseMultipartForm(32 << 20); err != nil {
				if err.Error() == "http: request body too large" {
					http.Error(w, "Document too large", http.StatusRequestEntityTooLarge)
					return
				}
				http.Error(w, "Failed to parse form", http.StatusBadRequest)
				return
			}

			file, header, err := r.FormFile("file")
			if err != nil {
				http.Error(w, "No file provided", http.StatusBadRequest)
				return
			}
			defer file.Close()

			id, err := store.Save(
				header.Filename,
				header.Header.Get("Content-Type"),
				header.Size,
				file,
			)
			if err != nil {
				if errors.Is(err, ErrTooLarge) {
					http.Error(w, "Document too large", http.StatusRequestEntityTooLarge)
					return
				}
				http.Error(w, "Save failed", http.StatusInternalServerError)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"id": id})

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
}
