package vault

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store keeps documents in an S3 bucket under a key prefix. Original
// filenames and content types ride along as object metadata.
type S3Store struct {
	client    *s3.Client
	bucket    string
	prefix    string
	maxSize   int64
	urlExpiry time.Duration
}

// NewS3Store creates an S3-backed vault.
//
// Parameters:
//   - client: AWS S3 client from aws-sdk-go-v2
//   - bucket: S3 bucket name
//   - prefix: key prefix for documents (e.g. "vault/")
//   - maxSize: maximum document size in bytes (0 = no limit)
func NewS3Store(client *s3.Client, bucket, prefix string, maxSize int64) *S3Store {
	return &S3Store{
		client:    client,
		bucket:    bucket,
		prefix:    prefix,
		maxSize:   maxSize,
		urlExpiry: 24 * time.Hour,
	}
}

// WithURLExpiry sets how long presigned URLs are valid.
func (s *S3Store) WithURLExpiry(d time.Duration) *S3Store {
	s.urlExpiry = d
	return s
}

// Save uploads a document to S3 and returns its id.
func (s *S3Store) Save(filename, contentType string, size int64, r io.Reader) (string, error) {
	if s.maxSize > 0 && size > s.maxSize {
		return "", ErrTooLarge
	}

	id := generateID()
	key := s.prefix + id

	// PutObject needs a seekable body, so buffer the document. The
	// size limit bounds the buffer.
	var buf bytes.Buffer
	if s.maxSize > 0 {
		limited := io.LimitReader(r, s.maxSize+1)
		n, err := io.Copy(&buf, limited)
		if err != nil {
			return "", err
		}
		if n > s.maxSize {
			return "", ErrTooLarge
		}
	} else {
		if _, err := io.Copy(&buf, r); err != nil {
			return "", err
		}
	}

	_, err := s.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"original-filename": filename,
		},
	})
	if err != nil {
		return "", err
	}

	return id, nil
}

// Open fetches a document from S3 with a presigned direct-access URL.
func (s *S3Store) Open(id string) (*Document, error) {
	if !validID(id) {
		return nil, ErrBadID
	}
	key := s.prefix + id

	head, err := s.client.HeadObject(context.Background(), &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, ErrNotFound
	}

	obj, err := s.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, ErrNotFound
	}

	info := Info{
		ID:          id,
		Filename:    id,
		ContentType: "application/octet-stream",
		CreatedAt:   aws.ToTime(head.LastModified),
	}
	if fn, ok := head.Metadata["original-filename"]; ok {
		info.Filename = fn
	}
	if head.ContentType != nil {
		info.ContentType = *head.ContentType
	}
	if head.ContentLength != nil {
		info.Size = *head.ContentLength
	}

	url := ""
	presignClient := s3.NewPresignClient(s.client)
	presigned, err := presignClient.PresignGetObject(context.Background(),
		&s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		},
		s3.WithPresignExpires(s.urlExpiry),
	)
	if err == nil {
		url = presigned.URL
	}

	return &Document{Info: info, URL: url, Reader: obj.Body}, nil
}

// List returns metadata for every stored document, newest first.
func (s *S3Store) List() ([]Info, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	var infos []Info
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(context.Background())
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			info := Info{
				ID:        strings.TrimPrefix(*obj.Key, s.prefix),
				CreatedAt: aws.ToTime(obj.LastModified),
			}
			if obj.Size != nil {
				info.Size = *obj.Size
			}
			infos = append(infos, info)
		}
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})
	return infos, nil
}

// Delete removes a document from the bucket.
func (s *S3Store) Delete(id string) error {
	if !validID(id) {
		return ErrBadID
	}
	key := s.prefix + id

	if _, err := s.client.HeadObject(context.Background(), &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return ErrNotFound
	}

	_, err := s.client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}
