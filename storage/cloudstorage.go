package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/hiremind/backend/config"
)

// resumeObjectPrefix is the folder resume objects are written under
const resumeObjectPrefix = "resumes/"

// CloudFileStore keeps resume files in a Google Cloud Storage bucket
type CloudFileStore struct {
	client     *storage.Client
	bucketName string
}

var _ FileStore = (*CloudFileStore)(nil)

// NewCloudFileStore creates a new Cloud Storage client
func NewCloudFileStore(ctx context.Context, cfg *config.Config) (*CloudFileStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloud Storage client: %w", err)
	}

	return &CloudFileStore{
		client:     client,
		bucketName: cfg.CVBucketName,
	}, nil
}

// Close closes the Cloud Storage client
func (c *CloudFileStore) Close() error {
	return c.client.Close()
}

// Save uploads data under a fresh object name and returns the object name
func (c *CloudFileStore) Save(ctx context.Context, originalName, contentType string, data []byte) (string, error) {
	objectName := resumeObjectPrefix + newFileName(originalName)

	wc := c.client.Bucket(c.bucketName).Object(objectName).NewWriter(ctx)
	wc.ContentType = contentType
	if wc.ContentType == "" {
		wc.ContentType = contentTypeFor(originalName)
	}

	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}

	return objectName, nil
}

// Read downloads the object content
func (c *CloudFileStore) Read(ctx context.Context, key string) ([]byte, error) {
	rc, err := c.client.Bucket(c.bucketName).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to create reader: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// Delete removes the object
func (c *CloudFileStore) Delete(ctx context.Context, key string) error {
	if err := c.client.Bucket(c.bucketName).Object(key).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// List returns the objects under the resume prefix
func (c *CloudFileStore) List(ctx context.Context) ([]FileInfo, error) {
	it := c.client.Bucket(c.bucketName).Objects(ctx, &storage.Query{Prefix: resumeObjectPrefix})

	var files []FileInfo
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		if strings.HasSuffix(attrs.Name, "/") {
			continue
		}
		files = append(files, FileInfo{Key: attrs.Name, Size: attrs.Size})
	}
	return files, nil
}
