package storage

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// resumeFilePrefix marks files written by the upload flow
const resumeFilePrefix = "resume-"

// FileInfo describes one stored file
type FileInfo struct {
	Key  string
	Size int64
}

// FileStore stores uploaded resume files. Keys are what Save returns and what
// resume records keep in FilePath.
type FileStore interface {
	Save(ctx context.Context, originalName, contentType string, data []byte) (string, error)
	Read(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]FileInfo, error)
	Close() error
}

// newFileName returns a unique resume file name keeping the original extension
func newFileName(originalName string) string {
	return resumeFilePrefix + uuid.NewString() + strings.ToLower(filepath.Ext(originalName))
}

// IsResumeFile reports whether key names a file written by the upload flow
func IsResumeFile(key string) bool {
	name := path.Base(filepath.ToSlash(key))
	if !strings.HasPrefix(name, resumeFilePrefix) {
		return false
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".pdf", ".doc", ".docx", ".txt":
		return true
	}
	return false
}

func contentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
