package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gaethering/internal/config"
)

// ObjectStore abstracts where uploaded files end up. The filesystem store is
// the only implementation today; an S3-style store can slot in behind the
// same interface.
type ObjectStore interface {
	Put(ctx context.Context, key string, contentType string, data []byte) (string, error)
	Remove(ctx context.Context, key string) error
}

const DefaultUploadDir = "/tmp/gaethering/uploads"

// FileStore writes objects under a local directory and serves them through
// the /media static route.
type FileStore struct {
	baseDir string
	baseURL string
}

func NewFileStore(cfg *config.Config) *FileStore {
	baseDir := DefaultUploadDir
	baseURL := "http://localhost:8080/media"
	if cfg != nil {
		if cfg.UploadDir != "" {
			baseDir = cfg.UploadDir
		}
		if cfg.PublicBaseURL != "" {
			baseURL = cfg.PublicBaseURL
		}
	}
	return &FileStore{
		baseDir: baseDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// BaseDir exposes the root directory so the server can mount it as a static route.
func (s *FileStore) BaseDir() string {
	return s.baseDir
}

func (s *FileStore) Put(_ context.Context, key string, _ string, data []byte) (string, error) {
	if !isSafeKey(key) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	fullPath := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return "", err
	}
	if err := os.WriteFile(fullPath, data, 0o600); err != nil {
		return "", err
	}
	return s.baseURL + "/" + key, nil
}

func (s *FileStore) Remove(_ context.Context, key string) error {
	if !isSafeKey(key) {
		return fmt.Errorf("invalid object key %q", key)
	}
	err := os.Remove(filepath.Join(s.baseDir, filepath.FromSlash(key)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// isSafeKey rejects keys that could escape the base directory.
func isSafeKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") {
		return false
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return false
		}
	}
	return true
}
