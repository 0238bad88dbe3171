package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"carhire-backend/internal/logger"
)

// LocalStorageService stores contract documents on the local filesystem and
// serves them through the HTTP download endpoint.
type LocalStorageService struct {
	baseURL   string
	uploadDir string
}

func NewLocalStorageService(baseURL, uploadDir string) (*LocalStorageService, error) {
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStorageService{
		baseURL:   strings.TrimRight(baseURL, "/"),
		uploadDir: uploadDir,
	}, nil
}

// path resolves a storage key, refusing keys that escape the upload dir.
func (s *LocalStorageService) path(key string) (string, error) {
	clean := filepath.Clean(key)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key: %s", key)
	}
	return filepath.Join(s.uploadDir, clean), nil
}

func (s *LocalStorageService) SaveFile(key string, reader io.Reader) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	logger.Debug("Stored document", "key", key)
	return nil
}

func (s *LocalStorageService) ReadFile(key string) (io.ReadCloser, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

func (s *LocalStorageService) FileExists(ctx context.Context, key string) (bool, int64, error) {
	p, err := s.path(key)
	if err != nil {
		return false, 0, err
	}
	info, err := os.Stat(p)
	if os.IsNotExist(err) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, err
	}
	return true, info.Size(), nil
}

func (s *LocalStorageService) DeleteFile(ctx context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *LocalStorageService) DownloadURL(key string) string {
	return fmt.Sprintf("%s/api/v1/contracts/files/%s", s.baseURL, key)
}
