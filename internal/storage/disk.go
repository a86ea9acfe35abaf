package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DiskStorage writes images under a local directory served at PublicBaseURL
type DiskStorage struct {
	root     string
	baseURL  string
	maxBytes int64
}

// NewDiskStorage creates root if needed
func NewDiskStorage(root, baseURL string, maxBytes int64) (*DiskStorage, error) {
	if root == "" {
		return nil, errors.New("upload directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	return &DiskStorage{root: root, baseURL: strings.TrimSuffix(baseURL, "/"), maxBytes: maxBytes}, nil
}

// Root is the directory the HTTP file server should expose
func (s *DiskStorage) Root() string {
	return s.root
}

func (s *DiskStorage) Save(ctx context.Context, folder string, r io.Reader) (string, error) {
	img, err := ReadImage(r, s.maxBytes)
	if err != nil {
		return "", err
	}

	key := newKey(folder, img.Extension)
	target := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create image folder: %w", err)
	}
	if err := os.WriteFile(target, img.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	return s.baseURL + "/" + key, nil
}

// Delete removes the file behind url. Missing files and foreign URLs are ignored.
func (s *DiskStorage) Delete(ctx context.Context, url string) error {
	key, ok := keyFromURL(s.baseURL, url)
	if !ok {
		return nil
	}

	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}
