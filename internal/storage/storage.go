// Package storage keeps uploaded images (product variants, banners, avatars)
// on local disk or in an S3-compatible bucket.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"shoe-store/internal/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrUnsupportedImage = errors.New("only jpeg, png and webp images are accepted")
	ErrImageTooLarge    = errors.New("image exceeds the upload size limit")
	ErrEmptyImage       = errors.New("image is empty")
)

// Folders images are grouped under
const (
	FolderVariants = "variants"
	FolderBanners  = "banners"
	FolderAvatars  = "avatars"
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ImageStore saves images and returns the public URL they are served from
type ImageStore interface {
	Save(ctx context.Context, folder string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// Image is a validated upload held in memory
type Image struct {
	Data        []byte
	ContentType string
	Extension   string
}

// ReadImage reads at most maxBytes from r and sniffs the content type.
// The declared multipart content type is not trusted.
func ReadImage(r io.Reader, maxBytes int64) (*Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	if int64(len(data)) > maxBytes {
		return nil, ErrImageTooLarge
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, ErrUnsupportedImage
	}

	return &Image{Data: data, ContentType: contentType, Extension: ext}, nil
}

func (i *Image) reader() io.Reader {
	return bytes.NewReader(i.Data)
}

func newKey(folder, ext string) string {
	return path.Join(folder, uuid.NewString()+ext)
}

// keyFromURL strips the public base URL. ok is false for URLs this store did not produce.
func keyFromURL(baseURL, url string) (string, bool) {
	prefix := strings.TrimSuffix(baseURL, "/") + "/"
	if url == "" || !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	if key == "" || strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}

// New builds the store selected by cfg.Driver
func New(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (ImageStore, error) {
	switch cfg.Driver {
	case "", "disk":
		return NewDiskStorage(cfg.UploadDir, cfg.PublicBaseURL, cfg.MaxUploadBytes)
	case "s3":
		s3Store, err := NewS3Storage(&cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := s3Store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s3Store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
