// Package storage persists uploaded article images and returns the public
// URL they are served from.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/newsroom-api/internal/config"
	"github.com/newsroom-api/internal/validation"
	"github.com/rs/zerolog"
)

// ImageStore saves an uploaded image under name and returns its public URL
type ImageStore interface {
	Save(ctx context.Context, name string, r io.Reader, contentType string) (string, error)
}

// FileName builds the stored name of an upload: the upload time in unix
// milliseconds, a hyphen, then the original name with everything except
// ASCII letters, digits and dots removed.
func FileName(now time.Time, original string) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), validation.SanitizeFileName(original))
}

// New builds the image store selected by the upload configuration
func New(cfg config.UploadConfig, log zerolog.Logger) (ImageStore, error) {
	switch cfg.Driver {
	case "", config.UploadDriverLocal:
		return NewLocalStore(cfg.Dir, cfg.URLPrefix), nil
	case config.UploadDriverS3:
		return NewS3Store(cfg.S3, log), nil
	default:
		return nil, fmt.Errorf("unknown upload driver %q", cfg.Driver)
	}
}
