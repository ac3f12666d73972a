// Package upload persists user-supplied documents and returns a durable URL
// for them.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Document is a binary file received from a client.
type Document struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// Uploader stores a document and returns the URL it can be fetched from.
type Uploader interface {
	Upload(ctx context.Context, doc Document) (string, error)
}

// ErrUnsupportedType is returned for files that are not PDF or a raster image.
var ErrUnsupportedType = errors.New("unsupported document type")

// allowedExt lists the extensions a proof or product image may have.
var allowedExt = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

// DiskUploader writes documents under a local directory that is served
// statically at BaseURL.
type DiskUploader struct {
	dir     string
	baseURL string
}

// NewDiskUploader creates dir if needed and returns an uploader writing to it.
func NewDiskUploader(dir, baseURL string) (*DiskUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &DiskUploader{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Upload copies doc.Body to a new file named by a random UUID plus the
// original extension, which must be one of allowedExt.
func (u *DiskUploader) Upload(ctx context.Context, doc Document) (string, error) {
	if doc.Body == nil {
		return "", fmt.Errorf("document has no content")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(doc.Filename))
	if !allowedExt[ext] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, doc.Filename)
	}

	name := uuid.New().String() + ext
	path := filepath.Join(u.dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := io.Copy(f, doc.Body); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}

	log.Printf("Stored upload %s (%s)", name, doc.ContentType)
	return u.baseURL + "/" + name, nil
}
