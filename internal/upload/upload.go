// Package upload abstracts durable media storage. Callers hand over a local
// temporary file and are responsible for removing it afterwards on both the
// success and failure paths.
package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// ErrInvalidFolder is returned when a destination folder name contains path
// separators or traversal elements.
var ErrInvalidFolder = errors.New("invalid folder name")

// Uploader stores a local file under a destination folder and returns a
// durable HTTPS URL for it.
type Uploader interface {
	Upload(ctx context.Context, localPath, folder string) (string, error)
}

// validFolder reports whether folder is a single plain path element. Names
// with separators or dot elements would escape the upload root when joined.
func validFolder(folder string) bool {
	if folder == "" || folder == "." || folder == ".." {
		return false
	}
	return !strings.ContainsAny(folder, `/\`)
}

// LocalUploader copies files into a directory served at a public base URL.
// It stands in for hosted media services in development and self-hosted
// deployments.
type LocalUploader struct {
	dir     string
	baseURL string
}

// NewLocalUploader creates a LocalUploader writing under dir, with URLs
// rooted at baseURL.
func NewLocalUploader(dir, baseURL string) *LocalUploader {
	return &LocalUploader{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

// Upload copies the file into <dir>/<folder>/ under a random name, keeping
// the original extension, and returns its public URL. The source file is
// not removed; that remains the caller's job.
func (u *LocalUploader) Upload(_ context.Context, localPath, folder string) (string, error) {
	if !validFolder(folder) {
		return "", errors.Wrapf(ErrInvalidFolder, "folder %q", folder)
	}

	src, err := os.Open(localPath)
	if err != nil {
		return "", errors.Wrap(err, "open source file")
	}
	defer src.Close()

	name := uuid.New().String() + filepath.Ext(localPath)
	destDir := filepath.Join(u.dir, folder)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", errors.Wrap(err, "create destination dir")
	}

	dest, err := os.Create(filepath.Join(destDir, name))
	if err != nil {
		return "", errors.Wrap(err, "create destination file")
	}
	defer dest.Close()

	if _, err := io.Copy(dest, src); err != nil {
		return "", errors.Wrap(err, "copy file")
	}

	return fmt.Sprintf("%s/%s/%s", u.baseURL, folder, name), nil
}
