package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/amabee/property-rental/internal/domain"

	"github.com/google/uuid"
)

var ErrInvalidName = errors.New("invalid file name")

// BlobStore keeps uploaded house images by name.
type BlobStore interface {
	// Put stores r under the base name of name and returns the stored
	// reference. An existing file is never overwritten: a taken name gets a
	// unique prefix instead.
	Put(ctx context.Context, name string, r io.Reader) (string, error)
	// Delete removes a stored reference. Missing files and URLs are ignored.
	Delete(ctx context.Context, ref string) error
}

// FileBlobStore BlobStore on a local directory
type FileBlobStore struct {
	dir string
}

func NewFileBlobStore(dir string) *FileBlobStore {
	return &FileBlobStore{dir: dir}
}

func (s *FileBlobStore) Dir() string { return s.dir }

func cleanName(name string) (string, error) {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "" || base == "." || base == ".." || base == "/" || strings.HasPrefix(base, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return base, nil
}

func (s *FileBlobStore) Put(ctx context.Context, name string, r io.Reader) (string, error) {
	base, err := cleanName(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, readerWithContext(ctx, r)); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	for _, candidate := range []string{base, uuid.NewString()[:8] + "-" + base} {
		err := os.Link(tmpPath, filepath.Join(s.dir, candidate))
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("failed to store upload: %w", err)
		}
	}
	return "", fmt.Errorf("failed to store upload: %w", fs.ErrExist)
}

func (s *FileBlobStore) Delete(_ context.Context, ref string) error {
	if ref == "" || domain.IsRemoteImage(ref) {
		return nil
	}
	base, err := cleanName(ref)
	if err != nil || base != ref {
		return fmt.Errorf("%w: %q", ErrInvalidName, ref)
	}
	if err := os.Remove(filepath.Join(s.dir, base)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete upload: %w", err)
	}
	return nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
