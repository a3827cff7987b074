package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Local is a Disk backed by a directory.
type Local struct {
	root    string
	baseURL string
}

// NewLocalDisk stores objects below root and serves them from baseURL.
func NewLocalDisk(root, baseURL string) *Local {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &Local{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// file confines key to the root: "../x" resolves to "<root>/x".
func (d *Local) file(key string) string {
	return filepath.Join(d.root, filepath.FromSlash(path.Clean("/"+key)))
}

// Put writes to a temp file in the target directory and renames it, so
// readers never observe a partial object.
func (d *Local) Put(_ context.Context, key string, r io.Reader) error {
	dst := d.file(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("storage: local mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return fmt.Errorf("storage: local put %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: local put %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: local put %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("storage: local put %s: %w", key, err)
	}
	return nil
}

func (d *Local) Open(_ context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(d.file(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: local open %s: %w", key, err)
	}
	return f, nil
}

func (d *Local) Exists(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(d.file(key))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("storage: local stat %s: %w", key, err)
	}
}

func (d *Local) Delete(_ context.Context, key string) error {
	if err := os.Remove(d.file(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: local delete %s: %w", key, err)
	}
	return nil
}

func (d *Local) URL(key string) string {
	return d.baseURL + path.Clean("/"+key)
}
