package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

type FileBackend struct {
	path string
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (b *FileBackend) Path() string {
	return b.path
}

func (b *FileBackend) Read(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FileBackend.Read: %w", err)
	}
	return data, nil
}

// Write stages the bytes in a temporary file next to the target, syncs it
// and renames it over the target, so a crash never leaves a truncated store.
func (b *FileBackend) Write(_ context.Context, data []byte) (err error) {
	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("FileBackend.Write: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(b.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("FileBackend.Write: create temp: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("FileBackend.Write: write: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("FileBackend.Write: sync: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("FileBackend.Write: close: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("FileBackend.Write: chmod: %w", err)
	}
	if err = os.Rename(tmp.Name(), b.path); err != nil {
		return fmt.Errorf("FileBackend.Write: rename: %w", err)
	}

	return syncDir(dir)
}

func (b *FileBackend) Ping(_ context.Context) error {
	info, err := os.Stat(filepath.Dir(b.path))
	if err != nil {
		return fmt.Errorf("FileBackend.Ping: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("FileBackend.Ping: %s is not a directory", filepath.Dir(b.path))
	}
	return nil
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("syncDir: %w", err)
	}
	defer d.Close()
	// Some filesystems refuse to fsync a directory; the rename already happened.
	_ = d.Sync()
	return nil
}
