package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type localStorage struct {
	dir string
}

// NewLocal stores files under dir, creating it if needed. An empty dir falls
// back to "uploads" next to the process working directory.
func NewLocal(dir string) (Storage, error) {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &localStorage{dir: dir}, nil
}

func (l *localStorage) Save(name string, data []byte) (string, error) {
	handle := fmt.Sprintf("%d-%s", time.Now().UnixNano(), sanitizeName(name))
	if err := os.WriteFile(filepath.Join(l.dir, handle), data, 0o644); err != nil {
		return "", err
	}
	return handle, nil
}

func (l *localStorage) Read(handle string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(l.dir, sanitizeName(handle)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

func (l *localStorage) Delete(handle string) error {
	err := os.Remove(filepath.Join(l.dir, sanitizeName(handle)))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

// sanitizeName strips path separators so a handle can never escape the
// uploads directory.
func sanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == ".." {
		return "upload"
	}
	return name
}
