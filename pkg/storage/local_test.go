package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalRoundTrip(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}

	payload := []byte("fake image bytes")
	handle, err := store.Save("receipt.png", payload)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !strings.HasSuffix(handle, "receipt.png") {
		t.Fatalf("unexpected handle: %q", handle)
	}

	got, err := store.Read(handle)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("read data differs from saved data")
	}

	if err := store.Delete(handle); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Read(handle); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestLocalReadUnknownHandle(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}

	if _, err := store.Read("does-not-exist.png"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Delete("does-not-exist.png"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLocalSaveStripsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(dir)
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}

	handle, err := store.Save("../../evil.png", []byte("x"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if strings.ContainsAny(handle, `/\`) {
		t.Fatalf("handle contains path separators: %q", handle)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one stored file, got %d", len(entries))
	}
	if filepath.Dir(filepath.Join(dir, entries[0].Name())) != dir {
		t.Fatalf("file escaped the uploads directory")
	}
}
