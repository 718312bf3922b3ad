package assets

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSave_ReturnsURLAndWritesFile(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDiskStore(dir, "/photos/", 5)
	if err != nil {
		t.Fatalf("NewDiskStore failed: %v", err)
	}

	url, err := s.Save("portrait.JPG", bytes.NewReader([]byte("fake-jpeg-bytes")))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !strings.HasPrefix(url, "/photos/") || !strings.HasSuffix(url, ".jpg") {
		t.Errorf("unexpected URL: %s", url)
	}

	name := strings.TrimPrefix(url, "/photos/")
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	if string(data) != "fake-jpeg-bytes" {
		t.Errorf("unexpected file contents: %q", data)
	}
}

func TestSave_RejectsUnsupportedType(t *testing.T) {
	s, err := NewDiskStore(t.TempDir(), "/photos", 5)
	if err != nil {
		t.Fatalf("NewDiskStore failed: %v", err)
	}

	if _, err := s.Save("malware.exe", bytes.NewReader([]byte("x"))); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestSave_RejectsOversized(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDiskStore(dir, "/photos", 1)
	if err != nil {
		t.Fatalf("NewDiskStore failed: %v", err)
	}

	big := bytes.Repeat([]byte("a"), 1<<20+1)
	if _, err := s.Save("big.png", bytes.NewReader(big)); !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}

	// The partial file must not be left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no leftover files, got %d", len(entries))
	}
}

func TestSave_UniqueNames(t *testing.T) {
	s, err := NewDiskStore(t.TempDir(), "/photos", 5)
	if err != nil {
		t.Fatalf("NewDiskStore failed: %v", err)
	}

	a, err := s.Save("p.png", bytes.NewReader([]byte("one")))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	b, err := s.Save("p.png", bytes.NewReader([]byte("two")))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if a == b {
		t.Errorf("expected unique URLs, got %s twice", a)
	}
}
