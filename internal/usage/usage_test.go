package usage

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() unexpected error: %v", err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatalf("WriteFile() unexpected error: %v", err)
	}
}

func TestDirBytes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a"), 100)
	writeFile(t, filepath.Join(dir, "sub", "b"), 250)
	writeFile(t, filepath.Join(dir, "sub", "deeper", "c"), 1)

	got, err := DirBytes(dir)
	if err != nil {
		t.Fatalf("DirBytes() unexpected error: %v", err)
	}
	if want := uint64(351); got != want {
		t.Errorf("DirBytes() = %d, want %d", got, want)
	}
}

func TestDirBytesEmptyDir(t *testing.T) {
	got, err := DirBytes(t.TempDir())
	if err != nil {
		t.Fatalf("DirBytes() unexpected error: %v", err)
	}
	if got != 0 {
		t.Errorf("DirBytes() = %d, want 0", got)
	}
}

func TestDirBytesMissingDir(t *testing.T) {
	if _, err := DirBytes(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Errorf("DirBytes() error = nil, want error for a missing directory")
	}
}
