package filecopy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAtomicCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.jpg")
	dst := filepath.Join(dir, "nested", "dst.jpg")

	content := []byte("not really a jpeg")
	if err := os.WriteFile(src, content, 0644); err != nil {
		t.Fatal(err)
	}

	if err := AtomicCopy(src, dst); err != nil {
		t.Fatalf("AtomicCopy() error = %v", err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("reading destination: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("destination content = %q, want %q", got, content)
	}
}

func TestAtomicCopyMissingSource(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "dst.jpg")

	if err := AtomicCopy(filepath.Join(dir, "missing.jpg"), dst); err == nil {
		t.Fatal("AtomicCopy() with missing source should fail")
	}

	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Error("failed copy must not leave a destination file")
	}
}

func TestCopyFromReader(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "upload.jpg")

	if err := CopyFromReader(strings.NewReader("payload"), dst); err != nil {
		t.Fatalf("CopyFromReader() error = %v", err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "payload" {
		t.Errorf("destination content = %q, want %q", got, "payload")
	}

	// No temp residue left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1", len(entries))
	}
}
