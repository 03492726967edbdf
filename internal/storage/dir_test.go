package storage

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestDir_WriteRenameExists(t *testing.T) {
	t.Parallel()
	root := filepath.Join(t.TempDir(), "subs")
	d, err := NewDir(root, "http://127.0.0.1:7000/", "subtitles/")
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	if _, err := os.Stat(root); err != nil {
		t.Fatalf("Expected directory to be created: %v", err)
	}

	if err := d.Write("the-matrix_direct_1.zip", []byte("data")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !d.Exists("the-matrix_direct_1.zip") {
		t.Fatal("Expected written file to exist")
	}

	if err := d.Rename("the-matrix_direct_1.zip", "the-matrix_direct_1.srt"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if d.Exists("the-matrix_direct_1.zip") {
		t.Error("Expected old name to be gone")
	}

	f, err := d.Open("the-matrix_direct_1.srt")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()
	content, _ := io.ReadAll(f)
	if string(content) != "data" {
		t.Errorf("Unexpected content %q", content)
	}
}

func TestDir_PathStaysInRoot(t *testing.T) {
	t.Parallel()
	d, err := NewDir(t.TempDir(), "", "")
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	if got := d.Path("../../etc/passwd"); got != filepath.Join(d.Root(), "passwd") {
		t.Errorf("Expected traversal to be stripped, got %s", got)
	}
	if d.Exists("missing.srt") {
		t.Error("Expected missing file to not exist")
	}
	if d.Route() != "/subtitles" {
		t.Errorf("Expected default route /subtitles, got %s", d.Route())
	}
}

func TestDir_URL(t *testing.T) {
	t.Parallel()
	d, err := NewDir(t.TempDir(), "http://192.168.1.10:7000/", "/subtitles")
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	if got := d.URL("the matrix.srt"); got != "http://192.168.1.10:7000/subtitles/the%20matrix.srt" {
		t.Errorf("URL = %q", got)
	}

	d.SetBaseURL("https://subs.example.com")
	if got := d.URL("a.srt"); got != "https://subs.example.com/subtitles/a.srt" {
		t.Errorf("URL after SetBaseURL = %q", got)
	}
}
