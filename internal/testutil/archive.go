package testutil

import (
	"archive/zip"
	"bytes"
	"testing"
)

// ArchiveEntry is a file placed in a generated archive
type ArchiveEntry struct {
	Name    string
	Content []byte
}

// BuildZip creates an in-memory deflated ZIP archive holding entries in order
func BuildZip(t testing.TB, entries ...ArchiveEntry) []byte {
	t.Helper()
	return buildZip(t, zip.Deflate, entries)
}

// BuildStoredZip creates an uncompressed ZIP archive, so the archive is at
// least as large as its entries
func BuildStoredZip(t testing.TB, entries ...ArchiveEntry) []byte {
	t.Helper()
	return buildZip(t, zip.Store, entries)
}

func buildZip(t testing.TB, method uint16, entries []ArchiveEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, e := range entries {
		f, err := w.CreateHeader(&zip.FileHeader{Name: e.Name, Method: method})
		if err != nil {
			t.Fatalf("Failed to create zip entry %s: %v", e.Name, err)
		}
		if _, err := f.Write(e.Content); err != nil {
			t.Fatalf("Failed to write zip entry %s: %v", e.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zip writer: %v", err)
	}
	return buf.Bytes()
}

// SampleSRT returns a subtitle body padded to at least size bytes
func SampleSRT(size int) []byte {
	var buf bytes.Buffer
	for i := 1; buf.Len() < size; i++ {
		buf.WriteString("1\n00:00:01,000 --> 00:00:04,000\nProbuď se, Neo.\n\n")
	}
	return buf.Bytes()
}
