package client

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

func compress(t *testing.T, encoding string, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	var w io.WriteCloser
	switch encoding {
	case "gzip":
		w = gzip.NewWriter(&buf)
	case "br":
		w = brotli.NewWriter(&buf)
	case "zstd":
		// zstd.NewWriter() with default options never fails
		w, _ = zstd.NewWriter(&buf)
	default:
		return data
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("Failed to compress: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close compressor: %v", err)
	}
	return buf.Bytes()
}

func TestCompressionTransport_Decodes(t *testing.T) {
	t.Parallel()
	testData := []byte("<html><body><a href=\"/matrix-1999.htm\">The Matrix (1999)</a></body></html>")

	tests := []struct {
		name     string
		header   string
		encoding string
	}{
		{"gzip", "gzip", "gzip"},
		{"brotli", "br", "br"},
		{"zstd", "zstd", "zstd"},
		{"no compression", "", ""},
		{"comma list uses outermost", "identity, gzip", "gzip"},
		{"whitespace and case", "  BR ", "br"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			payload := compress(t, tt.encoding, testData)
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Accept-Encoding") != acceptEncoding {
					t.Errorf("Expected Accept-Encoding %q, got %q", acceptEncoding, r.Header.Get("Accept-Encoding"))
				}
				if tt.header != "" {
					w.Header().Set("Content-Encoding", tt.header)
				}
				_, _ = w.Write(payload)
			}))
			defer server.Close()

			client := &http.Client{Transport: newCompressionTransport(nil)}
			resp, err := client.Get(server.URL)
			if err != nil {
				t.Fatalf("Failed to make request: %v", err)
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				t.Fatalf("Failed to read response body: %v", err)
			}
			if !bytes.Equal(body, testData) {
				t.Errorf("Expected body %q, got %q", testData, body)
			}
			if resp.Header.Get("Content-Encoding") != "" {
				t.Errorf("Expected Content-Encoding header to be removed, got %q", resp.Header.Get("Content-Encoding"))
			}
		})
	}
}

func TestCompressionTransport_PreserveExistingAcceptEncoding(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept-Encoding") != "identity" {
			t.Errorf("Expected Accept-Encoding to be preserved, got %q", r.Header.Get("Accept-Encoding"))
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	req.Header.Set("Accept-Encoding", "identity")

	resp, err := (&http.Client{Transport: newCompressionTransport(nil)}).Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	resp.Body.Close()
}

func TestCompressionTransport_UnknownEncoding(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "compress")
		_, _ = w.Write([]byte("raw"))
	}))
	defer server.Close()

	resp, err := (&http.Client{Transport: newCompressionTransport(nil)}).Get(server.URL)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if string(body) != "raw" {
		t.Errorf("Expected raw body, got %q", body)
	}
	if resp.Header.Get("Content-Encoding") != "compress" {
		t.Errorf("Expected unknown Content-Encoding to be kept, got %q", resp.Header.Get("Content-Encoding"))
	}
}

func TestParseContentEncoding(t *testing.T) {
	t.Parallel()
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"gzip", "gzip"},
		{" gzip ", "gzip"},
		{"gzip, br", "br"},
		{"ZSTD", "zstd"},
	}
	for _, tt := range tests {
		if got := parseContentEncoding(tt.header); got != tt.want {
			t.Errorf("parseContentEncoding(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
