package resolver

import (
	"testing"

	"github.com/titulkysubs/titulkysubs/internal/models"
)

func TestClassify(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		contentType string
		size        int
		want        models.ValidationVerdict
	}{
		{"zip archive", "application/zip", 2048, models.VerdictLikelyArchive},
		{"rar archive", "application/x-rar-compressed", 5000, models.VerdictLikelyArchive},
		{"octet stream", "application/octet-stream", 1001, models.VerdictLikelyArchive},
		{"generic application type", "application/force-download", 4000, models.VerdictLikelyArchive},
		{"archive at threshold", "application/zip", 1000, models.VerdictInvalid},
		{"tiny archive", "application/zip", 10, models.VerdictInvalid},
		{"html page", "text/html; charset=utf-8", 30000, models.VerdictLikelyInterstitial},
		{"small html page", "text/html", 50, models.VerdictLikelyInterstitial},
		{"json error", "application/json", 4000, models.VerdictInvalid},
		{"plain text", "text/plain", 4000, models.VerdictInvalid},
		{"missing type", "", 4000, models.VerdictInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Classify(tt.contentType, tt.size, 1000); got != tt.want {
				t.Errorf("Classify(%q, %d) = %v, want %v", tt.contentType, tt.size, got, tt.want)
			}
		})
	}
}

func TestInferExtension(t *testing.T) {
	t.Parallel()
	tests := []struct {
		contentType string
		url         string
		want        string
	}{
		{"application/x-rar-compressed", "https://x/idown.php?id=1", ".rar"},
		{"application/zip", "https://x/file.rar", ".zip"},
		{"application/octet-stream", "https://x/files/a.RAR", ".rar"},
		{"application/octet-stream", "https://x/files/a.srt", ".srt"},
		{"application/octet-stream", "https://x/idown.php?id=1", ".zip"},
	}
	for _, tt := range tests {
		if got := inferExtension(tt.contentType, tt.url); got != tt.want {
			t.Errorf("inferExtension(%q, %q) = %q, want %q", tt.contentType, tt.url, got, tt.want)
		}
	}
}
