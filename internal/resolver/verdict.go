package resolver

import (
	"mime"
	"strings"

	"github.com/titulkysubs/titulkysubs/internal/models"
)

// Classify derives a validation verdict from a response content type and body
// size. Archives must be larger than minBytes; an HTML page of any size is a
// candidate interstitial.
func Classify(contentType string, size, minBytes int) models.ValidationVerdict {
	mediaType := strings.ToLower(strings.TrimSpace(contentType))
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = parsed
	}

	if mediaType == "text/html" || mediaType == "application/xhtml+xml" {
		return models.VerdictLikelyInterstitial
	}
	if size > minBytes && isBinaryType(mediaType) {
		return models.VerdictLikelyArchive
	}
	return models.VerdictInvalid
}

func isBinaryType(mediaType string) bool {
	switch {
	case strings.Contains(mediaType, "zip"),
		strings.Contains(mediaType, "rar"),
		strings.Contains(mediaType, "octet-stream"):
		return true
	case strings.HasPrefix(mediaType, "application/"):
		return !strings.Contains(mediaType, "json") &&
			!strings.Contains(mediaType, "xml") &&
			!strings.Contains(mediaType, "javascript")
	default:
		return false
	}
}
