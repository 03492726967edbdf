package resolver

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/titulkysubs/titulkysubs/internal/testutil"
)

func parseDetail(t *testing.T, links []testutil.DownloadLinkOptions) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(testutil.GenerateDetailPageHTML("The Matrix", links)))
	if err != nil {
		t.Fatalf("Failed to parse detail page: %v", err)
	}
	return doc
}

func TestLinkParser_Parse(t *testing.T) {
	t.Parallel()
	const pageURL = "https://www.titulky.com/matrix-1999-123.htm"

	tests := []struct {
		name      string
		links     []testutil.DownloadLinkOptions
		wantURLs  []string
		wantRules []string
	}{
		{
			name: "indirect endpoint first",
			links: []testutil.DownloadLinkOptions{
				{Href: "/files/matrix.zip", Label: "Archiv"},
				{Href: "idown.php?id=123", Label: "Stáhnout v ZIP"},
			},
			wantURLs:  []string{"https://www.titulky.com/idown.php?id=123", "https://www.titulky.com/files/matrix.zip"},
			wantRules: []string{"indirect-endpoint", "archive-extension"},
		},
		{
			name: "download class and verb",
			links: []testutil.DownloadLinkOptions{
				{Href: "/get/1", Label: "Uložit titulky"},
				{Href: "/dl/2", Label: "soubor", Class: "download"},
			},
			wantURLs:  []string{"https://www.titulky.com/dl/2", "https://www.titulky.com/get/1"},
			wantRules: []string{"download-endpoint", "download-verb"},
		},
		{
			name: "archive label",
			links: []testutil.DownloadLinkOptions{
				{Href: "/get/rar/1", Label: "RAR"},
			},
			wantURLs:  []string{"https://www.titulky.com/get/rar/1"},
			wantRules: []string{"archive-label"},
		},
		{
			name: "duplicates collapse to first rule",
			links: []testutil.DownloadLinkOptions{
				{Href: "/idown.php?id=7", Label: "Stáhnout"},
				{Href: "https://www.titulky.com/idown.php?id=7", Label: "Download"},
			},
			wantURLs:  []string{"https://www.titulky.com/idown.php?id=7"},
			wantRules: []string{"indirect-endpoint"},
		},
		{
			name: "capped at three",
			links: []testutil.DownloadLinkOptions{
				{Href: "/idown.php?id=1", Label: "1"},
				{Href: "/idown.php?id=2", Label: "2"},
				{Href: "/idown.php?id=3", Label: "3"},
				{Href: "/idown.php?id=4", Label: "4"},
			},
			wantURLs: []string{
				"https://www.titulky.com/idown.php?id=1",
				"https://www.titulky.com/idown.php?id=2",
				"https://www.titulky.com/idown.php?id=3",
			},
			wantRules: []string{"indirect-endpoint", "indirect-endpoint", "indirect-endpoint"},
		},
		{
			name: "javascript and fragment links ignored",
			links: []testutil.DownloadLinkOptions{
				{Href: "javascript:void(0)", Label: "Stáhnout"},
				{Href: "#download", Label: "Download"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := NewLinkParser(DefaultLinkRules("idown.php"), 3)
			got := p.Parse(parseDetail(t, tt.links), pageURL)

			if len(got) != len(tt.wantURLs) {
				t.Fatalf("Expected %d attempts, got %d: %+v", len(tt.wantURLs), len(got), got)
			}
			for i := range got {
				if got[i].LinkURL != tt.wantURLs[i] {
					t.Errorf("attempt %d: URL = %q, want %q", i, got[i].LinkURL, tt.wantURLs[i])
				}
				if got[i].SelectorOrigin != tt.wantRules[i] {
					t.Errorf("attempt %d: rule = %q, want %q", i, got[i].SelectorOrigin, tt.wantRules[i])
				}
			}
		})
	}
}

func TestLinkParser_Parse_IgnoresNavigation(t *testing.T) {
	t.Parallel()
	p := NewLinkParser(DefaultLinkRules("idown.php"), 3)
	got := p.Parse(parseDetail(t, nil), "https://www.titulky.com/matrix.htm")
	if len(got) != 0 {
		t.Errorf("Expected no attempts from navigation links, got %+v", got)
	}
}
