package resolver

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/titulkysubs/titulkysubs/internal/models"
	"github.com/titulkysubs/titulkysubs/internal/textutil"
)

// LinkRule is a named selector for download anchors on a detail page. When
// Text is set, only anchors whose normalized text satisfies it are kept.
type LinkRule struct {
	Name     string
	Selector string
	Text     func(normalized string) bool
}

// DefaultLinkRules returns the rules in priority order for a site whose
// indirect download endpoint is endpoint, e.g. "idown.php".
func DefaultLinkRules(endpoint string) []LinkRule {
	return []LinkRule{
		{Name: "indirect-endpoint", Selector: `a[href*="` + endpoint + `"]`},
		{Name: "download-endpoint", Selector: `a[href*="download"], a.download, #download a, a#download, .download a`},
		{Name: "archive-extension", Selector: `a[href*=".zip"], a[href*=".rar"], a[href*=".srt"]`},
		{Name: "download-verb", Selector: `a[href]`, Text: containsAny("stahnout", "ulozit", "download", "save")},
		{Name: "archive-label", Selector: `a[href]`, Text: hasWord("zip", "rar")},
	}
}

func containsAny(needles ...string) func(string) bool {
	return func(s string) bool {
		for _, n := range needles {
			if strings.Contains(s, n) {
				return true
			}
		}
		return false
	}
}

func hasWord(words ...string) func(string) bool {
	return func(s string) bool {
		for _, field := range strings.Fields(s) {
			for _, w := range words {
				if field == w {
					return true
				}
			}
		}
		return false
	}
}

// LinkParser scrapes download attempts from a detail page.
type LinkParser struct {
	rules       []LinkRule
	maxAttempts int
}

// NewLinkParser creates a parser returning at most maxAttempts links.
func NewLinkParser(rules []LinkRule, maxAttempts int) *LinkParser {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &LinkParser{rules: rules, maxAttempts: maxAttempts}
}

// Parse applies the rules in order, resolving hrefs against pageURL and
// keeping the first occurrence of each URL.
func (p *LinkParser) Parse(doc *goquery.Document, pageURL string) []models.DownloadAttempt {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var attempts []models.DownloadAttempt

	for _, rule := range p.rules {
		doc.Find(rule.Selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			href, ok := s.Attr("href")
			href = strings.TrimSpace(href)
			if !ok || !usableHref(href) {
				return true
			}
			label := strings.TrimSpace(s.Text())
			if rule.Text != nil && !rule.Text(textutil.Normalize(label)) {
				return true
			}

			ref, err := url.Parse(href)
			if err != nil {
				return true
			}
			target := base.ResolveReference(ref).String()
			if _, dup := seen[target]; dup {
				return true
			}
			seen[target] = struct{}{}

			if label == "" {
				label = "Download"
			}
			attempts = append(attempts, models.DownloadAttempt{
				LinkURL:        target,
				Label:          label,
				SelectorOrigin: rule.Name,
			})
			return len(attempts) < p.maxAttempts
		})
		if len(attempts) >= p.maxAttempts {
			break
		}
	}
	return attempts
}

func usableHref(href string) bool {
	lower := strings.ToLower(href)
	return href != "" && !strings.HasPrefix(href, "#") &&
		!strings.HasPrefix(lower, "javascript:") && !strings.HasPrefix(lower, "mailto:")
}
