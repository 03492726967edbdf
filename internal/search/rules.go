package search

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Rule is a named structural selector for anchors that probably point at a title detail page.
type Rule struct {
	Name     string
	Selector string
}

// DefaultRules are tried in order; the first rule to yield a URL owns it.
var DefaultRules = []Rule{
	{Name: "table-row", Selector: `table tr a[href*=".htm"]`},
	{Name: "search-result", Selector: `.search-result a[href*=".htm"]`},
	{Name: "row", Selector: `tr a[href*=".htm"]`},
	{Name: "cell", Selector: `td a[href*=".htm"]`},
	{Name: "generic", Selector: `a[href*=".htm"]`},
}

// excludedPaths mark request, forum and discussion pages.
var excludedPaths = []string{"pozadavek", "forum", "diskuze"}

// commentMarkers appear in quoted user comments ("X napsal:", "Y řekl").
var commentMarkers = []string{"napsal", "řekl"}

type anchor struct {
	text string
	href string
	rule string
}

// Extract returns the anchors matched by the rule, before any filtering.
func (r Rule) Extract(doc *goquery.Document) []anchor {
	var anchors []anchor
	doc.Find(r.Selector).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		anchors = append(anchors, anchor{
			text: strings.TrimSpace(s.Text()),
			href: strings.TrimSpace(href),
			rule: r.Name,
		})
	})
	return anchors
}

// looksLikeTitle rejects discussion links and anchors whose text is a comment.
func looksLikeTitle(a anchor, maxTextLength int) bool {
	if a.text == "" || a.href == "" || !strings.Contains(a.href, ".htm") {
		return false
	}
	lowerHref := strings.ToLower(a.href)
	for _, path := range excludedPaths {
		if strings.Contains(lowerHref, path) {
			return false
		}
	}
	if len([]rune(a.text)) >= maxTextLength {
		return false
	}
	lowerText := strings.ToLower(a.text)
	for _, marker := range commentMarkers {
		if strings.Contains(lowerText, marker) {
			return false
		}
	}
	return true
}
