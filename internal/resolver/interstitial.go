package resolver

import (
	"bytes"
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ID extraction methods, in the order they are tried.
const (
	methodEndpointPattern = "endpoint-pattern"
	methodElementScan     = "element-scan"
	methodLongNumber      = "long-number"
)

var (
	hrefIDPattern     = regexp.MustCompile(`[?&;]id=(\d+)`)
	inlineIDPattern   = regexp.MustCompile(`(\d{6,})`)
	longNumberPattern = regexp.MustCompile(`(\d{7,})`)
)

// IDExtractor finds the download identifier embedded in an interstitial page.
type IDExtractor struct {
	endpoint        string
	endpointPattern *regexp.Regexp
}

// NewIDExtractor creates an extractor for the indirect endpoint at
// indirectPath, e.g. "/idown.php".
func NewIDExtractor(indirectPath string) *IDExtractor {
	endpoint := path.Base("/" + strings.TrimLeft(indirectPath, "/"))
	return &IDExtractor{
		endpoint:        endpoint,
		endpointPattern: regexp.MustCompile(regexp.QuoteMeta(endpoint) + `\?id=(\d+)`),
	}
}

// Endpoint returns the endpoint file name the extractor looks for.
func (x *IDExtractor) Endpoint() string {
	return x.endpoint
}

// IndirectTarget is what an interstitial page points at. Href is set when
// the id came from a link to the endpoint; that link is followed as-is.
type IndirectTarget struct {
	ID     string
	Href   string
	Method string
}

// Extract returns the download target and whether any method matched.
func (x *IDExtractor) Extract(body []byte) (IndirectTarget, bool) {
	if m := x.endpointPattern.FindSubmatch(body); m != nil {
		return IndirectTarget{ID: string(m[1]), Method: methodEndpointPattern}, true
	}

	if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body)); err == nil {
		if target, ok := x.scanElements(doc); ok {
			return target, true
		}
	}

	if m := longNumberPattern.FindSubmatch(body); m != nil {
		return IndirectTarget{ID: string(m[1]), Method: methodLongNumber}, true
	}
	return IndirectTarget{}, false
}

// scanElements inspects links, buttons and scripts that reference the
// endpoint, reading the id parameter from hrefs and long numbers from inline
// handlers or script bodies.
func (x *IDExtractor) scanElements(doc *goquery.Document) (IndirectTarget, bool) {
	var found IndirectTarget
	doc.Find("a, button, script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if href, ok := s.Attr("href"); ok && strings.Contains(href, x.endpoint) {
			if m := hrefIDPattern.FindStringSubmatch(href); m != nil {
				found = IndirectTarget{ID: m[1], Href: strings.TrimSpace(href), Method: methodElementScan}
				return false
			}
		}

		inline, _ := s.Attr("onclick")
		if html, err := s.Html(); err == nil {
			inline += " " + html
		}
		if strings.Contains(inline, x.endpoint) {
			if m := inlineIDPattern.FindStringSubmatch(inline); m != nil {
				found = IndirectTarget{ID: m[1], Method: methodElementScan}
				return false
			}
		}
		return true
	})
	return found, found.ID != ""
}
