package search

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/titulkysubs/titulkysubs/internal/testutil"
	"github.com/titulkysubs/titulkysubs/internal/textutil"
)

const testOrigin = "https://www.titulky.com"

func mustDocument(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("Failed to parse HTML: %v", err)
	}
	return doc
}

func TestMatcher_Score(t *testing.T) {
	t.Parallel()
	m := NewMatcher(testOrigin, DefaultMatcherConfig())

	tests := []struct {
		name  string
		text  string
		title string
		year  string
		want  int
	}{
		{"exact match", "The Matrix", "The Matrix", "1999", 1050},
		{"exact match with year", "The Matrix (1999)", "The Matrix", "1999", 1250},
		{"exact match ignores punctuation and case", "THE MATRIX!", "the matrix", "", 1050},
		{"text contains title", "The Matrix Reloaded", "The Matrix", "1999", 850},
		{"title contains text", "Matrix", "The Matrix", "1999", 650},
		{"word match", "Rings of Power", "The Lord of the Rings", "", 150},
		{"no overlap keeps context bonus", "Pelíšky", "The Matrix", "1999", 50},
		{"diacritics are ignored", "Pelisky 1999", "Pelíšky", "1999", 1050},
		{"empty normalized text", "!!!", "The Matrix", "1999", 0},
		{"empty year gives no bonus", "The Matrix 1999", "The Matrix", "", 850},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := m.Score(tt.text, textutil.Normalize(tt.title), tt.year); got != tt.want {
				t.Errorf("Score(%q, %q, %q) = %d, want %d", tt.text, tt.title, tt.year, got, tt.want)
			}
		})
	}
}

func TestMatcher_Score_ExactMatchAtLeast1000(t *testing.T) {
	t.Parallel()
	m := NewMatcher(testOrigin, DefaultMatcherConfig())
	for _, title := range []string{"Amélie", "Se7en", "Léon: The Professional", "2001: A Space Odyssey", "Pelíšky"} {
		if got := m.Score(title, textutil.Normalize(title), ""); got < 1000 {
			t.Errorf("Expected exact match of %q to score at least 1000, got %d", title, got)
		}
	}
}

func TestMatcher_Rank_EndToEndFixture(t *testing.T) {
	t.Parallel()
	html := testutil.GenerateSearchResultsHTML([]testutil.SearchRowOptions{
		{Title: "The Matrix Reloaded (2003)", Href: "/matrix-reloaded-2003.htm"},
		{Title: "The Matrix (1999)", Href: "/matrix-1999.htm"},
	})

	m := NewMatcher(testOrigin, DefaultMatcherConfig())
	candidates := m.Rank(mustDocument(t, html), "The Matrix", "1999")
	if len(candidates) == 0 {
		t.Fatal("Expected candidates")
	}

	top := candidates[0]
	if top.TargetURL != "https://www.titulky.com/matrix-1999.htm" {
		t.Errorf("Expected top candidate URL https://www.titulky.com/matrix-1999.htm, got %s", top.TargetURL)
	}
	if top.Score < 1200 {
		t.Errorf("Expected top score >= 1200, got %d", top.Score)
	}
	if top.SourceRule != "table-row" {
		t.Errorf("Expected table-row rule, got %s", top.SourceRule)
	}

	for _, c := range candidates {
		if strings.Contains(c.TargetURL, "pozadavek") || strings.Contains(c.TargetURL, "forum") {
			t.Errorf("Expected discussion and request links to be excluded, got %s", c.TargetURL)
		}
	}
}

func TestMatcher_Rank_OrderingAndTruncation(t *testing.T) {
	t.Parallel()
	html := testutil.GenerateHTMLWithBody(`<table>
		<tr><td><a href="a.htm">Matrix Revolutions</a></td></tr>
		<tr><td><a href="b.htm">Animatrix</a></td></tr>
		<tr><td><a href="c.htm">The Matrix</a></td></tr>
		<tr><td><a href="d.htm">Matrix Resurrections</a></td></tr>
		<tr><td><a href="e.htm">Pelíšky</a></td></tr>
		<tr><td><a href="f.htm">Kolja</a></td></tr>
		<tr><td><a href="g.htm">Obecná škola</a></td></tr>
	</table>`)

	m := NewMatcher(testOrigin, DefaultMatcherConfig())
	candidates := m.Rank(mustDocument(t, html), "The Matrix", "1999")

	if len(candidates) != 5 {
		t.Fatalf("Expected top 5 candidates, got %d", len(candidates))
	}
	for i := 1; i < len(candidates); i++ {
		if candidates[i-1].Score < candidates[i].Score {
			t.Errorf("Candidates not sorted descending at %d: %d < %d", i, candidates[i-1].Score, candidates[i].Score)
		}
	}
	if candidates[0].TargetURL != testOrigin+"/c.htm" {
		t.Errorf("Expected exact match first, got %s", candidates[0].TargetURL)
	}

	// Ties keep discovery order: Pelíšky, Kolja and Obecná škola all score 50.
	var tied []string
	for _, c := range candidates {
		if c.Score == 50 {
			tied = append(tied, c.DisplayText)
		}
	}
	if len(tied) < 1 || tied[0] != "Pelíšky" {
		t.Errorf("Expected tied candidates to keep document order, got %v", tied)
	}
}

func TestMatcher_Rank_DiscardsNonPositiveScores(t *testing.T) {
	t.Parallel()
	cfg := DefaultMatcherConfig()
	cfg.Weights.ResultsBonus = 0

	html := testutil.GenerateHTMLWithBody(`<table>
		<tr><td><a href="/kolja.htm">Kolja</a></td></tr>
		<tr><td><a href="/matrix.htm">The Matrix</a></td></tr>
	</table>`)

	candidates := NewMatcher(testOrigin, cfg).Rank(mustDocument(t, html), "The Matrix", "")
	if len(candidates) != 1 {
		t.Fatalf("Expected only the matching candidate, got %d", len(candidates))
	}
	for _, c := range candidates {
		if c.Score <= 0 {
			t.Errorf("Candidate %q has non-positive score %d", c.DisplayText, c.Score)
		}
	}
}

func TestMatcher_Rank_FiltersComments(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("The Matrix ", 30)
	html := testutil.GenerateHTMLWithBody(`
		<a href="/a.htm">` + long + `</a>
		<a href="/b.htm">Neo řekl, že The Matrix je super</a>
		<a href="/diskuze/matrix.htm">The Matrix</a>
		<a href="/matrix.html#x">The Matrix</a>
		<a href="/matrix.php">The Matrix</a>`)

	candidates := NewMatcher(testOrigin, DefaultMatcherConfig()).Rank(mustDocument(t, html), "The Matrix", "")
	if len(candidates) != 1 || candidates[0].TargetURL != testOrigin+"/matrix.html#x" {
		t.Errorf("Expected only the .html title link, got %+v", candidates)
	}
	if len(candidates) == 1 && candidates[0].SourceRule != "generic" {
		t.Errorf("Expected generic rule, got %s", candidates[0].SourceRule)
	}
}

func TestMatcher_Rank_DeduplicatesByURL(t *testing.T) {
	t.Parallel()
	html := testutil.GenerateHTMLWithBody(`<table><tr><td>
		<a href="/matrix-1999.htm">The Matrix (1999)</a>
		<a href="https://www.titulky.com/matrix-1999.htm">The Matrix</a>
	</td></tr></table>`)

	candidates := NewMatcher(testOrigin, DefaultMatcherConfig()).Rank(mustDocument(t, html), "The Matrix", "1999")
	if len(candidates) != 1 {
		t.Fatalf("Expected a single deduplicated candidate, got %d", len(candidates))
	}
	if candidates[0].DisplayText != "The Matrix (1999)" {
		t.Errorf("Expected the first discovered anchor to win, got %q", candidates[0].DisplayText)
	}
}

func TestRule_Extract(t *testing.T) {
	t.Parallel()
	doc := mustDocument(t, testutil.GenerateHTMLWithBody(`
		<div class="search-result"><a href="/x.htm"> X </a></div>
		<table><tr><td><a href="/y.htm">Y</a></td></tr></table>`))

	tests := []struct {
		rule Rule
		want int
	}{
		{DefaultRules[0], 1},
		{DefaultRules[1], 1},
		{DefaultRules[2], 1},
		{DefaultRules[3], 1},
		{DefaultRules[4], 2},
	}
	for _, tt := range tests {
		anchors := tt.rule.Extract(doc)
		if len(anchors) != tt.want {
			t.Errorf("Rule %s: expected %d anchors, got %d", tt.rule.Name, tt.want, len(anchors))
		}
	}

	anchors := DefaultRules[1].Extract(doc)
	if anchors[0].text != "X" || anchors[0].rule != "search-result" {
		t.Errorf("Unexpected anchor %+v", anchors[0])
	}
}

func TestMatcher_ResolveURL(t *testing.T) {
	t.Parallel()
	m := NewMatcher(testOrigin+"/", DefaultMatcherConfig())
	tests := []struct {
		href string
		want string
	}{
		{"/matrix-1999.htm", "https://www.titulky.com/matrix-1999.htm"},
		{"matrix-1999.htm", "https://www.titulky.com/matrix-1999.htm"},
		{"https://premium.titulky.com/a.htm", "https://premium.titulky.com/a.htm"},
		{"//www.titulky.com/b.htm", "https://www.titulky.com/b.htm"},
	}
	for _, tt := range tests {
		if got := m.ResolveURL(tt.href); got != tt.want {
			t.Errorf("ResolveURL(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}
