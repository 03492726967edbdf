// Package search ranks the upstream full-text search results against a
// canonical movie title.
package search

import (
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/titulkysubs/titulkysubs/internal/config"
	"github.com/titulkysubs/titulkysubs/internal/models"
	"github.com/titulkysubs/titulkysubs/internal/textutil"
)

// Weights are the score contributions of each matching signal.
type Weights struct {
	ExactMatch    int
	ContainsTitle int
	TitleContains int
	WordMatch     int
	YearBonus     int
	ResultsBonus  int
}

// MatcherConfig configures a Matcher.
type MatcherConfig struct {
	TopK          int
	MaxTextLength int
	Weights       Weights
	Rules         []Rule
}

// DefaultMatcherConfig returns the empirically tuned defaults.
func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{
		TopK:          5,
		MaxTextLength: 200,
		Weights: Weights{
			ExactMatch:    1000,
			ContainsTitle: 800,
			TitleContains: 600,
			WordMatch:     100,
			YearBonus:     200,
			ResultsBonus:  50,
		},
		Rules: DefaultRules,
	}
}

// MatcherConfigFromConfig overlays the configured values on the defaults.
func MatcherConfigFromConfig(cfg *config.Config) MatcherConfig {
	mc := DefaultMatcherConfig()
	m := cfg.Matcher
	if m.TopK > 0 {
		mc.TopK = m.TopK
	}
	if m.MaxTextLength > 0 {
		mc.MaxTextLength = m.MaxTextLength
	}
	mc.Weights = Weights{
		ExactMatch:    m.ExactMatch,
		ContainsTitle: m.ContainsTitle,
		TitleContains: m.TitleContains,
		WordMatch:     m.WordMatch,
		YearBonus:     m.YearBonus,
		ResultsBonus:  m.ResultsBonus,
	}
	return mc
}

// Matcher scores and ranks search result anchors.
type Matcher struct {
	origin string
	cfg    MatcherConfig
}

// NewMatcher creates a matcher resolving relative links against origin.
func NewMatcher(origin string, cfg MatcherConfig) *Matcher {
	if len(cfg.Rules) == 0 {
		cfg.Rules = DefaultRules
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.MaxTextLength <= 0 {
		cfg.MaxTextLength = 200
	}
	return &Matcher{origin: strings.TrimRight(origin, "/"), cfg: cfg}
}

// Rank extracts candidate anchors from doc and returns at most TopK of them
// ordered by descending score. Equal scores keep discovery order.
func (m *Matcher) Rank(doc *goquery.Document, title, year string) []models.SearchCandidate {
	normalizedTitle := textutil.Normalize(title)
	seen := make(map[string]struct{})
	var candidates []models.SearchCandidate

	for _, rule := range m.cfg.Rules {
		for _, a := range rule.Extract(doc) {
			if !looksLikeTitle(a, m.cfg.MaxTextLength) {
				continue
			}
			target := m.ResolveURL(a.href)
			if _, dup := seen[target]; dup {
				continue
			}
			seen[target] = struct{}{}

			score := m.Score(a.text, normalizedTitle, year)
			if score <= 0 {
				continue
			}
			candidates = append(candidates, models.SearchCandidate{
				DisplayText: a.text,
				TargetURL:   target,
				Score:       score,
				SourceRule:  a.rule,
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > m.cfg.TopK {
		candidates = candidates[:m.cfg.TopK]
	}
	return candidates
}

// Score rates anchor text against an already normalized title. Anchors that
// normalize to nothing score zero.
func (m *Matcher) Score(text, normalizedTitle, year string) int {
	normalizedText := textutil.Normalize(text)
	if normalizedText == "" || normalizedTitle == "" {
		return 0
	}

	w := m.cfg.Weights
	score := 0
	switch {
	case normalizedText == normalizedTitle:
		score += w.ExactMatch
	case strings.Contains(normalizedText, normalizedTitle):
		score += w.ContainsTitle
	case strings.Contains(normalizedTitle, normalizedText):
		score += w.TitleContains
	default:
		score += matchedWords(normalizedTitle, normalizedText) * w.WordMatch
	}

	if year != "" && strings.Contains(text, year) {
		score += w.YearBonus
	}
	return score + w.ResultsBonus
}

// matchedWords counts title words longer than two characters that contain,
// or are contained in, some word of the text.
func matchedWords(title, text string) int {
	textWords := significantWords(text)
	count := 0
	for _, word := range significantWords(title) {
		for _, tw := range textWords {
			if strings.Contains(tw, word) || strings.Contains(word, tw) {
				count++
				break
			}
		}
	}
	return count
}

func significantWords(s string) []string {
	var words []string
	for _, w := range strings.Fields(s) {
		if len([]rune(w)) > 2 {
			words = append(words, w)
		}
	}
	return words
}

// ResolveURL makes href absolute against the site origin. A relative href
// without a leading slash is treated as origin-relative.
func (m *Matcher) ResolveURL(href string) string {
	lower := strings.ToLower(href)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return href
	case strings.HasPrefix(href, "//"):
		scheme, _, _ := strings.Cut(m.origin, ":")
		return scheme + ":" + href
	case strings.HasPrefix(href, "/"):
		return m.origin + href
	default:
		return m.origin + "/" + href
	}
}
