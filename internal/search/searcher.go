package search

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/titulkysubs/titulkysubs/internal/apperrors"
	"github.com/titulkysubs/titulkysubs/internal/client"
	"github.com/titulkysubs/titulkysubs/internal/config"
	"github.com/titulkysubs/titulkysubs/internal/models"
	"github.com/titulkysubs/titulkysubs/internal/parser"
	"github.com/titulkysubs/titulkysubs/internal/session"
)

// Searcher queries the upstream full-text search and ranks the results.
type Searcher struct {
	fetcher     client.Fetcher
	sessions    session.Store
	matcher     *Matcher
	origin      string
	searchParam string
	logger      zerolog.Logger
}

// NewSearcher creates a searcher. searchParam is the query parameter of the
// full-text endpoint, "Fulltext" on the default site.
func NewSearcher(fetcher client.Fetcher, sessions session.Store, matcher *Matcher, origin, searchParam string) *Searcher {
	if searchParam == "" {
		searchParam = "Fulltext"
	}
	return &Searcher{
		fetcher:     fetcher,
		sessions:    sessions,
		matcher:     matcher,
		origin:      strings.TrimRight(origin, "/"),
		searchParam: searchParam,
		logger:      config.GetLogger().With().Str("component", "search").Logger(),
	}
}

// SearchURL returns the full-text search URL for title.
func (s *Searcher) SearchURL(title string) string {
	query := url.Values{}
	query.Set(s.searchParam, strings.ToLower(strings.TrimSpace(title)))
	return s.origin + "/?" + query.Encode()
}

// Search fetches the search page for title and returns ranked candidates.
// An empty ranking yields *apperrors.ErrNoSearchCandidates.
func (s *Searcher) Search(ctx context.Context, title, year string) ([]models.SearchCandidate, error) {
	searchURL := s.SearchURL(title)
	s.logger.Debug().Str("url", searchURL).Str("title", title).Str("year", year).Msg("Searching")

	page, err := s.fetcher.FetchPage(ctx, searchURL, s.sessions.Headers(ctx))
	if err != nil {
		var statusErr *apperrors.ErrUnexpectedStatus
		if errors.As(err, &statusErr) && statusErr.Unauthorized() {
			s.sessions.Invalidate()
		}
		return nil, fmt.Errorf("search request failed: %w", err)
	}

	doc, err := parser.NewDocument(page.Body, page.ContentType)
	if err != nil {
		return nil, err
	}

	candidates := s.matcher.Rank(doc, title, year)
	if len(candidates) == 0 {
		return nil, &apperrors.ErrNoSearchCandidates{Title: title}
	}

	for i, c := range candidates {
		s.logger.Debug().
			Int("rank", i+1).
			Int("score", c.Score).
			Str("text", c.DisplayText).
			Str("url", c.TargetURL).
			Str("rule", c.SourceRule).
			Msg("Search candidate")
	}
	return candidates, nil
}
