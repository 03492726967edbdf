package metadata

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/titulkysubs/titulkysubs/internal/apperrors"
	"github.com/titulkysubs/titulkysubs/internal/cache"
	"github.com/titulkysubs/titulkysubs/internal/config"
	"github.com/titulkysubs/titulkysubs/internal/models"
)

// CachedLookup memoizes successful lookups of another Lookup.
type CachedLookup struct {
	inner  Lookup
	cache  cache.Cache
	logger zerolog.Logger
}

// NewCachedLookup wraps inner with c.
func NewCachedLookup(inner Lookup, c cache.Cache) *CachedLookup {
	return &CachedLookup{
		inner:  inner,
		cache:  c,
		logger: config.GetLogger().With().Str("component", "metadata").Logger(),
	}
}

// Lookup returns the cached movie or asks the inner lookup. Failures and
// empty answers are not cached.
func (l *CachedLookup) Lookup(ctx context.Context, externalID string) (*models.Movie, error) {
	if movie, ok := cache.GetJSON[models.Movie](l.cache, externalID); ok {
		l.logger.Debug().Str("id", externalID).Msg("Metadata cache hit")
		return &movie, nil
	}
	movie, err := l.inner.Lookup(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if movie == nil || movie.Title == "" {
		l.logger.Warn().Str("id", externalID).Msg("Metadata lookup returned no title, not caching")
		return nil, apperrors.NewMovieNotFoundError(externalID)
	}
	if err := cache.SetJSON(l.cache, externalID, movie); err != nil {
		l.logger.Warn().Err(err).Str("id", externalID).Msg("Failed to cache metadata")
	}
	return movie, nil
}
