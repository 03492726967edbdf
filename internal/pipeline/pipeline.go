// Package pipeline chains metadata lookup, search and download resolution
// into the public subtitle lookup.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"github.com/titulkysubs/titulkysubs/internal/apperrors"
	"github.com/titulkysubs/titulkysubs/internal/cache"
	"github.com/titulkysubs/titulkysubs/internal/config"
	"github.com/titulkysubs/titulkysubs/internal/metadata"
	"github.com/titulkysubs/titulkysubs/internal/metrics"
	"github.com/titulkysubs/titulkysubs/internal/models"
	"github.com/titulkysubs/titulkysubs/internal/reporting"
)

// Run outcome labels.
const (
	outcomeFound   = "found"
	outcomeCached  = "cached"
	outcomeEmpty   = "empty"
	outcomeInvalid = "invalid"
	outcomePanic   = "panic"
)

var externalIDPattern = regexp.MustCompile(`^tt\d+$`)

// Searcher ranks upstream search results for a title.
type Searcher interface {
	Search(ctx context.Context, title, year string) ([]models.SearchCandidate, error)
}

// Resolver downloads the subtitle behind a detail page.
type Resolver interface {
	Resolve(ctx context.Context, pageURL, title string) (*models.SubtitleArtifact, error)
}

// ArtifactFiles reports on stored subtitle files.
type ArtifactFiles = cache.ArtifactFiles

// Pipeline acquires one subtitle per external id.
type Pipeline struct {
	lookup        metadata.Lookup
	searcher      Searcher
	resolver      Resolver
	artifacts     *cache.ArtifactStore
	maxCandidates int
	logger        zerolog.Logger
}

// New creates a pipeline. artifacts may be nil to disable reuse of earlier results.
func New(lookup metadata.Lookup, searcher Searcher, resolver Resolver, files ArtifactFiles, artifacts cache.Cache, maxCandidates int) *Pipeline {
	if maxCandidates <= 0 {
		maxCandidates = 2
	}
	var store *cache.ArtifactStore
	if artifacts != nil {
		store = cache.NewArtifactStore(artifacts, files)
	}
	return &Pipeline{
		lookup:        lookup,
		searcher:      searcher,
		resolver:      resolver,
		artifacts:     store,
		maxCandidates: maxCandidates,
		logger:        config.GetLogger().With().Str("component", "pipeline").Logger(),
	}
}

// GetSubtitles returns the subtitles for externalID. It never fails: every
// error, and any panic, yields an empty response.
func (p *Pipeline) GetSubtitles(ctx context.Context, contentType, externalID string) (resp models.SubtitlesResponse) {
	start := time.Now()
	outcome := outcomeEmpty
	logger := p.logger.With().Str("type", contentType).Str("id", externalID).Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Str("panic", fmt.Sprint(r)).Msg("Recovered from pipeline panic")
			reporting.CapturePanic(r, map[string]string{"component": "pipeline", "id": externalID})
			resp = models.EmptySubtitles()
			outcome = outcomePanic
		}
		metrics.PipelineRunsTotal.WithLabelValues(outcome).Inc()
		metrics.PipelineDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	artifact, cached, err := p.Acquire(ctx, externalID)
	if err != nil {
		if errors.Is(err, &apperrors.ErrInvalidExternalID{}) {
			outcome = outcomeInvalid
		}
		logEvent := logger.Warn()
		if expected(err) {
			logEvent = logger.Info()
		} else {
			reporting.CaptureError(err, map[string]string{"component": "pipeline", "id": externalID})
		}
		logEvent.Err(err).Dur("elapsed", time.Since(start)).Msg("No subtitles acquired")
		return models.EmptySubtitles()
	}

	outcome = outcomeFound
	if cached {
		outcome = outcomeCached
	}
	logger.Info().
		Str("url", artifact.URL).
		Bool("cached", cached).
		Dur("elapsed", time.Since(start)).
		Msg("Subtitles acquired")
	return models.NewSubtitlesResponse(artifact)
}

// Acquire runs the pipeline and reports why it failed. cached is true when
// the artifact came from an earlier run.
func (p *Pipeline) Acquire(ctx context.Context, externalID string) (artifact *models.SubtitleArtifact, cached bool, err error) {
	if !externalIDPattern.MatchString(externalID) {
		return nil, false, &apperrors.ErrInvalidExternalID{ID: externalID}
	}

	if artifact, ok := p.cachedArtifact(externalID); ok {
		return artifact, true, nil
	}

	movie, err := p.lookup.Lookup(ctx, externalID)
	if err != nil {
		return nil, false, fmt.Errorf("metadata lookup failed: %w", err)
	}
	if movie == nil || movie.Title == "" {
		return nil, false, apperrors.NewMovieNotFoundError(externalID)
	}
	p.logger.Debug().Str("id", externalID).Str("title", movie.Title).Str("year", movie.Year).Msg("Movie resolved")

	candidates, err := p.searcher.Search(ctx, movie.Title, movie.Year)
	if err != nil {
		return nil, false, err
	}
	if len(candidates) > p.maxCandidates {
		candidates = candidates[:p.maxCandidates]
	}

	var errs []error
	for i, candidate := range candidates {
		p.logger.Debug().
			Int("rank", i+1).
			Int("score", candidate.Score).
			Str("text", candidate.DisplayText).
			Str("url", candidate.TargetURL).
			Msg("Trying candidate")

		artifact, err := p.resolver.Resolve(ctx, candidate.TargetURL, movie.Title)
		if err == nil {
			p.storeArtifact(externalID, artifact)
			return artifact, false, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, false, ctxErr
		}
		p.logger.Debug().Err(err).Str("url", candidate.TargetURL).Msg("Candidate failed")
		errs = append(errs, fmt.Errorf("candidate %s: %w", candidate.TargetURL, err))
	}
	if len(errs) == 0 {
		return nil, false, &apperrors.ErrNoSearchCandidates{Title: movie.Title}
	}
	return nil, false, errors.Join(errs...)
}

func (p *Pipeline) cachedArtifact(externalID string) (*models.SubtitleArtifact, bool) {
	if p.artifacts == nil {
		return nil, false
	}
	artifact, ok := p.artifacts.Get(externalID)
	if ok {
		p.logger.Debug().Str("id", externalID).Str("file", artifact.Filename).Msg("Reusing cached artifact")
	}
	return artifact, ok
}

func (p *Pipeline) storeArtifact(externalID string, artifact *models.SubtitleArtifact) {
	if p.artifacts == nil {
		return
	}
	if err := p.artifacts.Put(externalID, artifact); err != nil {
		p.logger.Warn().Err(err).Str("id", externalID).Msg("Failed to cache artifact")
	}
}

// expected reports whether err is an ordinary miss rather than a fault.
func expected(err error) bool {
	return errors.Is(err, &apperrors.ErrInvalidExternalID{}) ||
		errors.Is(err, &apperrors.ErrNotFound{}) ||
		errors.Is(err, &apperrors.ErrNoSearchCandidates{}) ||
		errors.Is(err, &apperrors.ErrNoDownloadLinks{}) ||
		errors.Is(err, &apperrors.ErrDownloadExhausted{}) ||
		errors.Is(err, &apperrors.ErrNotConfigured{}) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
