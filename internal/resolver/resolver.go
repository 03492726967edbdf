// Package resolver turns a subtitle detail page into a stored subtitle file,
// working through the upstream countdown and interstitial download pages.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/titulkysubs/titulkysubs/internal/apperrors"
	"github.com/titulkysubs/titulkysubs/internal/archive"
	"github.com/titulkysubs/titulkysubs/internal/client"
	"github.com/titulkysubs/titulkysubs/internal/config"
	"github.com/titulkysubs/titulkysubs/internal/metrics"
	"github.com/titulkysubs/titulkysubs/internal/models"
	"github.com/titulkysubs/titulkysubs/internal/parser"
	"github.com/titulkysubs/titulkysubs/internal/session"
	"github.com/titulkysubs/titulkysubs/internal/storage"
	"github.com/titulkysubs/titulkysubs/internal/textutil"
)

// Metric stage labels.
const (
	stageDirect       = "direct"
	stageInterstitial = "interstitial"
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// SleepContext is the default SleepFunc backed by a timer.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Options configures a Resolver.
type Options struct {
	Origin          string
	IndirectPath    string
	MaxAttempts     int
	MinPayloadBytes int
	ConvertUTF8     bool
	Language        string
	Countdown       models.CountdownPolicy
}

// DefaultOptions returns options for the default site.
func DefaultOptions() Options {
	return Options{
		Origin:          "https://www.titulky.com",
		IndirectPath:    "/idown.php",
		MaxAttempts:     3,
		MinPayloadBytes: 1000,
		ConvertUTF8:     true,
		Language:        "cze",
		Countdown:       models.DefaultCountdownPolicy(),
	}
}

// OptionsFromConfig builds resolver options from the application config.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	if cfg.Site.Origin != "" {
		opts.Origin = cfg.Site.Origin
	}
	if cfg.Site.IndirectPath != "" {
		opts.IndirectPath = cfg.Site.IndirectPath
	}
	if cfg.Resolver.MaxAttempts > 0 {
		opts.MaxAttempts = cfg.Resolver.MaxAttempts
	}
	if cfg.Resolver.MinPayloadBytes > 0 {
		opts.MinPayloadBytes = cfg.Resolver.MinPayloadBytes
	}
	opts.ConvertUTF8 = cfg.Resolver.ConvertUTF8
	if cfg.Subtitles.Language != "" {
		opts.Language = cfg.Subtitles.Language
	}
	opts.Countdown = models.CountdownPolicy{
		Delays:         config.ParseDurations("countdown.delays", cfg.Countdown.Delays, opts.Countdown.Delays),
		SecondaryDelay: config.ParseDuration("countdown.secondary_delay", cfg.Countdown.SecondaryDelay, opts.Countdown.SecondaryDelay),
	}
	return opts
}

// Resolver downloads the subtitle behind a detail page.
type Resolver struct {
	fetcher   client.Fetcher
	sessions  session.Store
	extractor *archive.Extractor
	dir       *storage.Dir
	links     *LinkParser
	ids       *IDExtractor
	opts      Options
	sleep     SleepFunc
	now       func() time.Time
	logger    zerolog.Logger
}

// NewResolver creates a resolver storing files in dir.
func NewResolver(fetcher client.Fetcher, sessions session.Store, extractor *archive.Extractor, dir *storage.Dir, opts Options) *Resolver {
	if len(opts.Countdown.Delays) == 0 {
		opts.Countdown.Delays = []time.Duration{0}
	}
	opts.Origin = strings.TrimRight(opts.Origin, "/")
	ids := NewIDExtractor(opts.IndirectPath)
	return &Resolver{
		fetcher:   fetcher,
		sessions:  sessions,
		extractor: extractor,
		dir:       dir,
		links:     NewLinkParser(DefaultLinkRules(ids.Endpoint()), opts.MaxAttempts),
		ids:       ids,
		opts:      opts,
		sleep:     SleepContext,
		now:       time.Now,
		logger:    config.GetLogger().With().Str("component", "resolver").Logger(),
	}
}

// WithSleep replaces the wait used for countdown delays.
func (r *Resolver) WithSleep(sleep SleepFunc) *Resolver {
	r.sleep = sleep
	return r
}

// WithClock replaces the clock used for artifact file names.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// IndirectURL returns the indirect download URL for id.
func (r *Resolver) IndirectURL(id, attemptURL string) string {
	origin := r.opts.Origin
	if origin == "" {
		if u, err := url.Parse(attemptURL); err == nil {
			origin = u.Scheme + "://" + u.Host
		}
	}
	return origin + "/" + strings.TrimLeft(r.opts.IndirectPath, "/") + "?id=" + url.QueryEscape(id)
}

// targetURL follows a matched endpoint link against the origin, or builds the
// indirect URL from the id alone.
func (r *Resolver) targetURL(target IndirectTarget, attemptURL string) string {
	if target.Href != "" {
		base := r.opts.Origin
		if base == "" {
			base = attemptURL
		}
		baseURL, err := url.Parse(base)
		ref, refErr := url.Parse(target.Href)
		if err == nil && refErr == nil {
			return baseURL.ResolveReference(ref).String()
		}
	}
	return r.IndirectURL(target.ID, attemptURL)
}

// Resolve fetches the detail page at pageURL and tries each download link
// under every countdown delay until a subtitle payload arrives. title names
// the stored file.
func (r *Resolver) Resolve(ctx context.Context, pageURL, title string) (*models.SubtitleArtifact, error) {
	headers := r.sessions.Headers(ctx)

	page, err := r.fetcher.FetchPage(ctx, pageURL, headers)
	if err != nil {
		r.checkUnauthorized(err)
		return nil, fmt.Errorf("failed to fetch detail page: %w", err)
	}
	doc, err := parser.NewDocument(page.Body, page.ContentType)
	if err != nil {
		return nil, err
	}

	attempts := r.links.Parse(doc, pageURL)
	if len(attempts) == 0 {
		return nil, &apperrors.ErrNoDownloadLinks{URL: pageURL}
	}
	r.logger.Debug().Str("url", pageURL).Int("links", len(attempts)).Msg("Found download links")

	tries := 0
	for _, attempt := range attempts {
		for _, delay := range r.opts.Countdown.Delays {
			if err := r.sleep(ctx, delay); err != nil {
				return nil, err
			}
			tries++

			artifact, err := r.tryAttempt(ctx, headers, pageURL, attempt, title)
			if err == nil {
				r.logger.Info().
					Str("url", artifact.URL).
					Str("strategy", artifact.Strategy).
					Str("rule", attempt.SelectorOrigin).
					Dur("delay", delay).
					Msg("Subtitle downloaded")
				return artifact, nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			r.logger.Debug().
				Err(err).
				Str("link", attempt.LinkURL).
				Str("label", attempt.Label).
				Dur("delay", delay).
				Msg("Download attempt failed")
		}
	}

	return nil, &apperrors.ErrDownloadExhausted{URL: pageURL, Attempts: tries}
}

func (r *Resolver) tryAttempt(ctx context.Context, headers http.Header, pageURL string, attempt models.DownloadAttempt, title string) (*models.SubtitleArtifact, error) {
	h := cloneHeaders(headers)
	h.Set("Referer", pageURL)

	payload, err := r.fetcher.Download(ctx, attempt.LinkURL, h)
	if err != nil {
		r.checkUnauthorized(err)
		return nil, err
	}

	verdict := Classify(payload.ContentType, len(payload.Body), r.opts.MinPayloadBytes)
	metrics.ResolverAttemptsTotal.WithLabelValues(stageDirect, verdict.String()).Inc()

	switch verdict {
	case models.VerdictLikelyArchive:
		return r.persist(payload, attempt.LinkURL, title, models.StrategyDirect)
	case models.VerdictLikelyInterstitial:
		return r.followInterstitial(ctx, headers, attempt.LinkURL, payload, title)
	default:
		return nil, &apperrors.ErrInvalidPayload{URL: attempt.LinkURL, ContentType: payload.ContentType, Size: len(payload.Body)}
	}
}

// followInterstitial reads the download id from an interstitial page, waits
// the secondary delay and issues exactly one indirect request.
func (r *Resolver) followInterstitial(ctx context.Context, headers http.Header, attemptURL string, page *client.Page, title string) (*models.SubtitleArtifact, error) {
	target, ok := r.ids.Extract(page.Body)
	if !ok {
		return nil, &apperrors.ErrInterstitialIDNotFound{URL: attemptURL}
	}
	indirectURL := r.targetURL(target, attemptURL)
	r.logger.Debug().
		Str("id", target.ID).
		Str("method", target.Method).
		Str("url", indirectURL).
		Dur("wait", r.opts.Countdown.SecondaryDelay).
		Msg("Following interstitial page")

	if err := r.sleep(ctx, r.opts.Countdown.SecondaryDelay); err != nil {
		return nil, err
	}

	h := cloneHeaders(headers)
	h.Set("Referer", attemptURL)
	payload, err := r.fetcher.Download(ctx, indirectURL, h)
	if err != nil {
		r.checkUnauthorized(err)
		return nil, err
	}

	verdict := Classify(payload.ContentType, len(payload.Body), r.opts.MinPayloadBytes)
	metrics.ResolverAttemptsTotal.WithLabelValues(stageInterstitial, verdict.String()).Inc()
	if verdict != models.VerdictLikelyArchive {
		return nil, &apperrors.ErrInvalidPayload{URL: indirectURL, ContentType: payload.ContentType, Size: len(payload.Body)}
	}
	return r.persist(payload, indirectURL, title, models.StrategyInterstitial)
}

// persist stores the payload and, when it is an archive, the subtitle inside
// it. Archives without a readable subtitle are renamed to .srt as-is.
func (r *Resolver) persist(payload *client.Page, linkURL, title, strategy string) (*models.SubtitleArtifact, error) {
	base := fmt.Sprintf("%s_%s_%d", textutil.Slug(title), strategy, r.now().UnixMilli())
	ext := inferExtension(payload.ContentType, linkURL)
	stored := base + ext
	if err := r.dir.Write(stored, payload.Body); err != nil {
		return nil, err
	}

	final, err := r.materialize(base, stored, ext, payload.Body)
	if err != nil {
		return nil, err
	}

	return &models.SubtitleArtifact{
		ID:       strategy + "_" + uuid.NewString(),
		URL:      r.dir.URL(final),
		Lang:     r.opts.Language,
		Filename: final,
		Strategy: strategy,
	}, nil
}

func (r *Resolver) materialize(base, stored, ext string, body []byte) (string, error) {
	format := archive.DetectFormat(body)
	if format == archive.FormatUnknown && ext == ".srt" {
		if r.opts.ConvertUTF8 && !utf8.Valid(body) {
			return stored, r.dir.Write(stored, toUTF8(body))
		}
		return stored, nil
	}

	file, err := r.extractor.Extract(body)
	if err == nil {
		final := base + file.Ext()
		content := file.Content
		if r.opts.ConvertUTF8 {
			content = toUTF8(content)
		}
		if err := r.dir.Write(final, content); err != nil {
			return "", err
		}
		return final, nil
	}

	r.logger.Warn().Err(err).Str("file", stored).Msg("Archive extraction failed, keeping payload as subtitle")
	final := base + ".srt"
	if final != stored {
		if err := r.dir.Rename(stored, final); err != nil {
			return "", err
		}
	}
	if r.opts.ConvertUTF8 && format == archive.FormatUnknown && !utf8.Valid(body) {
		if err := r.dir.Write(final, toUTF8(body)); err != nil {
			return "", err
		}
	}
	return final, nil
}

func (r *Resolver) checkUnauthorized(err error) {
	var statusErr *apperrors.ErrUnexpectedStatus
	if errors.As(err, &statusErr) && statusErr.Unauthorized() {
		r.sessions.Invalidate()
	}
}

// inferExtension picks the stored file extension from the content type, then
// the URL path, defaulting to .zip.
func inferExtension(contentType, linkURL string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "rar"):
		return ".rar"
	case strings.Contains(ct, "zip"):
		return ".zip"
	}
	if u, err := url.Parse(linkURL); err == nil {
		switch ext := strings.ToLower(path.Ext(u.Path)); ext {
		case ".zip", ".rar", ".srt":
			return ext
		}
	}
	return ".zip"
}

func cloneHeaders(headers http.Header) http.Header {
	if headers == nil {
		return http.Header{}
	}
	return headers.Clone()
}
