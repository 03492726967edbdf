package session

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/titulkysubs/titulkysubs/internal/apperrors"
	"github.com/titulkysubs/titulkysubs/internal/config"
	"github.com/titulkysubs/titulkysubs/internal/metrics"
	"github.com/titulkysubs/titulkysubs/internal/models"
)

const acceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"

// Store hands out request headers for upstream calls and tracks the shared login session.
type Store interface {
	// Headers returns the headers to send upstream. It logs in when no valid
	// session exists and falls back to anonymous headers when login fails.
	Headers(ctx context.Context) http.Header
	// Invalidate drops the current session so the next Headers call logs in again.
	Invalidate()
}

// Options configures a LoginStore.
type Options struct {
	Origin         string
	Username       string
	Password       string
	TTL            time.Duration
	UserAgent      string
	AcceptLanguage string
}

// OptionsFromConfig builds store options from the application config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Origin:         cfg.Site.Origin,
		Username:       cfg.Site.Username,
		Password:       cfg.Site.Password,
		TTL:            config.ParseDuration("session.ttl", cfg.Session.TTL, 2*time.Hour),
		UserAgent:      config.GetUserAgent(),
		AcceptLanguage: cfg.Site.AcceptLanguage,
	}
}

// LoginStore is a Store backed by the site's credential form. A single
// session is shared process-wide; concurrent logins are not serialized and
// the last successful one wins.
type LoginStore struct {
	httpClient *http.Client
	opts       Options
	logger     zerolog.Logger
	now        func() time.Time

	mu      sync.RWMutex
	session *models.Session
}

// NewLoginStore creates a store. httpClient should not follow redirects so the
// login response cookies are visible.
func NewLoginStore(httpClient *http.Client, opts Options) *LoginStore {
	if opts.TTL <= 0 {
		opts.TTL = 2 * time.Hour
	}
	if opts.UserAgent == "" {
		opts.UserAgent = config.DefaultUserAgent
	}
	return &LoginStore{
		httpClient: httpClient,
		opts:       opts,
		logger:     config.GetLogger().With().Str("component", "session").Logger(),
		now:        time.Now,
	}
}

// HasCredentials reports whether a username and password are configured.
func (s *LoginStore) HasCredentials() bool {
	return s.opts.Username != "" && s.opts.Password != ""
}

// Headers implements Store.
func (s *LoginStore) Headers(ctx context.Context) http.Header {
	if current := s.Current(); current.Valid(s.now()) {
		return s.authenticatedHeaders(current)
	}
	if !s.HasCredentials() {
		return s.anonymousHeaders()
	}

	sess, err := s.Login(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Login failed, continuing anonymously")
		return s.anonymousHeaders()
	}
	return s.authenticatedHeaders(sess)
}

// Invalidate implements Store.
func (s *LoginStore) Invalidate() {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()
	s.logger.Debug().Msg("Session invalidated")
}

// Current returns the stored session, which may be nil or expired.
func (s *LoginStore) Current() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Login submits the credential form and stores the resulting session.
func (s *LoginStore) Login(ctx context.Context) (*models.Session, error) {
	sess, err := s.login(ctx)
	if err != nil {
		metrics.SessionLoginsTotal.WithLabelValues("failure").Inc()
		return nil, err
	}
	metrics.SessionLoginsTotal.WithLabelValues("success").Inc()

	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()

	s.logger.Info().Time("expires_at", sess.ExpiresAt).Msg("Logged in")
	return sess, nil
}

func (s *LoginStore) login(ctx context.Context) (*models.Session, error) {
	if !s.HasCredentials() {
		return nil, &apperrors.ErrLoginFailed{Reason: "no credentials configured"}
	}

	form := url.Values{}
	form.Set("Login", s.opts.Username)
	form.Set("Password", s.opts.Password)
	form.Set("prihlasit", "Přihlásit")
	form.Set("foreverlog", "1")
	form.Set("Detail2", "")

	loginURL := strings.TrimRight(s.opts.Origin, "/") + "/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, loginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", s.opts.UserAgent)
	req.Header.Set("Accept", acceptHTML)
	req.Header.Set("Accept-Language", s.opts.AcceptLanguage)
	req.Header.Set("Referer", loginURL)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &apperrors.ErrLoginFailed{Reason: err.Error()}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &apperrors.ErrLoginFailed{StatusCode: resp.StatusCode, Reason: "rejected by server"}
	}

	token := cookieToken(resp.Cookies())
	if token == "" {
		return nil, &apperrors.ErrLoginFailed{StatusCode: resp.StatusCode, Reason: "no session cookie returned"}
	}

	return &models.Session{
		CredentialToken: token,
		ExpiresAt:       s.now().Add(s.opts.TTL),
	}, nil
}

// cookieToken joins cookies into a Cookie header value, dropping attributes.
func cookieToken(cookies []*http.Cookie) string {
	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		if c.Name == "" {
			continue
		}
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

func (s *LoginStore) anonymousHeaders() http.Header {
	h := http.Header{}
	h.Set("User-Agent", s.opts.UserAgent)
	h.Set("Accept-Language", s.opts.AcceptLanguage)
	return h
}

func (s *LoginStore) authenticatedHeaders(sess *models.Session) http.Header {
	h := s.anonymousHeaders()
	h.Set("Accept", acceptHTML)
	h.Set("Referer", strings.TrimRight(s.opts.Origin, "/")+"/")
	h.Set("Cookie", sess.CredentialToken)
	return h
}
