// Package metadata resolves external movie ids to a title and release year.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/titulkysubs/titulkysubs/internal/apperrors"
	"github.com/titulkysubs/titulkysubs/internal/config"
	"github.com/titulkysubs/titulkysubs/internal/models"
)

// Lookup resolves an external id such as "tt0133093".
type Lookup interface {
	Lookup(ctx context.Context, externalID string) (*models.Movie, error)
}

// ErrMissingAPIKey is returned when no OMDb API key is configured.
var ErrMissingAPIKey = &apperrors.ErrNotConfigured{Setting: "metadata.omdb_api_key"}

var yearPattern = regexp.MustCompile(`\d{4}`)

type omdbResponse struct {
	Title    string `json:"Title"`
	Year     string `json:"Year"`
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

// OMDbClient looks movies up on the OMDb API.
type OMDbClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     zerolog.Logger
}

// NewOMDbClient creates a client for the API at baseURL.
func NewOMDbClient(httpClient *http.Client, baseURL, apiKey string) *OMDbClient {
	if baseURL == "" {
		baseURL = "http://www.omdbapi.com/"
	}
	return &OMDbClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     config.GetLogger().With().Str("component", "metadata").Logger(),
	}
}

// Lookup fetches title and year for externalID. Unknown ids and answers
// without a title yield *apperrors.ErrNotFound.
func (c *OMDbClient) Lookup(ctx context.Context, externalID string) (*models.Movie, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid omdb url: %w", err)
	}
	query := u.Query()
	query.Set("i", externalID)
	query.Set("apikey", c.apiKey)
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("omdb request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &apperrors.ErrUnexpectedStatus{URL: c.baseURL, StatusCode: resp.StatusCode}
	}

	var body omdbResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode omdb response: %w", err)
	}

	if strings.EqualFold(body.Response, "False") || strings.TrimSpace(body.Title) == "" {
		c.logger.Debug().Str("id", externalID).Str("reason", body.Error).Msg("Movie not found")
		return nil, apperrors.NewMovieNotFoundError(externalID)
	}

	movie := &models.Movie{
		ExternalID: externalID,
		Title:      strings.TrimSpace(body.Title),
		Year:       yearPattern.FindString(body.Year),
	}
	c.logger.Debug().Str("id", externalID).Str("title", movie.Title).Str("year", movie.Year).Msg("Resolved movie metadata")
	return movie, nil
}
