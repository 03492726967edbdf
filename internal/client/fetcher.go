package client

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/titulkysubs/titulkysubs/internal/apperrors"
)

// maxBodySize caps every upstream body read. Subtitle archives are a few hundred kilobytes at most.
const maxBodySize = 32 << 20

// Page is a fetched upstream response.
type Page struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// Fetcher retrieves upstream pages and downloads. Implementations may drive a
// real browser for HTML pages; downloads always return the raw bytes.
type Fetcher interface {
	FetchPage(ctx context.Context, url string, headers http.Header) (*Page, error)
	Download(ctx context.Context, url string, headers http.Header) (*Page, error)
}

// HTTPFetcher implements Fetcher over a plain *http.Client.
type HTTPFetcher struct {
	httpClient *http.Client
}

// NewHTTPFetcher creates a fetcher using httpClient.
func NewHTTPFetcher(httpClient *http.Client) *HTTPFetcher {
	return &HTTPFetcher{httpClient: httpClient}
}

// FetchPage performs a GET and returns the body. Non-2xx responses yield *apperrors.ErrUnexpectedStatus.
func (f *HTTPFetcher) FetchPage(ctx context.Context, url string, headers http.Header) (*Page, error) {
	return f.get(ctx, url, headers)
}

// Download performs a GET for binary content. It behaves like FetchPage; the
// caller classifies the response from its content type and size.
func (f *HTTPFetcher) Download(ctx context.Context, url string, headers http.Header) (*Page, error) {
	return f.get(ctx, url, headers)
}

func (f *HTTPFetcher) get(ctx context.Context, url string, headers http.Header) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &apperrors.ErrUnexpectedStatus{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body from %s: %w", url, err)
	}

	return &Page{
		URL:         resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
