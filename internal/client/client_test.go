package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/titulkysubs/titulkysubs/internal/apperrors"
	"github.com/titulkysubs/titulkysubs/internal/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{ClientTimeout: "5s"}
	cfg.Retry.MaxRetries = 2
	cfg.Retry.Backoff = "1ms"
	cfg.Retry.MaxBackoff = "5ms"
	return cfg
}

func TestHTTPFetcher_FetchPage(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Cookie") != "PHPSESSID=abc" {
			t.Errorf("Expected session cookie to be forwarded, got %q", r.Header.Get("Cookie"))
		}
		if r.Header.Get("Referer") != "https://example.com/detail.htm" {
			t.Errorf("Expected Referer to be forwarded, got %q", r.Header.Get("Referer"))
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	headers := http.Header{}
	headers.Set("Cookie", "PHPSESSID=abc")
	headers.Set("Referer", "https://example.com/detail.htm")

	f := NewHTTPFetcher(NewHTTPClient(testConfig()))
	page, err := f.FetchPage(context.Background(), server.URL, headers)
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	if page.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", page.StatusCode)
	}
	if page.ContentType != "text/html; charset=utf-8" {
		t.Errorf("Unexpected content type %q", page.ContentType)
	}
	if string(page.Body) != "<html></html>" {
		t.Errorf("Unexpected body %q", page.Body)
	}
}

func TestHTTPFetcher_NonOKStatus(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	f := NewHTTPFetcher(NewHTTPClient(testConfig()))
	_, err := f.Download(context.Background(), server.URL, nil)
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	var statusErr *apperrors.ErrUnexpectedStatus
	if !errors.As(err, &statusErr) {
		t.Fatalf("Expected ErrUnexpectedStatus, got: %v", err)
	}
	if !statusErr.Unauthorized() {
		t.Errorf("Expected 403 to be reported as unauthorized")
	}
}

func TestNewHTTPClient_RetriesServerErrors(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	f := NewHTTPFetcher(NewHTTPClient(testConfig()))
	page, err := f.FetchPage(context.Background(), server.URL, nil)
	if err != nil {
		t.Fatalf("Expected retry to succeed, got: %v", err)
	}
	if string(page.Body) != "ok" {
		t.Errorf("Expected body 'ok', got %q", page.Body)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("Expected 2 calls, got %d", got)
	}
}

func TestNewHTTPClient_DoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := NewHTTPFetcher(NewHTTPClient(testConfig()))
	if _, err := f.FetchPage(context.Background(), server.URL, nil); err == nil {
		t.Fatal("Expected error for 404")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("Expected exactly 1 call, got %d", got)
	}
}

func TestNewLoginClient_DoesNotFollowRedirects(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.SetCookie(w, &http.Cookie{Name: "LogonLogin", Value: "user"})
			http.Redirect(w, r, "/welcome", http.StatusFound)
			return
		}
		t.Errorf("Redirect target should not be requested")
	}))
	defer server.Close()

	resp, err := NewLoginClient(testConfig()).Post(server.URL+"/", "application/x-www-form-urlencoded", nil)
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		t.Errorf("Expected 302, got %d", resp.StatusCode)
	}
	if len(resp.Cookies()) != 1 {
		t.Errorf("Expected the login cookie to be kept, got %d cookies", len(resp.Cookies()))
	}
}

func TestRateLimitTransport(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := &http.Client{Transport: newRateLimitTransport(http.DefaultTransport, 1000, 0)}
	for i := 0; i < 3; i++ {
		resp, err := client.Get(server.URL)
		if err != nil {
			t.Fatalf("Request %d failed: %v", i, err)
		}
		resp.Body.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	if _, err := client.Do(req); err == nil {
		t.Error("Expected error for cancelled context")
	}
}
