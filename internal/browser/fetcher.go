// Package browser provides a headless Chrome implementation of client.Fetcher
// for HTML pages that only render their download links through JavaScript.
package browser

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/titulkysubs/titulkysubs/internal/client"
	"github.com/titulkysubs/titulkysubs/internal/config"
)

// Fetcher renders HTML pages in a shared headless browser. Binary downloads
// are delegated to the HTTP fetcher since Chrome would hand them to its
// download manager instead of the page.
type Fetcher struct {
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	timeout     time.Duration
	downloads   client.Fetcher

	// one tab at a time: the upstream session is shared anyway
	mu sync.Mutex
}

// NewFetcher starts a Chrome allocator configured from cfg.Browser.
func NewFetcher(cfg *config.Config, downloads client.Fetcher) *Fetcher {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Browser.Headless),
		chromedp.UserAgent(config.GetUserAgent()),
	)
	if cfg.Browser.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.Browser.ExecPath))
	}
	if cfg.ProxyConnectionString != "" {
		opts = append(opts, chromedp.ProxyServer(cfg.ProxyConnectionString))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &Fetcher{
		allocCtx:    allocCtx,
		cancelAlloc: cancel,
		timeout:     config.ParseDuration("browser.timeout", cfg.Browser.Timeout, 45*time.Second),
		downloads:   downloads,
	}
}

// FetchPage navigates to url with headers applied and returns the rendered document.
func (f *Fetcher) FetchPage(ctx context.Context, url string, headers http.Header) (*client.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	tabCtx, cancelTab := chromedp.NewContext(f.allocCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, f.timeout)
	defer cancelTimeout()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var html string
	err := chromedp.Run(tabCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(toNetworkHeaders(headers)),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("browser fetch of %s failed: %w", url, err)
	}

	return &client.Page{
		URL:         url,
		StatusCode:  http.StatusOK,
		ContentType: "text/html; charset=utf-8",
		Body:        []byte(html),
	}, nil
}

// Download fetches binary content through the HTTP fetcher.
func (f *Fetcher) Download(ctx context.Context, url string, headers http.Header) (*client.Page, error) {
	return f.downloads.Download(ctx, url, headers)
}

// Close shuts the browser down.
func (f *Fetcher) Close() {
	f.cancelAlloc()
}

// toNetworkHeaders flattens headers for the DevTools protocol. User-Agent is
// set on the allocator and skipped here.
func toNetworkHeaders(headers http.Header) network.Headers {
	out := make(network.Headers, len(headers))
	for key, values := range headers {
		if len(values) == 0 || http.CanonicalHeaderKey(key) == "User-Agent" {
			continue
		}
		out[key] = values[0]
	}
	return out
}
