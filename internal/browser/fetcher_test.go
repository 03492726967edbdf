package browser

import (
	"net/http"
	"testing"
)

func TestToNetworkHeaders(t *testing.T) {
	headers := http.Header{}
	headers.Set("Cookie", "PHPSESSID=abc")
	headers.Set("Accept-Language", "cs")
	headers.Set("User-Agent", "ignored")
	headers["X-Empty"] = nil

	got := toNetworkHeaders(headers)

	if got["Cookie"] != "PHPSESSID=abc" {
		t.Errorf("Expected Cookie header, got %v", got["Cookie"])
	}
	if got["Accept-Language"] != "cs" {
		t.Errorf("Expected Accept-Language header, got %v", got["Accept-Language"])
	}
	if _, ok := got["User-Agent"]; ok {
		t.Error("Expected User-Agent to be left to the allocator")
	}
	if _, ok := got["X-Empty"]; ok {
		t.Error("Expected empty header to be skipped")
	}
}
