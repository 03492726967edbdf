package models

import "time"

// DownloadAttempt is a download link scraped from a detail page.
type DownloadAttempt struct {
	LinkURL        string
	Label          string
	SelectorOrigin string
}

// CountdownPolicy is the ordered list of waits tried before each download
// fetch, plus the fixed wait applied before the indirect download request.
type CountdownPolicy struct {
	Delays         []time.Duration
	SecondaryDelay time.Duration
}

// DefaultCountdownPolicy returns the delays observed to satisfy the upstream countdown.
func DefaultCountdownPolicy() CountdownPolicy {
	return CountdownPolicy{
		Delays:         []time.Duration{0, 8 * time.Second, 13 * time.Second, 18 * time.Second},
		SecondaryDelay: 12 * time.Second,
	}
}

// ValidationVerdict classifies a fetched download response.
type ValidationVerdict int

const (
	VerdictInvalid ValidationVerdict = iota
	VerdictLikelyArchive
	VerdictLikelyInterstitial
)

// String returns the string representation of the verdict
func (v ValidationVerdict) String() string {
	switch v {
	case VerdictLikelyArchive:
		return "likely-archive"
	case VerdictLikelyInterstitial:
		return "likely-interstitial"
	default:
		return "invalid"
	}
}

// Download strategy tags recorded in artifact filenames.
const (
	StrategyDirect       = "direct"
	StrategyInterstitial = "interstitial"
)
