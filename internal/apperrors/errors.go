package apperrors

import "fmt"

// ErrNotFound represents an error when a requested resource is not found.
type ErrNotFound struct {
	Resource string
	ID       interface{}
}

// Error implements the error interface.
func (e *ErrNotFound) Error() string {
	if e.ID != nil {
		return fmt.Sprintf("%s with ID %v not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is allows for error checking with errors.Is().
func (e *ErrNotFound) Is(target error) bool {
	_, ok := target.(*ErrNotFound)
	return ok
}

// NewNotFoundError creates a new ErrNotFound.
func NewNotFoundError(resource string, id interface{}) *ErrNotFound {
	return &ErrNotFound{
		Resource: resource,
		ID:       id,
	}
}

// NewMovieNotFoundError creates a specific error for when metadata lookup has no match.
func NewMovieNotFoundError(externalID string) *ErrNotFound {
	return &ErrNotFound{
		Resource: "movie",
		ID:       externalID,
	}
}

// ErrLoginFailed is returned when the upstream site rejects the login request
// or answers without any session cookie.
type ErrLoginFailed struct {
	StatusCode int
	Reason     string
}

// Error implements the error interface.
func (e *ErrLoginFailed) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("login failed with status %d: %s", e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("login failed: %s", e.Reason)
}

// Is allows for error checking with errors.Is().
func (e *ErrLoginFailed) Is(target error) bool {
	_, ok := target.(*ErrLoginFailed)
	return ok
}

// ErrUnexpectedStatus is returned when an upstream page answers with a non-2xx status.
type ErrUnexpectedStatus struct {
	URL        string
	StatusCode int
}

// Error implements the error interface.
func (e *ErrUnexpectedStatus) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// Is allows for error checking with errors.Is().
func (e *ErrUnexpectedStatus) Is(target error) bool {
	_, ok := target.(*ErrUnexpectedStatus)
	return ok
}

// Unauthorized reports whether the status indicates a rejected session.
func (e *ErrUnexpectedStatus) Unauthorized() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

// ErrNoSearchCandidates is returned when a search page yields no scored result.
type ErrNoSearchCandidates struct {
	Title string
}

// Error implements the error interface.
func (e *ErrNoSearchCandidates) Error() string {
	return fmt.Sprintf("no search candidates for %q", e.Title)
}

// Is allows for error checking with errors.Is().
func (e *ErrNoSearchCandidates) Is(target error) bool {
	_, ok := target.(*ErrNoSearchCandidates)
	return ok
}

// ErrNoDownloadLinks is returned when a detail page has no usable download link.
type ErrNoDownloadLinks struct {
	URL string
}

// Error implements the error interface.
func (e *ErrNoDownloadLinks) Error() string {
	return fmt.Sprintf("no download links found on %s", e.URL)
}

// Is allows for error checking with errors.Is().
func (e *ErrNoDownloadLinks) Is(target error) bool {
	_, ok := target.(*ErrNoDownloadLinks)
	return ok
}

// ErrDownloadExhausted is returned when every download attempt and countdown
// delay was tried without receiving a subtitle payload.
type ErrDownloadExhausted struct {
	URL      string
	Attempts int
}

// Error implements the error interface.
func (e *ErrDownloadExhausted) Error() string {
	return fmt.Sprintf("no subtitle payload from %s after %d attempts", e.URL, e.Attempts)
}

// Is allows for error checking with errors.Is().
func (e *ErrDownloadExhausted) Is(target error) bool {
	_, ok := target.(*ErrDownloadExhausted)
	return ok
}

// ErrInvalidPayload is returned when a fetched body is neither an archive nor an interstitial page.
type ErrInvalidPayload struct {
	URL         string
	ContentType string
	Size        int
}

// Error implements the error interface.
func (e *ErrInvalidPayload) Error() string {
	return fmt.Sprintf("invalid payload from %s (content-type %q, %d bytes)", e.URL, e.ContentType, e.Size)
}

// Is allows for error checking with errors.Is().
func (e *ErrInvalidPayload) Is(target error) bool {
	_, ok := target.(*ErrInvalidPayload)
	return ok
}

// ErrInterstitialIDNotFound is returned when an interstitial page carries no download identifier.
type ErrInterstitialIDNotFound struct {
	URL string
}

// Error implements the error interface.
func (e *ErrInterstitialIDNotFound) Error() string {
	return fmt.Sprintf("no download identifier found in interstitial page %s", e.URL)
}

// Is allows for error checking with errors.Is().
func (e *ErrInterstitialIDNotFound) Is(target error) bool {
	_, ok := target.(*ErrInterstitialIDNotFound)
	return ok
}

// ErrSubtitleNotFoundInArchive is returned when an archive cannot be read or
// holds no subtitle entry.
type ErrSubtitleNotFoundInArchive struct {
	Format    string
	FileCount int
	Err       error
}

// Error implements the error interface.
func (e *ErrSubtitleNotFoundInArchive) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no subtitle in %s archive (searched %d files): %v", e.Format, e.FileCount, e.Err)
	}
	return fmt.Sprintf("no subtitle in %s archive (searched %d files)", e.Format, e.FileCount)
}

// Is allows for error checking with errors.Is().
func (e *ErrSubtitleNotFoundInArchive) Is(target error) bool {
	_, ok := target.(*ErrSubtitleNotFoundInArchive)
	return ok
}

// Unwrap returns the underlying archive error, if any.
func (e *ErrSubtitleNotFoundInArchive) Unwrap() error {
	return e.Err
}

// ErrInvalidExternalID is returned when a request carries an identifier that is
// not a recognised external movie id.
type ErrInvalidExternalID struct {
	ID string
}

// Error implements the error interface.
func (e *ErrInvalidExternalID) Error() string {
	return fmt.Sprintf("invalid external id %q", e.ID)
}

// Is allows for error checking with errors.Is().
func (e *ErrInvalidExternalID) Is(target error) bool {
	_, ok := target.(*ErrInvalidExternalID)
	return ok
}

// ErrNotConfigured is returned when an operation needs a setting that is empty.
type ErrNotConfigured struct {
	Setting string
}

// Error implements the error interface.
func (e *ErrNotConfigured) Error() string {
	return fmt.Sprintf("%s is not configured", e.Setting)
}

// Is allows for error checking with errors.Is().
func (e *ErrNotConfigured) Is(target error) bool {
	_, ok := target.(*ErrNotConfigured)
	return ok
}
