package gh

import (
	"errors"
	"fmt"
)

// Sentinel errors for API conditions callers branch on.
var (
	// ErrNotFound means the requested folder (or the samples directory above
	// it) does not exist at the requested ref.
	ErrNotFound = errors.New("folder not found in repository")

	// ErrRateLimited means GitHub rejected an unauthenticated request because
	// the per-IP rate limit is exhausted.
	ErrRateLimited = errors.New("github api rate limit exceeded")

	// ErrTruncated means the Trees API returned an incomplete listing, so a
	// full download cannot be guaranteed.
	ErrTruncated = errors.New("folder listing truncated by github api")

	// ErrEmptySample means the folder exists but contains no files.
	ErrEmptySample = errors.New("folder contains no files")
)

// APIError is a non-success REST API response that does not map to a more
// specific condition.
type APIError struct {
	Status  int
	URL     string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("github api: HTTP %d for %s: %s", e.Status, e.URL, e.Message)
	}
	return fmt.Sprintf("github api: HTTP %d for %s", e.Status, e.URL)
}

// DownloadError reports a failed raw-content download of a single file.
// Path is the file's path inside the repository.
type DownloadError struct {
	Path   string
	Status int
	Err    error
}

func (e *DownloadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("downloading %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("downloading %s: HTTP %d", e.Path, e.Status)
}

func (e *DownloadError) Unwrap() error { return e.Err }
