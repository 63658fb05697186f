// Package gh fetches sample folders from GitHub without authentication,
// using the Trees API for listings and raw.githubusercontent.com for file
// content.
package gh

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultAPIBase = "https://api.github.com"
	defaultRawBase = "https://raw.githubusercontent.com"

	acceptGitHubJSON = "application/vnd.github+json"
	userAgent        = "samplefetch"

	defaultTimeout = 30 * time.Second
)

// Client talks to the GitHub REST and raw-content endpoints. The base URLs
// are fields so tests can point a Client at a local server.
type Client struct {
	httpClient *http.Client
	apiBase    string
	rawBase    string
}

// NewClient creates a Client around the given HTTP client. Passing nil uses
// a default client with a request timeout.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		httpClient: httpClient,
		apiBase:    defaultAPIBase,
		rawBase:    defaultRawBase,
	}
}

// newAPIRequest builds a GET request with the headers GitHub's REST API
// expects from unauthenticated callers.
func (c *Client) newAPIRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", acceptGitHubJSON)
	req.Header.Set("User-Agent", userAgent)
	return req, nil
}

// checkAPIResponse maps a non-200 REST API response onto the package's
// error vocabulary. The body is consumed for the error message.
func checkAPIResponse(resp *http.Response, url string) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	if rateLimited(resp) {
		return ErrRateLimited
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(body))

	// GitHub error bodies are JSON with a human-readable message field.
	var ghErr struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &ghErr); err == nil && ghErr.Message != "" {
		msg = ghErr.Message
	}

	return &APIError{Status: resp.StatusCode, URL: url, Message: msg}
}

// rateLimited reports whether the response is GitHub's unauthenticated
// rate-limit rejection: 403 with the remaining-requests header at zero.
func rateLimited(resp *http.Response) bool {
	return resp.StatusCode == http.StatusForbidden &&
		resp.Header.Get("X-RateLimit-Remaining") == "0"
}
