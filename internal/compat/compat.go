// Package compat resolves the Node.js versions recommended for a sample's
// SharePoint Framework release. The compatibility matrix is fetched from a
// remote JSON document and cached on disk with a TTL; everything here is
// advisory and must never block a retrieval.
package compat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"golang.org/x/mod/semver"
)

const (
	cacheFileSuffix = "samplefetch/spfx-matrix.json"
	defaultTimeout  = 10 * time.Second
)

// Entry is one row of the compatibility matrix.
type Entry struct {
	SPFx string `json:"spfx"` // framework release, e.g. "1.18"
	Node string `json:"node"` // supported Node range, e.g. ">=18.17.1 <19.0.0"
}

// Matrix maps SharePoint Framework releases to supported Node version
// ranges.
type Matrix struct {
	Entries []Entry `json:"entries"`
}

// Lookup returns the matrix entry whose framework release matches the
// major.minor of the given version.
func Lookup(m Matrix, version string) (Entry, bool) {
	want := semver.MajorMinor("v" + strings.TrimPrefix(version, "v"))
	if want == "" {
		return Entry{}, false
	}
	for _, e := range m.Entries {
		if semver.MajorMinor("v"+strings.TrimPrefix(e.SPFx, "v")) == want {
			return e, true
		}
	}
	return Entry{}, false
}

// DefaultCachePath returns the XDG cache location for the matrix file.
func DefaultCachePath() (string, error) {
	return xdg.CacheFile(cacheFileSuffix)
}

// cacheFile is the on-disk cache format.
type cacheFile struct {
	FetchedAt time.Time `json:"fetched_at"`
	Matrix    Matrix    `json:"matrix"`
}

// Resolver fetches the compatibility matrix and caches it on disk.
// Concurrent invocations race benignly on the cache file: last writer wins,
// and the content is advisory.
type Resolver struct {
	httpClient *http.Client
	url        string
	cachePath  string
	ttl        time.Duration
	now        func() time.Time
}

// NewResolver creates a Resolver for the matrix at url, cached at cachePath
// for ttl. Passing a nil HTTP client uses a default with a short timeout.
func NewResolver(httpClient *http.Client, url, cachePath string, ttl time.Duration) *Resolver {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Resolver{
		httpClient: httpClient,
		url:        url,
		cachePath:  cachePath,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Matrix returns the compatibility matrix, served from cache while fresh.
// When a refresh fails and a stale cache exists, the stale matrix is
// returned instead of an error.
func (r *Resolver) Matrix(ctx context.Context) (Matrix, error) {
	cached, ok := r.readCache()
	if ok && r.now().Sub(cached.FetchedAt) < r.ttl {
		return cached.Matrix, nil
	}

	m, err := r.fetch(ctx)
	if err != nil {
		if ok {
			return cached.Matrix, nil
		}
		return Matrix{}, err
	}

	r.writeCache(cacheFile{FetchedAt: r.now().UTC(), Matrix: m})
	return m, nil
}

func (r *Resolver) fetch(ctx context.Context) (Matrix, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return Matrix{}, err
	}
	req.Header.Set("User-Agent", "samplefetch")

	// The matrix URL is usually a shortlink; the client follows its
	// redirect.
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return Matrix{}, fmt.Errorf("fetching compatibility matrix: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Matrix{}, fmt.Errorf("compatibility matrix: HTTP %d", resp.StatusCode)
	}

	var m Matrix
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return Matrix{}, fmt.Errorf("decoding compatibility matrix: %w", err)
	}
	return m, nil
}

// readCache loads the cache file. ok is false when the file is missing or
// corrupt, both treated as a plain cache miss.
func (r *Resolver) readCache() (cacheFile, bool) {
	data, err := os.ReadFile(r.cachePath)
	if err != nil {
		return cacheFile{}, false
	}
	var c cacheFile
	if err := json.Unmarshal(data, &c); err != nil {
		return cacheFile{}, false
	}
	return c, true
}

// writeCache is best effort: an unwritable cache must not fail the lookup.
func (r *Resolver) writeCache(c cacheFile) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(r.cachePath), 0o755); err != nil {
		return
	}
	_ = os.WriteFile(r.cachePath, data, 0o644)
}
