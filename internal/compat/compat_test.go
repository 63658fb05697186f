package compat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

var testMatrix = Matrix{Entries: []Entry{
	{SPFx: "1.17", Node: ">=16.13.0 <17.0.0"},
	{SPFx: "1.18", Node: ">=16.13.0 <17.0.0 || >=18.17.1 <19.0.0"},
	{SPFx: "1.19", Node: ">=18.17.1 <19.0.0"},
}}

// matrixServer serves the test matrix and counts requests. Failures can be
// toggled to exercise the stale-cache fallback.
type matrixServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests int
	fail     bool
}

func newMatrixServer(t *testing.T) *matrixServer {
	t.Helper()
	ms := &matrixServer{}
	ms.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ms.mu.Lock()
		ms.requests++
		fail := ms.fail
		ms.mu.Unlock()

		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(testMatrix)
	}))
	t.Cleanup(ms.Close)
	return ms
}

func (ms *matrixServer) requestCount() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.requests
}

func (ms *matrixServer) setFail(fail bool) {
	ms.mu.Lock()
	ms.fail = fail
	ms.mu.Unlock()
}

func TestLookup(t *testing.T) {
	t.Parallel()

	cases := []struct {
		version string
		want    string
		wantOK  bool
	}{
		{"1.18.2", "1.18", true},
		{"1.18", "1.18", true},
		{"v1.17.4", "1.17", true},
		{"2.0.0", "", false},
		{"garbage", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		entry, ok := Lookup(testMatrix, tc.version)
		if ok != tc.wantOK {
			t.Errorf("Lookup(%q) ok = %v, want %v", tc.version, ok, tc.wantOK)
			continue
		}
		if ok && entry.SPFx != tc.want {
			t.Errorf("Lookup(%q) = %q, want %q", tc.version, entry.SPFx, tc.want)
		}
	}
}

func TestResolverMatrix_CachesWithinTTL(t *testing.T) {
	t.Parallel()

	ms := newMatrixServer(t)
	cachePath := filepath.Join(t.TempDir(), "matrix.json")
	r := NewResolver(ms.Client(), ms.URL, cachePath, 24*time.Hour)

	ctx := context.Background()
	for range 2 {
		m, err := r.Matrix(ctx)
		if err != nil {
			t.Fatalf("Matrix: unexpected error: %v", err)
		}
		if len(m.Entries) != 3 {
			t.Fatalf("Matrix entries = %d, want 3", len(m.Entries))
		}
	}

	if got := ms.requestCount(); got != 1 {
		t.Errorf("requests within TTL = %d, want 1", got)
	}
}

func TestResolverMatrix_RefreshAfterTTL(t *testing.T) {
	t.Parallel()

	ms := newMatrixServer(t)
	cachePath := filepath.Join(t.TempDir(), "matrix.json")
	r := NewResolver(ms.Client(), ms.URL, cachePath, 24*time.Hour)

	current := time.Now()
	r.now = func() time.Time { return current }

	ctx := context.Background()
	if _, err := r.Matrix(ctx); err != nil {
		t.Fatalf("Matrix: unexpected error: %v", err)
	}

	current = current.Add(25 * time.Hour)
	if _, err := r.Matrix(ctx); err != nil {
		t.Fatalf("Matrix after TTL: unexpected error: %v", err)
	}

	if got := ms.requestCount(); got != 2 {
		t.Errorf("requests across TTL expiry = %d, want 2", got)
	}
}

func TestResolverMatrix_StaleFallback(t *testing.T) {
	t.Parallel()

	ms := newMatrixServer(t)
	cachePath := filepath.Join(t.TempDir(), "matrix.json")
	r := NewResolver(ms.Client(), ms.URL, cachePath, 24*time.Hour)

	current := time.Now()
	r.now = func() time.Time { return current }

	ctx := context.Background()
	if _, err := r.Matrix(ctx); err != nil {
		t.Fatalf("Matrix: unexpected error: %v", err)
	}

	ms.setFail(true)
	current = current.Add(48 * time.Hour)

	m, err := r.Matrix(ctx)
	if err != nil {
		t.Fatalf("Matrix with failing refresh: got error %v, want stale cache", err)
	}
	if len(m.Entries) != 3 {
		t.Errorf("stale matrix entries = %d, want 3", len(m.Entries))
	}
}

func TestResolverMatrix_CorruptCacheIgnored(t *testing.T) {
	t.Parallel()

	ms := newMatrixServer(t)
	cachePath := filepath.Join(t.TempDir(), "matrix.json")
	if err := os.WriteFile(cachePath, []byte("{corrupt"), 0o644); err != nil {
		t.Fatalf("writing corrupt cache: %v", err)
	}

	r := NewResolver(ms.Client(), ms.URL, cachePath, 24*time.Hour)
	m, err := r.Matrix(context.Background())
	if err != nil {
		t.Fatalf("Matrix with corrupt cache: unexpected error: %v", err)
	}
	if len(m.Entries) != 3 {
		t.Errorf("Matrix entries = %d, want 3", len(m.Entries))
	}
	if got := ms.requestCount(); got != 1 {
		t.Errorf("requests = %d, want 1", got)
	}
}

func TestResolverMatrix_ErrorWithoutCache(t *testing.T) {
	t.Parallel()

	ms := newMatrixServer(t)
	ms.setFail(true)

	r := NewResolver(ms.Client(), ms.URL, filepath.Join(t.TempDir(), "matrix.json"), 24*time.Hour)
	if _, err := r.Matrix(context.Background()); err == nil {
		t.Fatal("Matrix with failing server and no cache succeeded, want error")
	}
}

func TestDetectFrameworkVersion(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		pkg     string
		want    string
		wantOK  bool
		missing bool
	}{
		{
			name:   "dependency pin",
			pkg:    `{"dependencies":{"@microsoft/sp-core-library":"1.18.2"}}`,
			want:   "1.18.2",
			wantOK: true,
		},
		{
			name:   "caret pin",
			pkg:    `{"dependencies":{"@microsoft/sp-core-library":"^1.19.0"}}`,
			want:   "1.19.0",
			wantOK: true,
		},
		{
			name:   "dev dependency fallback",
			pkg:    `{"devDependencies":{"@microsoft/sp-core-library":"~1.17.4"}}`,
			want:   "1.17.4",
			wantOK: true,
		},
		{
			name:   "no framework dependency",
			pkg:    `{"dependencies":{"react":"17.0.1"}}`,
			wantOK: false,
		},
		{
			name:   "unparsable descriptor",
			pkg:    `{broken`,
			wantOK: false,
		},
		{
			name:    "missing descriptor",
			missing: true,
			wantOK:  false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			if !tc.missing {
				if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte(tc.pkg), 0o644); err != nil {
					t.Fatalf("writing package.json: %v", err)
				}
			}

			got, ok := DetectFrameworkVersion(dir)
			if ok != tc.wantOK {
				t.Fatalf("DetectFrameworkVersion ok = %v, want %v", ok, tc.wantOK)
			}
			if ok && got != tc.want {
				t.Errorf("DetectFrameworkVersion = %q, want %q", got, tc.want)
			}
		})
	}
}
