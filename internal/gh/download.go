package gh

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"sample-fetch/internal/config"
	"sample-fetch/internal/progress"
)

// DownloadSample fetches every file of samples/<sample> at the coordinate's
// ref into destDir, preserving the folder's internal layout. Downloads run
// on a bounded worker pool; the first failure cancels the remaining ones.
// Returns the number of files written.
func (c *Client) DownloadSample(ctx context.Context, coord config.Coordinate, sample, destDir string, concurrency int, report progress.Reporter) (int, error) {
	if report == nil {
		report = progress.Nop()
	}
	if concurrency <= 0 {
		concurrency = config.DefaultConcurrency
	}

	files, err := c.listSampleFiles(ctx, coord, sample)
	if err != nil {
		return 0, err
	}

	for _, entry := range files {
		if !filepath.IsLocal(filepath.FromSlash(entry.Path)) {
			return 0, fmt.Errorf("refusing listed path outside the sample folder: %s", entry.Path)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	total := len(files)

	// The count and its delivery share one critical section, so the
	// reporter sees 1..total in order even with concurrent workers.
	var (
		mu        sync.Mutex
		completed int
	)

	for _, entry := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			repoPath := config.SamplePath(sample) + "/" + entry.Path
			target := filepath.Join(destDir, filepath.FromSlash(entry.Path))
			if err := c.downloadFile(gctx, coord, repoPath, target); err != nil {
				return err
			}

			mu.Lock()
			completed++
			report.Step(completed, total, repoPath)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return completed, err
	}
	return total, nil
}

// downloadFile fetches one file from the raw-content endpoint and writes it
// to target, creating parent directories as needed.
func (c *Client) downloadFile(ctx context.Context, coord config.Coordinate, repoPath, target string) error {
	rawURL := fmt.Sprintf("%s/%s/%s/%s/%s",
		c.rawBase, coord.Owner, coord.Repo, coord.Ref, escapePath(repoPath))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &DownloadError{Path: repoPath, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &DownloadError{Path: repoPath, Err: err}
	}
	defer resp.Body.Close()

	if rateLimited(resp) {
		return ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return &DownloadError{Path: repoPath, Status: resp.StatusCode}
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", repoPath, err)
	}

	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return &DownloadError{Path: repoPath, Err: err}
	}
	return f.Close()
}

// escapePath percent-encodes each path segment while keeping the slashes,
// so files with spaces or special characters resolve correctly.
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
