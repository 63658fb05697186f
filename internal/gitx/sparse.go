package gitx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"sample-fetch/internal/config"
	"sample-fetch/internal/fsutil"
)

// ErrSampleMissing means the sparse checkout completed but the sample
// folder did not materialize: either the folder does not exist or the
// requested ref does not contain it.
var ErrSampleMissing = errors.New("sample folder not present after checkout")

// Retriever materializes one sample folder through a partial clone and a
// cone-mode sparse checkout. Blob content outside the sample is never
// downloaded.
type Retriever struct {
	runner Runner
}

// NewRetriever creates a Retriever that drives git through the given runner.
func NewRetriever(runner Runner) *Retriever {
	return &Retriever{runner: runner}
}

// Retrieve materializes samples/<sample> at the coordinate's ref into
// destDir. Extract mode copies just the sample folder out of a temporary
// clone, which is removed on every path. Repo mode checks out directly into
// destDir and keeps the git metadata, with the sample under samples/<sample>,
// so the user can branch and push from the sparse working copy.
func (r *Retriever) Retrieve(ctx context.Context, coord config.Coordinate, sample, destDir string, mode config.Mode) error {
	if mode == config.ModeRepo {
		return r.checkout(ctx, coord, sample, destDir)
	}

	tmp, err := os.MkdirTemp("", "samplefetch-")
	if err != nil {
		return fmt.Errorf("creating temporary clone directory: %w", err)
	}
	defer os.RemoveAll(tmp)

	// git clone refuses a pre-existing directory, so clone into a child.
	workDir := filepath.Join(tmp, "clone")
	if err := r.checkout(ctx, coord, sample, workDir); err != nil {
		return err
	}

	src := filepath.Join(workDir, filepath.FromSlash(config.SamplePath(sample)))
	if err := fsutil.CopyTree(src, destDir); err != nil {
		return fmt.Errorf("copying sample to destination: %w", err)
	}
	return nil
}

// checkout runs the partial-clone + sparse-checkout sequence in dir and
// verifies the sample folder materialized non-empty.
func (r *Retriever) checkout(ctx context.Context, coord config.Coordinate, sample, dir string) error {
	samplePath := config.SamplePath(sample)

	steps := [][]string{
		{"clone", "--depth=1", "--filter=blob:none", "--no-checkout", coord.CloneURL(), dir},
		{"-C", dir, "sparse-checkout", "init", "--cone"},
		{"-C", dir, "sparse-checkout", "set", samplePath},
		{"-C", dir, "fetch", "--depth=1", "--filter=blob:none", "origin", coord.Ref},
		{"-C", dir, "checkout", "--detach", "FETCH_HEAD"},
	}
	for _, args := range steps {
		if _, err := r.runner.Run(ctx, args...); err != nil {
			return err
		}
	}

	target := filepath.Join(dir, filepath.FromSlash(samplePath))
	ok, err := fsutil.NonEmptyDir(target)
	if err != nil {
		return fmt.Errorf("verifying sample folder: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s at ref %s", ErrSampleMissing, samplePath, coord.Ref)
	}
	return nil
}
