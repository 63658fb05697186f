// Package engine orchestrates a sample retrieval end to end: strategy
// selection, destination handling, the fetch itself, and the identity
// rewrite applied to the retrieved project. It is the API surface called by
// the CLI and never prints; results and typed errors carry everything the
// presentation layer needs.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"sample-fetch/internal/config"
	"sample-fetch/internal/fsutil"
	"sample-fetch/internal/gh"
	"sample-fetch/internal/gitx"
	"sample-fetch/internal/identity"
	"sample-fetch/internal/progress"
)

// ToolProbe checks the git binary.
type ToolProbe interface {
	IsAvailable(ctx context.Context) bool
	EnsureAdequate(ctx context.Context) error
}

// Downloader fetches a sample folder through the remote API.
type Downloader interface {
	DownloadSample(ctx context.Context, coord config.Coordinate, sample, destDir string, concurrency int, report progress.Reporter) (int, error)
}

// SparseCloner materializes a sample folder through git.
type SparseCloner interface {
	Retrieve(ctx context.Context, coord config.Coordinate, sample, destDir string, mode config.Mode) error
}

// Request describes one retrieval.
type Request struct {
	Coordinate  config.Coordinate
	Sample      string
	Destination string
	Mode        config.Mode
	Method      config.Method
	Overwrite   bool
	Concurrency int

	// Identity rewrite applied to the retrieved project. All optional.
	NewName    string
	NewID      string
	GenerateID bool
}

// Result is what a successful retrieval produced.
type Result struct {
	Strategy   Strategy
	Mode       config.Mode
	Dir        string // destination directory as written
	ProjectDir string // where the project files live; equals Dir in extract mode
	Files      int    // files fetched, reported by the api strategy only
	Identity   identity.Result
}

// Engine composes the probe and the two retrieval strategies.
type Engine struct {
	probe      ToolProbe
	downloader Downloader
	cloner     SparseCloner
	report     progress.Reporter
}

// New creates an Engine. A nil reporter disables progress reporting.
func New(probe ToolProbe, downloader Downloader, cloner SparseCloner, report progress.Reporter) *Engine {
	if report == nil {
		report = progress.Nop()
	}
	return &Engine{
		probe:      probe,
		downloader: downloader,
		cloner:     cloner,
		report:     report,
	}
}

// Retrieve fetches the requested sample into the destination and applies
// the identity rewrite. The request checks, including validation of a
// supplied identifier, run together with the destination check before any
// network or subprocess work, so a doomed request has no side effects. The
// destination is only deleted when overwrite was requested, and only once
// a strategy has actually been resolved.
func (e *Engine) Retrieve(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.Method == config.MethodAPI && req.Mode == config.ModeRepo {
		return nil, fmt.Errorf("%w: a git working copy cannot be produced by the api method", ErrConfiguration)
	}

	occupied, err := fsutil.Occupied(req.Destination)
	if err != nil {
		return nil, fmt.Errorf("checking destination: %w", err)
	}
	if occupied && !req.Overwrite {
		return nil, fmt.Errorf("%w: %s", ErrDestinationConflict, req.Destination)
	}

	// One probe serves both the auto decision and the hard requirement of
	// an explicitly chosen or repo-forced git strategy.
	var adequacy error
	if req.Method != config.MethodAPI {
		adequacy = e.probe.EnsureAdequate(ctx)
	}

	strategy, err := ResolveStrategy(req.Method, req.Mode, adequacy == nil)
	if err != nil {
		return nil, err
	}
	if strategy == StrategyGit && adequacy != nil {
		return nil, adequacy
	}

	if occupied {
		if err := os.RemoveAll(req.Destination); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrDestinationBusy, req.Destination, err)
		}
	}

	res := &Result{
		Strategy: strategy,
		Mode:     req.Mode,
		Dir:      req.Destination,
	}

	switch strategy {
	case StrategyGit:
		err = e.cloner.Retrieve(ctx, req.Coordinate, req.Sample, req.Destination, req.Mode)
		if errors.Is(err, gitx.ErrSampleMissing) {
			err = notFound(req)
		}
	case StrategyAPI:
		res.Files, err = e.downloader.DownloadSample(ctx, req.Coordinate, req.Sample, req.Destination, req.Concurrency, e.report)
		if errors.Is(err, gh.ErrNotFound) {
			err = notFound(req)
		}
	}
	if err != nil {
		return nil, err
	}

	res.ProjectDir = req.Destination
	if req.Mode == config.ModeRepo {
		res.ProjectDir = filepath.Join(req.Destination, filepath.FromSlash(config.SamplePath(req.Sample)))
	}

	res.Identity, err = identity.Apply(res.ProjectDir, identity.Options{
		NewName:    req.NewName,
		NewID:      req.NewID,
		GenerateID: req.GenerateID,
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

func notFound(req Request) error {
	return fmt.Errorf("%w: %s in %s@%s", ErrSampleNotFound,
		req.Sample, req.Coordinate.FullName(), req.Coordinate.Ref)
}

func validateRequest(req Request) error {
	if req.Coordinate.Owner == "" || req.Coordinate.Repo == "" || req.Coordinate.Ref == "" {
		return fmt.Errorf("%w: repository coordinate is incomplete", ErrConfiguration)
	}
	if req.Sample == "" {
		return fmt.Errorf("%w: sample name is empty", ErrConfiguration)
	}
	if req.Destination == "" {
		return fmt.Errorf("%w: destination is empty", ErrConfiguration)
	}
	if !req.Mode.IsValid() {
		return fmt.Errorf("%w: unknown mode %q", ErrConfiguration, string(req.Mode))
	}
	if !req.Method.IsValid() {
		return fmt.Errorf("%w: unknown method %q", ErrConfiguration, string(req.Method))
	}
	if req.NewID != "" {
		if err := identity.ValidateID(req.NewID); err != nil {
			return err
		}
	}
	return nil
}
