package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sample-fetch/internal/compat"
	"sample-fetch/internal/config"
	"sample-fetch/internal/engine"
	"sample-fetch/internal/gh"
	"sample-fetch/internal/gitx"
	"sample-fetch/internal/progress"
)

// getOptions collects the get command's inputs after flag and settings
// merging.
type getOptions struct {
	Sample        string
	Repo          string
	Ref           string
	Output        string
	Method        string
	Contribute    bool
	Force         bool
	Name          string
	SolutionID    string
	NewSolutionID bool
	Concurrency   int
}

// newGetCmd creates the `get` command.
// Usage: samplefetch get <sample> [flags]
func newGetCmd() *cobra.Command {
	var opts getOptions

	cmd := &cobra.Command{
		Use:   "get <sample>",
		Short: "Fetch one sample folder from the samples repository",
		Long: `Fetches a single sample folder without cloning the whole repository.

With git 2.25 or newer installed the sample is materialized through a
blob-filtered sparse checkout; otherwise (or with --method api) the files
are downloaded one by one through the GitHub API. Pass --contribute to
keep a git working copy laid out for contributing the sample back upstream
instead of a plain folder.

Example:
  samplefetch get react-todo --name my-todo --new-solution-id`,
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return resolveSampleCompletions(toComplete)
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Sample = args[0]

			settings, err := loadSettings()
			if err != nil {
				return err
			}
			applySettings(&opts, settings, cmd.Flags().Changed)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runGet(ctx, opts, settings)
		},
	}

	cmd.Flags().StringVar(&opts.Repo, "repo", "", "Samples repository as owner/repo (default from settings)")
	cmd.Flags().StringVar(&opts.Ref, "ref", "", "Branch, tag, or commit to fetch from (default from settings)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Destination directory (default: the sample name)")
	cmd.Flags().StringVar(&opts.Method, "method", "", "Retrieval method: auto, git, or api (default from settings)")
	cmd.Flags().BoolVar(&opts.Contribute, "contribute", false, "Keep a git working copy laid out for contributing back")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Replace the destination if it already exists")
	cmd.Flags().StringVar(&opts.Name, "name", "", "Rename the retrieved project")
	cmd.Flags().StringVar(&opts.SolutionID, "solution-id", "", "Set the solution id to this GUID")
	cmd.Flags().BoolVar(&opts.NewSolutionID, "new-solution-id", false, "Generate a fresh solution id")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 0, "Parallel downloads for the api method (default from settings)")
	cmd.MarkFlagsMutuallyExclusive("solution-id", "new-solution-id")

	return cmd
}

// loadSettings reads the user's settings file, falling back to built-in
// defaults when no file exists.
func loadSettings() (*config.Settings, error) {
	path, err := config.SettingsPath()
	if err != nil {
		return config.DefaultSettings(), nil
	}
	return config.LoadSettings(path)
}

// applySettings fills flag values the user left unset from the persisted
// settings, so an explicit flag always wins over the settings file.
func applySettings(opts *getOptions, s *config.Settings, changed func(name string) bool) {
	if !changed("repo") {
		opts.Repo = s.Repo
	}
	if !changed("ref") {
		opts.Ref = s.Ref
	}
	if !changed("method") {
		opts.Method = s.Method
	}
	if !changed("concurrency") {
		opts.Concurrency = s.Concurrency
	}
}

func runGet(ctx context.Context, opts getOptions, settings *config.Settings) error {
	bar := newProgressBar()
	defer bar.Finish()

	return runGetWith(ctx, opts, newEngine(bar), newAdvisor(settings))
}

// newEngine wires the production collaborators: one git runner shared by
// the probe and the retriever, and the default GitHub client.
func newEngine(report progress.Reporter) *engine.Engine {
	runner := gitx.NewRunner()
	return engine.New(
		gitx.NewProbe(runner),
		gh.NewClient(nil),
		gitx.NewRetriever(runner),
		report,
	)
}

// newAdvisor builds the compatibility advisor from settings. A nil advisor
// means advice is skipped; it is never an error.
func newAdvisor(s *config.Settings) *compat.Resolver {
	cachePath, err := compat.DefaultCachePath()
	if err != nil {
		return nil
	}
	ttl := time.Duration(s.Advisory.CacheTTLHours) * time.Hour
	return compat.NewResolver(nil, s.Advisory.MatrixURL, cachePath, ttl)
}

// runGetWith is the testable core of the get command.
func runGetWith(ctx context.Context, opts getOptions, eng *engine.Engine, advisor *compat.Resolver) error {
	coord, err := config.ParseCoordinate(opts.Repo, opts.Ref)
	if err != nil {
		return err
	}

	sample := config.NormalizeSample(opts.Sample)
	if sample == "" {
		return fmt.Errorf("sample name %q selects nothing", opts.Sample)
	}

	dest := opts.Output
	if dest == "" {
		dest = path.Base(sample)
	}

	method, err := config.ParseMethod(opts.Method)
	if err != nil {
		return err
	}

	mode := config.ModeExtract
	if opts.Contribute {
		mode = config.ModeRepo
	}

	fmt.Printf("📦 Fetching %s from %s@%s...\n", sample, coord.FullName(), coord.Ref)

	res, err := eng.Retrieve(ctx, engine.Request{
		Coordinate:  coord,
		Sample:      sample,
		Destination: dest,
		Mode:        mode,
		Method:      method,
		Overwrite:   opts.Force,
		Concurrency: opts.Concurrency,
		NewName:     opts.Name,
		NewID:       opts.SolutionID,
		GenerateID:  opts.NewSolutionID,
	})
	if err != nil {
		return remedy(err)
	}

	printResult(res, sample)
	printAdvisory(ctx, advisor, res.ProjectDir)
	return nil
}

// remedy augments terminal failures with the action most likely to resolve
// them.
func remedy(err error) error {
	switch {
	case errors.Is(err, engine.ErrDestinationConflict):
		return fmt.Errorf("%w (pass --force to replace it)", err)
	case errors.Is(err, engine.ErrSampleNotFound):
		return fmt.Errorf("%w (check the sample name and ref)", err)
	case errors.Is(err, gh.ErrRateLimited):
		return fmt.Errorf("%w (wait for the limit to reset, or retry with --method git)", err)
	case errors.Is(err, gh.ErrTruncated):
		return fmt.Errorf("%w (retry with --method git, which has no listing limit)", err)
	}
	return err
}

func printResult(res *engine.Result, sample string) {
	how := "sparse git checkout"
	if res.Strategy == engine.StrategyAPI {
		how = fmt.Sprintf("github api, %d files", res.Files)
	}
	fmt.Printf("✅ Retrieved %s into %s (%s)\n", sample, displayPath(res.Dir), how)

	if len(res.Identity.Rewritten) > 0 {
		fmt.Printf("🪪 Updated project identity in %d file(s)\n", len(res.Identity.Rewritten))
		if res.Identity.NewID != "" {
			printDetail("solution id: %s", res.Identity.NewID)
		}
	}

	printHeader("Next steps:")
	for i, step := range nextSteps(res) {
		fmt.Printf("  %d. %s\n", i+1, step)
	}
}

// nextSteps returns the shell commands that take a fresh sample to a
// running dev server.
func nextSteps(res *engine.Result) []string {
	var steps []string
	if dir := displayPath(res.ProjectDir); dir != "." {
		steps = append(steps, "cd "+dir)
	}
	steps = append(steps, "npm install", "gulp serve")
	return steps
}

// displayPath renders a path relative to the working directory when that is
// shorter and stays inside it.
func displayPath(p string) string {
	wd, err := os.Getwd()
	if err != nil {
		return p
	}
	rel, err := filepath.Rel(wd, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return p
	}
	return rel
}

// printAdvisory prints Node.js guidance for the sample's framework release.
// Failures stay silent: advice must never fail a finished retrieval.
func printAdvisory(ctx context.Context, advisor *compat.Resolver, projectDir string) {
	if advisor == nil {
		return
	}
	version, ok := compat.DetectFrameworkVersion(projectDir)
	if !ok {
		return
	}
	matrix, err := advisor.Matrix(ctx)
	if err != nil {
		return
	}
	entry, ok := compat.Lookup(matrix, version)
	if !ok {
		return
	}

	printHeader("Compatibility:")
	fmt.Printf("  SPFx %s needs Node %s\n", version, entry.Node)
	if mgr, ok := compat.DetectVersionManager(); ok {
		printDetail("use %s to switch before npm install", mgr)
	}
}
