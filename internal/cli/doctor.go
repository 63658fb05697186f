package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"sample-fetch/internal/compat"
	"sample-fetch/internal/config"
	"sample-fetch/internal/gitx"
)

// newDoctorCmd creates the `doctor` command.
// Usage: samplefetch doctor
func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Report the state of the local retrieval environment",
		Long: `Shows whether git is available and recent enough for sparse checkout,
which repository and ref retrievals default to, where the settings file
lives, and the state of the compatibility matrix cache. Useful when a
retrieval picked an unexpected method.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd.Context())
		},
	}
}

func runDoctor(ctx context.Context) error {
	fmt.Println("🔍 Environment:")

	printGitStatus(ctx)

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	fmt.Printf("  📦 repository: %s@%s (method %s)\n", settings.Repo, settings.Ref, settings.Method)

	if path, err := config.SettingsPath(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			fmt.Printf("  ⚙️  settings: %s\n", path)
		} else {
			fmt.Printf("  ⚙️  settings: %s (not present, defaults in use)\n", path)
		}
	}

	if path, err := compat.DefaultCachePath(); err == nil {
		if info, statErr := os.Stat(path); statErr == nil {
			age := time.Since(info.ModTime()).Round(time.Minute)
			fmt.Printf("  🗂️  matrix cache: %s (refreshed %s ago)\n", path, age)
		} else {
			fmt.Printf("  🗂️  matrix cache: %s (not yet fetched)\n", path)
		}
	}

	return nil
}

// printGitStatus reports whether sparse checkout retrievals are possible.
// The version decision mirrors the one retrievals make: an unrecognized
// banner counts as adequate.
func printGitStatus(ctx context.Context) {
	banner, err := gitx.NewRunner().Run(ctx, "--version")
	if err != nil {
		printWarn("git: not found; retrievals will use the github api")
		return
	}

	v, ok := gitx.ParseVersion(banner)
	switch {
	case !ok:
		fmt.Printf("  ✅ git: %s (version unrecognized, assumed adequate)\n", banner)
	case v.Gte(gitx.MinVersion):
		fmt.Printf("  ✅ git: %s (need %s or newer)\n", banner, gitx.MinVersion)
	default:
		printWarn("git: %s is older than %s; retrievals will use the github api", v, gitx.MinVersion)
	}
}
