package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"sample-fetch/internal/config"
	"sample-fetch/internal/fsutil"
)

// newInitCmd creates the `init` command.
// Usage: samplefetch init [--force]
func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a settings file with the built-in defaults",
		Long: `Writes the default settings to the user's config directory so the
defaults (repository, ref, method, concurrency) can be edited in one place
instead of being passed as flags on every invocation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.SettingsPath()
			if err != nil {
				return fmt.Errorf("locating settings file: %w", err)
			}
			return runInit(path, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Rewrite the settings file if it already exists")

	return cmd
}

func runInit(path string, force bool) error {
	exists, err := fsutil.Exists(path)
	if err != nil {
		return err
	}
	if exists && !force {
		return fmt.Errorf("settings already exist at %s (pass --force to rewrite them)", path)
	}

	if err := config.DefaultSettings().Save(path); err != nil {
		return err
	}

	fmt.Printf("⚙️  Wrote default settings to %s\n", path)
	printDetail("edit it to change the default repository, ref, or method")
	return nil
}
