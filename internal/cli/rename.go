package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"sample-fetch/internal/identity"
)

// newRenameCmd creates the `rename` command.
// Usage: samplefetch rename <dir> [flags]
func newRenameCmd() *cobra.Command {
	var (
		name          string
		solutionID    string
		newSolutionID bool
	)

	cmd := &cobra.Command{
		Use:   "rename <dir>",
		Short: "Rename an already retrieved sample project",
		Long: `Applies a new name and/or solution id to a retrieved sample project,
rewriting the well-known files (package.json, .yo-rc.json, the solution
and deploy manifests, README.md) in place. Files the sample does not have
are skipped.

Example:
  samplefetch rename ./my-webpart --name my-webpart --new-solution-id`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRename(args[0], identity.Options{
				NewName:    name,
				NewID:      solutionID,
				GenerateID: newSolutionID,
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New project name")
	cmd.Flags().StringVar(&solutionID, "solution-id", "", "Set the solution id to this GUID")
	cmd.Flags().BoolVar(&newSolutionID, "new-solution-id", false, "Generate a fresh solution id")
	cmd.MarkFlagsMutuallyExclusive("solution-id", "new-solution-id")

	return cmd
}

// runRename is the testable core of the rename command.
func runRename(dir string, opts identity.Options) error {
	if opts.NewName == "" && opts.NewID == "" && !opts.GenerateID {
		return fmt.Errorf("nothing to do: pass --name, --solution-id, or --new-solution-id")
	}

	res, err := identity.Apply(dir, opts)
	if err != nil {
		return err
	}

	if len(res.Rewritten) == 0 {
		fmt.Println("📋 No identity files found — nothing rewritten.")
		return nil
	}

	if opts.NewName != "" {
		if res.PreviousName != "" {
			fmt.Printf("🪪 Renamed %s → %s\n", res.PreviousName, opts.NewName)
		} else {
			fmt.Printf("🪪 Named project %s\n", opts.NewName)
		}
	}
	if res.NewID != "" {
		fmt.Printf("🆔 Solution id set to %s\n", res.NewID)
	}
	for _, file := range res.Rewritten {
		printDetail("updated %s", file)
	}
	return nil
}
