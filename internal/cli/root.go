package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

// NewRootCmd creates the top-level `samplefetch` command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "samplefetch",
		Short: "Fetch single SPFx sample projects out of large GitHub sample repositories",
		Long: `samplefetch retrieves one sample project from a GitHub samples monorepo
(by default pnp/sp-dev-fx-webparts) without cloning the whole repository.
It uses a blob-filtered sparse git checkout when a recent git is installed
and falls back to the GitHub API otherwise. A retrieved sample can be
renamed and given a fresh solution id so it works as the starting point
for new work.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newGetCmd())
	root.AddCommand(newRenameCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newDoctorCmd())

	return root
}

// Execute runs the root command.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
