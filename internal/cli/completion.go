package cli

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sample-fetch/internal/config"
	"sample-fetch/internal/gh"
)

// completionTimeout bounds the completion round-trip so a slow network
// never blocks the shell.
const completionTimeout = 2 * time.Second

// resolveSampleCompletions suggests sample folder names from the configured
// samples repository.
func resolveSampleCompletions(toComplete string) ([]string, cobra.ShellCompDirective) {
	settings, err := loadSettings()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	coord, err := config.ParseCoordinate(settings.Repo, settings.Ref)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	ctx, cancel := context.WithTimeout(context.Background(), completionTimeout)
	defer cancel()

	client := gh.NewClient(&http.Client{Timeout: completionTimeout})
	samples, err := client.ListSamples(ctx, coord)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var completions []string
	for _, name := range samples {
		if strings.HasPrefix(name, toComplete) {
			completions = append(completions, name)
		}
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}
