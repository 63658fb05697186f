package engine

import (
	"fmt"

	"sample-fetch/internal/config"
)

// Strategy is the concrete retrieval mechanism chosen for one invocation.
type Strategy string

const (
	// StrategyGit materializes the sample through partial clone and sparse
	// checkout.
	StrategyGit Strategy = "git"
	// StrategyAPI walks the repository tree over the GitHub API and
	// downloads raw content.
	StrategyAPI Strategy = "api"
)

// ResolveStrategy maps the requested method and mode onto a concrete
// strategy. Auto prefers git when it is usable and falls back to the api;
// repo mode always resolves to git because only git can produce a working
// copy, leaving tool errors to surface with their own diagnosis. The api
// method combined with repo mode is the one impossible pairing.
func ResolveStrategy(method config.Method, mode config.Mode, gitUsable bool) (Strategy, error) {
	if method == config.MethodAPI && mode == config.ModeRepo {
		return "", fmt.Errorf("%w: a git working copy cannot be produced by the api method", ErrConfiguration)
	}

	switch method {
	case config.MethodGit:
		return StrategyGit, nil
	case config.MethodAPI:
		return StrategyAPI, nil
	default:
		if mode == config.ModeRepo || gitUsable {
			return StrategyGit, nil
		}
		return StrategyAPI, nil
	}
}
