// Package gitx drives the git binary: version probing and the
// partial-clone + sparse-checkout sequence that materializes one sample
// folder from a large repository.
package gitx

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Runner executes the git binary. The argument list is the full command
// line after "git", so callers control working-directory selection via -C.
type Runner interface {
	Run(ctx context.Context, args ...string) (stdout string, err error)
}

// CommandError is a git invocation that could not run or exited nonzero.
// Stderr and Stdout carry the captured output for diagnosis.
type CommandError struct {
	Args   []string
	Stdout string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

type execRunner struct{}

// NewRunner returns a Runner that invokes the git binary found on PATH.
func NewRunner() Runner { return execRunner{} }

func (execRunner) Run(ctx context.Context, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	if err := cmd.Run(); err != nil {
		// A killed subprocess after cancellation should read as the
		// cancellation, not as a git failure.
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &CommandError{
			Args:   args,
			Stdout: stdout.String(),
			Stderr: stderr.String(),
			Err:    err,
		}
	}

	return strings.TrimSpace(stdout.String()), nil
}
