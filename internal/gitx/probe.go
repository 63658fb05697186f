package gitx

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// Probe-level error conditions.
var (
	// ErrToolNotFound means the git binary could not be invoked at all.
	ErrToolNotFound = errors.New("git executable not found")

	// ErrToolTooOld means git is present but predates cone-mode sparse
	// checkout.
	ErrToolTooOld = errors.New("git version too old")
)

// MinVersion is the oldest git release with cone-mode sparse checkout.
var MinVersion = Version{Major: 2, Minor: 25, Patch: 0}

// Version is a three-part git version.
type Version struct {
	Major, Minor, Patch int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Gte reports whether v is at least min, comparing major, minor and patch
// in order.
func (v Version) Gte(min Version) bool {
	if v.Major != min.Major {
		return v.Major > min.Major
	}
	if v.Minor != min.Minor {
		return v.Minor > min.Minor
	}
	return v.Patch >= min.Patch
}

var versionPattern = regexp.MustCompile(`(\d+)\.(\d+)\.(\d+)`)

// ParseVersion extracts a three-part version from git's banner, e.g.
// "git version 2.34.1". The second result is false when no version can be
// recognized in the string.
func ParseVersion(s string) (Version, bool) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return Version{}, false
	}
	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	patch, _ := strconv.Atoi(m[3])
	return Version{Major: major, Minor: minor, Patch: patch}, true
}

// Probe checks availability and version adequacy of the git binary.
type Probe struct {
	runner Runner
}

// NewProbe creates a Probe that checks git through the given runner.
func NewProbe(runner Runner) *Probe {
	return &Probe{runner: runner}
}

// IsAvailable reports whether git can be invoked at all. It never returns
// an error: any failure to run the version command counts as unavailable.
func (p *Probe) IsAvailable(ctx context.Context) bool {
	_, err := p.runner.Run(ctx, "--version")
	return err == nil
}

// EnsureAdequate verifies git is present and recent enough for cone-mode
// sparse checkout. A banner without a recognizable version is accepted
// rather than rejected, so unusual but working builds are not locked out.
func (p *Probe) EnsureAdequate(ctx context.Context) error {
	out, err := p.runner.Run(ctx, "--version")
	if err != nil {
		return fmt.Errorf("%w: install git %s or newer, or retry with the api method", ErrToolNotFound, MinVersion)
	}

	v, ok := ParseVersion(out)
	if !ok {
		return nil
	}
	if !v.Gte(MinVersion) {
		return fmt.Errorf("%w: found %s, need %s or newer for sparse checkout", ErrToolTooOld, v, MinVersion)
	}
	return nil
}
