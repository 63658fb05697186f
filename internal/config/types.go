package config

import (
	"fmt"
	"strings"
)

// SamplesDir is the fixed top-level directory samples live under in the
// source repository.
const SamplesDir = "samples"

// Mode selects what a retrieval leaves on disk.
type Mode string

const (
	// ModeExtract produces a plain directory containing only the sample's
	// files, with no version-control metadata.
	ModeExtract Mode = "extract"
	// ModeRepo produces a sparse git working copy rooted so the sample lives
	// at <destination>/samples/<folder>. Git metadata is kept so the result
	// can be used for contribution workflows.
	ModeRepo Mode = "repo"
)

// IsValid checks whether the mode is one of the known modes.
func (m Mode) IsValid() bool {
	switch m {
	case ModeExtract, ModeRepo:
		return true
	}
	return false
}

// Method selects how the sample is retrieved.
type Method string

const (
	// MethodAuto resolves at runtime: git when a usable git binary is found,
	// the GitHub API otherwise.
	MethodAuto Method = "auto"
	// MethodGit forces the sparse-checkout strategy.
	MethodGit Method = "git"
	// MethodAPI forces the tree-walk download strategy.
	MethodAPI Method = "api"
)

// ParseMethod parses a method name as given on the command line or in the
// settings file.
func ParseMethod(raw string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(raw)))
	if !m.IsValid() {
		return "", fmt.Errorf("invalid method %q: must be one of auto, git, api", raw)
	}
	return m, nil
}

// IsValid checks whether the method is one of the known methods.
func (m Method) IsValid() bool {
	switch m {
	case MethodAuto, MethodGit, MethodAPI:
		return true
	}
	return false
}

// Coordinate identifies the remote repository and the ref to fetch from.
// It is immutable for the duration of one retrieval.
type Coordinate struct {
	Owner string // GitHub organisation or user
	Repo  string // Repository name
	Ref   string // Git ref: branch, tag, or commit SHA
}

// ParseCoordinate parses an "owner/repo" string into a Coordinate with the
// given ref. Common URL spellings ("https://github.com/owner/repo",
// a trailing ".git") are tolerated and reduced to owner/repo.
func ParseCoordinate(raw, ref string) (Coordinate, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "github.com/")
	s = strings.TrimSuffix(s, ".git")
	s = strings.Trim(s, "/")

	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Coordinate{}, fmt.Errorf("invalid repository %q: must be owner/repo (e.g. pnp/sp-dev-fx-webparts)", raw)
	}

	if strings.TrimSpace(ref) == "" {
		return Coordinate{}, fmt.Errorf("ref must not be empty")
	}

	return Coordinate{
		Owner: parts[0],
		Repo:  parts[1],
		Ref:   strings.TrimSpace(ref),
	}, nil
}

// FullName returns "owner/repo".
func (c Coordinate) FullName() string {
	return fmt.Sprintf("%s/%s", c.Owner, c.Repo)
}

// CloneURL returns the HTTPS clone URL for the repository.
func (c Coordinate) CloneURL() string {
	return fmt.Sprintf("https://github.com/%s/%s.git", c.Owner, c.Repo)
}

// NormalizeSample canonicalizes a user-supplied sample folder selector:
// whitespace trimmed, backslashes converted to forward slashes, surrounding
// slashes removed, and at most one leading "samples/" segment stripped, so
// "samples/react-todo" and "react-todo" select the same folder. The result
// is empty only when the input selected nothing.
func NormalizeSample(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, `\`, "/")
	s = strings.TrimPrefix(s, "./")
	s = strings.Trim(s, "/")
	if rest, ok := strings.CutPrefix(s, SamplesDir+"/"); ok {
		s = strings.Trim(rest, "/")
	}
	return s
}

// SamplePath returns the repo-relative path of a normalized sample folder.
func SamplePath(sample string) string {
	return SamplesDir + "/" + sample
}
