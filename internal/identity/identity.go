// Package identity rewrites a retrieved sample's project identity (package
// name, generator configuration, solution manifest and id) across the
// well-known SharePoint Framework project files. Files absent from the tree
// are skipped, so the rewrite works on partial or unconventional samples.
package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidID means a caller-supplied identifier is not a canonical UUID.
var ErrInvalidID = errors.New("identifier is not a valid GUID")

// Well-known project files, relative to the project directory.
const (
	packageFile  = "package.json"
	yoConfigFile = ".yo-rc.json"
	solutionFile = "config/package-solution.json"
	deployFile   = "config/deploy-azure-storage.json"
	readmeFile   = "README.md"

	generatorKey = "@microsoft/generator-sharepoint"
)

// Options selects which identity fields to rewrite.
type Options struct {
	// NewName renames the project when non-empty.
	NewName string
	// NewID replaces the solution identifier with this value, which must be
	// a canonical UUID string.
	NewID string
	// GenerateID replaces the solution identifier with a freshly generated
	// one. Ignored when NewID is set.
	GenerateID bool
}

// Result reports what Apply changed.
type Result struct {
	// PreviousName is the package name before the rewrite, when known.
	PreviousName string
	// NewID is the identifier that was written, empty if none was.
	NewID string
	// Rewritten lists the relative paths of files that were rewritten.
	Rewritten []string
}

// Apply rewrites the identity files under dir according to opts. A supplied
// identifier is validated before any file is touched. Missing or unparsable
// files are skipped. When the package descriptor is absent the previous name
// is unknown, and the substring replacements in the solution manifest and
// README become no-ops.
func Apply(dir string, opts Options) (Result, error) {
	var res Result

	newID := opts.NewID
	if newID != "" {
		if err := ValidateID(newID); err != nil {
			return res, err
		}
	} else if opts.GenerateID {
		newID = uuid.NewString()
	}

	rename := opts.NewName != ""
	if !rename && newID == "" {
		return res, nil
	}
	res.NewID = newID

	// The package descriptor goes first: its current name is the needle for
	// the substring replacements below.
	if pkg, ok := readJSON(filepath.Join(dir, packageFile)); ok {
		if name, _ := pkg["name"].(string); name != "" {
			res.PreviousName = name
		}
		if rename {
			pkg["name"] = opts.NewName
			if err := writeJSON(filepath.Join(dir, packageFile), pkg); err != nil {
				return res, err
			}
			res.Rewritten = append(res.Rewritten, packageFile)
		}
	}

	if err := rewriteGeneratorConfig(dir, opts.NewName, newID, &res); err != nil {
		return res, err
	}
	if err := rewriteSolutionManifest(dir, opts.NewName, newID, &res); err != nil {
		return res, err
	}
	if rename {
		if err := rewriteDeployConfig(dir, opts.NewName, &res); err != nil {
			return res, err
		}
		if err := rewriteReadme(dir, opts.NewName, &res); err != nil {
			return res, err
		}
	}

	return res, nil
}

// rewriteGeneratorConfig sets the library/solution names and the library id
// inside the generator section of .yo-rc.json, all verbatim.
func rewriteGeneratorConfig(dir, newName, newID string, res *Result) error {
	path := filepath.Join(dir, yoConfigFile)
	doc, ok := readJSON(path)
	if !ok {
		return nil
	}
	section, ok := doc[generatorKey].(map[string]any)
	if !ok {
		return nil
	}

	if newName != "" {
		section["libraryName"] = newName
		section["solutionName"] = newName
	}
	if newID != "" {
		section["libraryId"] = newID
	}

	if err := writeJSON(path, doc); err != nil {
		return err
	}
	res.Rewritten = append(res.Rewritten, yoConfigFile)
	return nil
}

// rewriteSolutionManifest updates config/package-solution.json. The solution
// name gets a substring replacement of the previous package name, preserving
// decorative text around it; the id is set verbatim.
func rewriteSolutionManifest(dir, newName, newID string, res *Result) error {
	path := filepath.Join(dir, filepath.FromSlash(solutionFile))
	doc, ok := readJSON(path)
	if !ok {
		return nil
	}
	solution, ok := doc["solution"].(map[string]any)
	if !ok {
		return nil
	}

	changed := false
	if newName != "" && res.PreviousName != "" {
		if name, ok := solution["name"].(string); ok && strings.Contains(name, res.PreviousName) {
			solution["name"] = strings.ReplaceAll(name, res.PreviousName, newName)
			changed = true
		}
	}
	if newID != "" {
		solution["id"] = newID
		changed = true
	}
	if !changed {
		return nil
	}

	if err := writeJSON(path, doc); err != nil {
		return err
	}
	res.Rewritten = append(res.Rewritten, solutionFile)
	return nil
}

// rewriteDeployConfig sets the storage container name verbatim in
// config/deploy-azure-storage.json.
func rewriteDeployConfig(dir, newName string, res *Result) error {
	path := filepath.Join(dir, filepath.FromSlash(deployFile))
	doc, ok := readJSON(path)
	if !ok {
		return nil
	}

	doc["container"] = newName
	if err := writeJSON(path, doc); err != nil {
		return err
	}
	res.Rewritten = append(res.Rewritten, deployFile)
	return nil
}

// rewriteReadme replaces every occurrence of the previous name in README.md.
// The file is left untouched when the previous name is unknown or absent
// from the text.
func rewriteReadme(dir, newName string, res *Result) error {
	if res.PreviousName == "" || res.PreviousName == newName {
		return nil
	}

	path := filepath.Join(dir, readmeFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	text := string(data)
	if !strings.Contains(text, res.PreviousName) {
		return nil
	}

	updated := strings.ReplaceAll(text, res.PreviousName, newName)
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", readmeFile, err)
	}
	res.Rewritten = append(res.Rewritten, readmeFile)
	return nil
}

// ValidateID accepts only the canonical 36-character UUID text form,
// rejecting braced and urn variants the uuid package would otherwise allow.
// Callers that accept an identifier from the outside can reject it up front
// instead of discovering the problem mid-rewrite.
func ValidateID(s string) error {
	if len(s) != 36 {
		return fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	if _, err := uuid.Parse(s); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return nil
}

// readJSON parses a JSON file into a generic document. ok is false when the
// file is missing or not valid JSON.
func readJSON(path string) (map[string]any, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false
	}
	return doc, true
}

// writeJSON serializes the document with two-space indentation and a
// trailing newline, the formatting the sample files already use.
func writeJSON(path string, doc map[string]any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}
