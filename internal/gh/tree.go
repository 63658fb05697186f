package gh

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"sample-fetch/internal/config"
)

// TreeEntry is one item in a Trees API response.
type TreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"` // "blob" or "tree"
	SHA  string `json:"sha"`
}

// treeResponse is the body of a Trees API response.
type treeResponse struct {
	SHA       string      `json:"sha"`
	Tree      []TreeEntry `json:"tree"`
	Truncated bool        `json:"truncated"`
}

// fetchTree returns the tree for the given tree-ish (a ref name or a tree
// SHA). A truncated listing is an error: entries would be silently missing.
func (c *Client) fetchTree(ctx context.Context, coord config.Coordinate, treeish string, recursive bool) (*treeResponse, error) {
	url := fmt.Sprintf("%s/repos/%s/git/trees/%s", c.apiBase, coord.FullName(), treeish)
	if recursive {
		url += "?recursive=1"
	}

	req, err := c.newAPIRequest(ctx, url)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing tree %s in %s: %w", treeish, coord.FullName(), err)
	}
	defer resp.Body.Close()

	if err := checkAPIResponse(resp, url); err != nil {
		return nil, err
	}

	var tree treeResponse
	if err := json.NewDecoder(resp.Body).Decode(&tree); err != nil {
		return nil, fmt.Errorf("decoding tree response: %w", err)
	}
	if tree.Truncated {
		return nil, fmt.Errorf("%w: tree %s in %s", ErrTruncated, treeish, coord.FullName())
	}

	return &tree, nil
}

// subtreeSHA returns the SHA of the named directory entry, or ErrNotFound if
// the tree holds no directory with that exact name.
func subtreeSHA(tree *treeResponse, name string) (string, error) {
	for _, entry := range tree.Tree {
		if entry.Path == name && entry.Type == "tree" {
			return entry.SHA, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

// resolveSampleTree walks from the ref's root tree down to the sample folder
// and returns its tree SHA. The walk is staged (root listing, samples
// listing, then one listing per path segment) so a huge monorepo root never
// has to be listed recursively.
func (c *Client) resolveSampleTree(ctx context.Context, coord config.Coordinate, sample string) (string, error) {
	root, err := c.fetchTree(ctx, coord, coord.Ref, false)
	if err != nil {
		return "", err
	}

	sha, err := subtreeSHA(root, config.SamplesDir)
	if err != nil {
		return "", fmt.Errorf("%w in %s@%s", ErrNotFound, coord.FullName(), coord.Ref)
	}

	for _, segment := range strings.Split(sample, "/") {
		tree, err := c.fetchTree(ctx, coord, sha, false)
		if err != nil {
			return "", err
		}
		sha, err = subtreeSHA(tree, segment)
		if err != nil {
			return "", fmt.Errorf("%w: no sample %q under %s in %s@%s",
				ErrNotFound, sample, config.SamplesDir, coord.FullName(), coord.Ref)
		}
	}

	return sha, nil
}

// ListSamples returns the names of the top-level sample folders at the
// coordinate's ref, in the order the API lists them.
func (c *Client) ListSamples(ctx context.Context, coord config.Coordinate) ([]string, error) {
	root, err := c.fetchTree(ctx, coord, coord.Ref, false)
	if err != nil {
		return nil, err
	}

	sha, err := subtreeSHA(root, config.SamplesDir)
	if err != nil {
		return nil, fmt.Errorf("%w in %s@%s", ErrNotFound, coord.FullName(), coord.Ref)
	}

	samples, err := c.fetchTree(ctx, coord, sha, false)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range samples.Tree {
		if entry.Type == "tree" {
			names = append(names, entry.Path)
		}
	}
	return names, nil
}

// listSampleFiles returns every blob inside the sample folder, with paths
// relative to the folder itself.
func (c *Client) listSampleFiles(ctx context.Context, coord config.Coordinate, sample string) ([]TreeEntry, error) {
	sha, err := c.resolveSampleTree(ctx, coord, sample)
	if err != nil {
		return nil, err
	}

	tree, err := c.fetchTree(ctx, coord, sha, true)
	if err != nil {
		return nil, err
	}

	var files []TreeEntry
	for _, entry := range tree.Tree {
		if entry.Type == "blob" {
			files = append(files, entry)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptySample, config.SamplePath(sample))
	}

	return files, nil
}
