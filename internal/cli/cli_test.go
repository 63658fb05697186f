package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"sample-fetch/internal/config"
	"sample-fetch/internal/engine"
	"sample-fetch/internal/gh"
	"sample-fetch/internal/gitx"
	"sample-fetch/internal/identity"
	"sample-fetch/internal/progress"
)

// Stub collaborators so the engine runs without network or git.

type stubProbe struct{ err error }

func (p stubProbe) IsAvailable(ctx context.Context) bool     { return p.err == nil }
func (p stubProbe) EnsureAdequate(ctx context.Context) error { return p.err }

type stubDownloader struct {
	files map[string]string
	err   error
}

func (d stubDownloader) DownloadSample(ctx context.Context, coord config.Coordinate, sample, destDir string, concurrency int, report progress.Reporter) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return 0, err
	}
	for rel, content := range d.files {
		path := filepath.Join(destDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return 0, err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return 0, err
		}
	}
	return len(d.files), nil
}

type stubCloner struct{ err error }

func (c stubCloner) Retrieve(ctx context.Context, coord config.Coordinate, sample, destDir string, mode config.Mode) error {
	if c.err != nil {
		return c.err
	}
	return os.MkdirAll(destDir, 0o755)
}

func TestNewRootCmd_Commands(t *testing.T) {
	t.Parallel()

	root := NewRootCmd()
	for _, name := range []string{"get", "rename", "init", "doctor"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered: %v", name, err)
		}
	}
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	if newEngine(nil) == nil {
		t.Fatal("newEngine returned no engine")
	}
}

func TestApplySettings(t *testing.T) {
	t.Parallel()

	s := config.DefaultSettings()
	s.Repo = "contoso/samples"
	s.Ref = "dev"
	s.Method = "api"
	s.Concurrency = 3

	t.Run("unset flags take settings values", func(t *testing.T) {
		opts := getOptions{}
		applySettings(&opts, s, func(string) bool { return false })

		if opts.Repo != "contoso/samples" || opts.Ref != "dev" || opts.Method != "api" || opts.Concurrency != 3 {
			t.Errorf("applySettings left %+v", opts)
		}
	})

	t.Run("explicit flags win", func(t *testing.T) {
		opts := getOptions{Repo: "other/repo", Ref: "v1", Method: "git", Concurrency: 16}
		changed := map[string]bool{"repo": true, "ref": true, "method": true, "concurrency": true}
		applySettings(&opts, s, func(name string) bool { return changed[name] })

		if opts.Repo != "other/repo" || opts.Ref != "v1" || opts.Method != "git" || opts.Concurrency != 16 {
			t.Errorf("applySettings overrode explicit flags: %+v", opts)
		}
	})
}

func TestRunGetWith_Success(t *testing.T) {
	t.Parallel()

	dl := stubDownloader{files: map[string]string{"package.json": `{"name":"react-todo"}`}}
	eng := engine.New(stubProbe{err: gitx.ErrToolNotFound}, dl, stubCloner{}, nil)

	dest := filepath.Join(t.TempDir(), "out")
	opts := getOptions{
		Sample: "react-todo",
		Repo:   "pnp/fixtures",
		Ref:    "main",
		Output: dest,
		Method: "auto",
	}

	if err := runGetWith(context.Background(), opts, eng, nil); err != nil {
		t.Fatalf("runGetWith: unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "package.json")); err != nil {
		t.Errorf("retrieved file missing: %v", err)
	}
}

func TestRunGetWith_DefaultDestination(t *testing.T) {
	t.Chdir(t.TempDir())

	dl := stubDownloader{files: map[string]string{"README.md": "# hi\n"}}
	eng := engine.New(stubProbe{err: gitx.ErrToolNotFound}, dl, stubCloner{}, nil)

	// A leading samples/ segment selects the same folder as the bare name.
	opts := getOptions{Sample: "samples/react-todo", Repo: "pnp/fixtures", Ref: "main", Method: "api"}
	if err := runGetWith(context.Background(), opts, eng, nil); err != nil {
		t.Fatalf("runGetWith: unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join("react-todo", "README.md")); err != nil {
		t.Errorf("default destination not used: %v", err)
	}
}

func TestRunGetWith_InvalidRepo(t *testing.T) {
	t.Parallel()

	eng := engine.New(stubProbe{}, stubDownloader{}, stubCloner{}, nil)
	opts := getOptions{Sample: "react-todo", Repo: "not-a-repo", Ref: "main", Method: "auto"}

	if err := runGetWith(context.Background(), opts, eng, nil); err == nil {
		t.Fatal("runGetWith(invalid repo): expected error, got nil")
	}
}

func TestRunGetWith_ConflictMentionsForce(t *testing.T) {
	t.Parallel()

	dest := t.TempDir()
	if err := os.WriteFile(filepath.Join(dest, "f.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	eng := engine.New(stubProbe{}, stubDownloader{}, stubCloner{}, nil)
	opts := getOptions{Sample: "react-todo", Repo: "pnp/fixtures", Ref: "main", Output: dest, Method: "auto"}

	err := runGetWith(context.Background(), opts, eng, nil)
	if !errors.Is(err, engine.ErrDestinationConflict) {
		t.Fatalf("runGetWith: got %v, want ErrDestinationConflict", err)
	}
	if !strings.Contains(err.Error(), "--force") {
		t.Errorf("error does not mention --force: %v", err)
	}
}

func TestRemedy(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want string
	}{
		{"destination conflict", engine.ErrDestinationConflict, "--force"},
		{"sample not found", engine.ErrSampleNotFound, "sample name"},
		{"rate limited", gh.ErrRateLimited, "--method git"},
		{"truncated listing", gh.ErrTruncated, "--method git"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := remedy(tc.err)
			if !errors.Is(got, tc.err) {
				t.Errorf("remedy(%v) broke errors.Is", tc.err)
			}
			if !strings.Contains(got.Error(), tc.want) {
				t.Errorf("remedy(%v) = %q, want mention of %q", tc.err, got, tc.want)
			}
		})
	}

	t.Run("other errors pass through", func(t *testing.T) {
		base := errors.New("boom")
		if got := remedy(base); got != base {
			t.Errorf("remedy(%v) = %v, want unchanged", base, got)
		}
	})
}

func TestNextSteps(t *testing.T) {
	t.Parallel()

	res := &engine.Result{ProjectDir: filepath.Join("out", "samples", "react-todo")}
	steps := nextSteps(res)

	want := []string{"cd " + filepath.Join("out", "samples", "react-todo"), "npm install", "gulp serve"}
	if !reflect.DeepEqual(steps, want) {
		t.Errorf("nextSteps = %v, want %v", steps, want)
	}
}

func TestRunInit(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.toml")

	if err := runInit(path, false); err != nil {
		t.Fatalf("runInit: unexpected error: %v", err)
	}

	s, err := config.LoadSettings(path)
	if err != nil {
		t.Fatalf("written settings do not parse: %v", err)
	}
	if s.Repo != config.DefaultSettings().Repo {
		t.Errorf("written settings Repo = %q, want default", s.Repo)
	}
}

func TestRunInit_ExistingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("repo = \"contoso/samples\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := runInit(path, false)
	if err == nil {
		t.Fatal("runInit on existing file: expected error, got nil")
	}
	if !strings.Contains(err.Error(), "--force") {
		t.Errorf("error does not mention --force: %v", err)
	}

	if err := runInit(path, true); err != nil {
		t.Fatalf("runInit --force: unexpected error: %v", err)
	}
	s, err := config.LoadSettings(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Repo != config.DefaultSettings().Repo {
		t.Errorf("force rewrite kept old Repo %q", s.Repo)
	}
}

func TestRunRename(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{"name": "old-name"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := runRename(dir, identity.Options{NewName: "new-name"}); err != nil {
		t.Fatalf("runRename: unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"new-name"`) {
		t.Errorf("package.json not renamed: %s", data)
	}
}

func TestRunRename_NothingRequested(t *testing.T) {
	t.Parallel()

	if err := runRename(t.TempDir(), identity.Options{}); err == nil {
		t.Fatal("runRename(no options): expected error, got nil")
	}
}

func TestRunRename_InvalidID(t *testing.T) {
	t.Parallel()

	err := runRename(t.TempDir(), identity.Options{NewID: "not-a-guid"})
	if !errors.Is(err, identity.ErrInvalidID) {
		t.Fatalf("runRename: got %v, want ErrInvalidID", err)
	}
}
