//go:build integration

package integration_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hbpm-labs/hbpm/internal/config"
	"github.com/hbpm-labs/hbpm/internal/pkgdb"
	"github.com/hbpm-labs/hbpm/internal/shell"
)

// testEnv is an isolated home layout: a data directory and a dashboard
// checkout with a plugins directory.
type testEnv struct {
	rt config.Runtime
}

func setupTestEnv(t *testing.T) testEnv {
	t.Helper()
	root := t.TempDir()
	plugins := filepath.Join(root, "HomeBoard", "plugins")
	if err := os.MkdirAll(plugins, 0o755); err != nil {
		t.Fatal(err)
	}
	return testEnv{rt: config.Runtime{
		DataDir:         filepath.Join(root, "data"),
		LogDir:          filepath.Join(root, "log"),
		DashboardRoot:   filepath.Join(root, "HomeBoard"),
		PluginsRoot:     plugins,
		RefreshInterval: 24 * time.Hour,
		PM2ProcessName:  "HomeBoard",
		SelfName:        "hbpm",
	}}
}

// wikiFetcher serves a fixed catalog, standing in for the community wiki.
type wikiFetcher struct {
	catalog pkgdb.Catalog
	calls   int
}

func (f *wikiFetcher) FetchCatalog(context.Context) (pkgdb.Catalog, error) {
	f.calls++
	return f.catalog.Clone(), nil
}

// gitRunner simulates the git and dependency subprocesses against the real
// temp filesystem: clone creates the target directory with a .git marker
// and records the remote for later git config reads.
type gitRunner struct {
	remotes map[string]string // dir -> remote origin url
}

func newGitRunner() *gitRunner {
	return &gitRunner{remotes: make(map[string]string)}
}

func (g *gitRunner) Run(_ context.Context, dir string, argv ...string) (shell.Result, error) {
	if argv[0] != "git" {
		return shell.Result{}, nil
	}
	switch argv[1] {
	case "clone":
		repo, target := argv[2], argv[3]
		if err := os.MkdirAll(filepath.Join(target, ".git"), 0o755); err != nil {
			return shell.Result{}, err
		}
		g.remotes[target] = repo
		return shell.Result{}, nil
	case "config":
		remote, ok := g.remotes[dir]
		if !ok {
			return shell.Result{ExitCode: 1}, nil
		}
		return shell.Result{Stdout: remote + "\n"}, nil
	}
	return shell.Result{}, nil
}

func (g *gitRunner) Start(context.Context, string, ...string) error { return nil }

type yesConfirmer struct{}

func (yesConfirmer) Confirm(string) (bool, error) { return true, nil }

func assertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected directory %s: %v", path, err)
	}
	if !info.IsDir() {
		t.Fatalf("%s is not a directory", path)
	}
}

func assertDirMissing(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected %s to be absent, stat err = %v", path, err)
	}
}
