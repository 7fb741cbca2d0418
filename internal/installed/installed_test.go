package installed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hbpm-labs/hbpm/internal/config"
	"github.com/hbpm-labs/hbpm/internal/logging"
	"github.com/hbpm-labs/hbpm/internal/pkgdb"
	"github.com/hbpm-labs/hbpm/internal/shell"
)

// fakeRunner maps working directories to git remote output.
type fakeRunner struct {
	remotes map[string]string // dir -> remote URL
}

func (f *fakeRunner) Run(_ context.Context, dir string, argv ...string) (shell.Result, error) {
	if remote, ok := f.remotes[dir]; ok {
		return shell.Result{Stdout: remote + "\n"}, nil
	}
	return shell.Result{ExitCode: 1, Stderr: "fatal: no remote"}, nil
}

func (f *fakeRunner) Start(_ context.Context, _ string, _ ...string) error { return nil }

// newPluginsRoot creates a plugins directory with the named git working
// copies (dirs containing a .git marker) and returns the root.
func newPluginsRoot(t *testing.T, gitDirs []string, plainDirs []string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "plugins")
	for _, name := range gitDirs {
		if err := os.MkdirAll(filepath.Join(root, name, ".git"), 0755); err != nil {
			t.Fatal(err)
		}
	}
	for _, name := range plainDirs {
		if err := os.MkdirAll(filepath.Join(root, name), 0755); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func scannerFor(root string, runner shell.Runner) *Scanner {
	return NewScanner(config.Runtime{PluginsRoot: root}, runner, logging.Nop())
}

func TestScan_MissingRootFails(t *testing.T) {
	s := scannerFor(filepath.Join(t.TempDir(), "nope"), &fakeRunner{})

	_, err := s.Scan(context.Background())
	if !errors.Is(err, ErrPluginsRootNotFound) {
		t.Fatalf("error = %v, want ErrPluginsRootNotFound", err)
	}
}

func TestScan_SkipsNonGitDirectories(t *testing.T) {
	root := newPluginsRoot(t, []string{"clock1"}, []string{"notes", "scratch"})
	runner := &fakeRunner{remotes: map[string]string{
		filepath.Join(root, "clock1"): "https://x/clock1",
	}}
	s := scannerFor(root, runner)

	records, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if records[0].Remote != "https://x/clock1" {
		t.Errorf("remote = %q, want https://x/clock1", records[0].Remote)
	}
	if records[0].Project != "clock1" {
		t.Errorf("project = %q, want clock1", records[0].Project)
	}
}

func TestScan_SkipsDirectoriesWhereGitFails(t *testing.T) {
	root := newPluginsRoot(t, []string{"clock1", "broken"}, nil)
	runner := &fakeRunner{remotes: map[string]string{
		filepath.Join(root, "clock1"): "https://x/clock1",
		// "broken" has no remote; the fake returns exit code 1.
	}}
	s := scannerFor(root, runner)

	records, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(records) != 1 || records[0].Project != "clock1" {
		t.Errorf("records = %+v, want just clock1", records)
	}
}

func TestCorrelate_AnnotatesMatchesOnly(t *testing.T) {
	root := newPluginsRoot(t, []string{"clock1"}, nil)
	runner := &fakeRunner{remotes: map[string]string{
		filepath.Join(root, "clock1"): "https://x/clock1",
	}}
	s := scannerFor(root, runner)

	catalog := pkgdb.Catalog{
		"Clocks":  {{Title: "Clock1", Repository: "https://x/clock1"}},
		"Weather": {{Title: "Weather1", Repository: "https://x/weather1"}},
	}

	out, err := s.Correlate(context.Background(), catalog)
	if err != nil {
		t.Fatalf("Correlate error: %v", err)
	}

	if got, want := out["Clocks"][0].Directory, filepath.Join(root, "clock1"); got != want {
		t.Errorf("Clocks[0].Directory = %q, want %q", got, want)
	}
	if got := out["Weather"][0].Directory; got != "" {
		t.Errorf("Weather[0].Directory = %q, want empty", got)
	}
}

func TestCorrelate_PreservesShapeAndInput(t *testing.T) {
	root := newPluginsRoot(t, []string{"clock1"}, nil)
	runner := &fakeRunner{remotes: map[string]string{
		filepath.Join(root, "clock1"): "https://x/clock1",
	}}
	s := scannerFor(root, runner)

	catalog := pkgdb.Catalog{
		"Clocks":  {{Title: "Clock1", Repository: "https://x/clock1"}, {Title: "Clock2", Repository: "https://x/clock2"}},
		"Weather": {{Title: "Weather1", Repository: "https://x/weather1"}},
		"Empty":   {},
	}

	out, err := s.Correlate(context.Background(), catalog)
	if err != nil {
		t.Fatalf("Correlate error: %v", err)
	}

	// Every category and package survives, in order, by repository identity.
	if len(out) != len(catalog) {
		t.Fatalf("categories = %d, want %d", len(out), len(catalog))
	}
	for category, pkgs := range catalog {
		got := out[category]
		if len(got) != len(pkgs) {
			t.Fatalf("category %s: packages = %d, want %d", category, len(got), len(pkgs))
		}
		for i := range pkgs {
			if got[i].Repository != pkgs[i].Repository {
				t.Errorf("category %s[%d]: repository = %q, want %q", category, i, got[i].Repository, pkgs[i].Repository)
			}
		}
	}

	// The input catalog must not be mutated.
	if catalog["Clocks"][0].Directory != "" {
		t.Error("input catalog was mutated")
	}
}

func TestCorrelate_ExactCaseSensitiveRepositoryMatch(t *testing.T) {
	root := newPluginsRoot(t, []string{"clock1"}, nil)
	runner := &fakeRunner{remotes: map[string]string{
		filepath.Join(root, "clock1"): "https://x/Clock1",
	}}
	s := scannerFor(root, runner)

	catalog := pkgdb.Catalog{
		"Clocks": {{Title: "Clock1", Repository: "https://x/clock1"}},
	}

	out, err := s.Correlate(context.Background(), catalog)
	if err != nil {
		t.Fatalf("Correlate error: %v", err)
	}
	if got := out["Clocks"][0].Directory; got != "" {
		t.Errorf("case-mismatched repository correlated: directory = %q, want empty", got)
	}
}

func TestProjectName(t *testing.T) {
	tests := []struct {
		remote string
		want   string
	}{
		{"https://github.com/ann/clock1.git", "clock1"},
		{"https://github.com/ann/clock1", "clock1"},
		{"git@github.com:ann/clock1.git", "clock1"},
		{"https://x/clock1/", "clock1"},
		{" https://x/clock1.git ", "clock1"},
	}
	for _, tt := range tests {
		t.Run(tt.remote, func(t *testing.T) {
			if got := ProjectName(tt.remote); got != tt.want {
				t.Errorf("ProjectName(%q) = %q, want %q", tt.remote, got, tt.want)
			}
		})
	}
}

func TestOnDisk(t *testing.T) {
	catalog := pkgdb.Catalog{
		"Clocks":  {{Title: "Clock1", Repository: "https://x/clock1", Directory: "/p/clock1"}, {Title: "Clock2", Repository: "https://x/clock2"}},
		"Weather": {{Title: "Weather1", Repository: "https://x/weather1"}},
	}

	out := OnDisk(catalog)
	if len(out["Clocks"]) != 1 || out["Clocks"][0].Title != "Clock1" {
		t.Errorf("Clocks = %+v, want [Clock1]", out["Clocks"])
	}
	if len(out["Weather"]) != 0 {
		t.Errorf("Weather = %+v, want empty", out["Weather"])
	}
	if _, ok := out["Weather"]; !ok {
		t.Error("categories with no installed packages must be retained")
	}
}
