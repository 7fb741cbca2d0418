// Package installed discovers plugin working copies on disk and correlates
// them with catalog entries by repository URL. Install state is never
// persisted; it is recomputed from the plugins directory on every run.
package installed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hbpm-labs/hbpm/internal/config"
	"github.com/hbpm-labs/hbpm/internal/logging"
	"github.com/hbpm-labs/hbpm/internal/pkgdb"
	"github.com/hbpm-labs/hbpm/internal/shell"
)

// ErrPluginsRootNotFound reports that the plugins directory does not exist.
// This is distinct from "nothing installed": it usually means the dashboard
// root env var points at the wrong place.
var ErrPluginsRootNotFound = errors.New("plugins directory not found")

// Record is one discovered plugin working copy.
type Record struct {
	// Directory is the absolute path of the working copy.
	Directory string
	// Remote is the configured origin URL.
	Remote string
	// Project is the remote's basename with any ".git" suffix stripped.
	Project string
}

// Scanner enumerates the plugins directory and reads each working copy's
// remote through the injected process runner.
type Scanner struct {
	pluginsRoot string
	runner      shell.Runner
	log         *logging.Logger
}

// NewScanner constructs a Scanner for the runtime's plugins root.
func NewScanner(rt config.Runtime, runner shell.Runner, log *logging.Logger) *Scanner {
	return &Scanner{pluginsRoot: rt.PluginsRoot, runner: runner, log: log}
}

// Scan returns a record for every subdirectory of the plugins root that is
// a git working copy with a readable origin remote. Subdirectories without
// a git marker are silently excluded; ones where git fails are logged and
// excluded. A missing plugins root fails with ErrPluginsRootNotFound.
func (s *Scanner) Scan(ctx context.Context) ([]Record, error) {
	entries, err := os.ReadDir(s.pluginsRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s (is %s set correctly?)",
				ErrPluginsRootNotFound, s.pluginsRoot, "HBPM_DASHBOARD_ROOT")
		}
		return nil, fmt.Errorf("reading plugins directory: %w", err)
	}

	var records []Record
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		dir := filepath.Join(s.pluginsRoot, entry.Name())
		if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
			continue
		}

		res, err := s.runner.Run(ctx, dir, "git", "config", "--get", "remote.origin.url")
		if err != nil || res.ExitCode != 0 {
			s.log.Warnw("unable to read remote origin", "directory", dir, "error", err, "stderr", res.Stderr)
			continue
		}

		remote := strings.TrimSpace(res.Stdout)
		if remote == "" {
			continue
		}

		records = append(records, Record{
			Directory: dir,
			Remote:    remote,
			Project:   ProjectName(remote),
		})
	}

	return records, nil
}

// Correlate returns a copy of the catalog where every package whose
// repository URL matches a discovered working copy gains that copy's
// directory. No packages are added, removed, or reordered; unmatched
// packages pass through with an empty directory.
func (s *Scanner) Correlate(ctx context.Context, catalog pkgdb.Catalog) (pkgdb.Catalog, error) {
	records, err := s.Scan(ctx)
	if err != nil {
		return nil, err
	}

	byRemote := make(map[string]Record, len(records))
	for _, rec := range records {
		byRemote[rec.Remote] = rec
	}

	out := catalog.Clone()
	for category, pkgs := range out {
		for i, pkg := range pkgs {
			if rec, ok := byRemote[strings.TrimSpace(pkg.Repository)]; ok {
				pkgs[i].Directory = rec.Directory
			}
		}
		out[category] = pkgs
	}

	return out, nil
}

// OnDisk filters a correlated catalog down to installed packages only,
// preserving category keys (categories with no installed packages map to
// empty lists).
func OnDisk(catalog pkgdb.Catalog) pkgdb.Catalog {
	out := make(pkgdb.Catalog, len(catalog))
	for category, pkgs := range catalog {
		var kept []pkgdb.Package
		for _, pkg := range pkgs {
			if pkg.Installed() {
				kept = append(kept, pkg)
			}
		}
		out[category] = kept
	}
	return out
}

// ProjectName derives a canonical project name from a remote URL:
// the basename with any ".git" suffix stripped.
func ProjectName(remote string) string {
	name := path.Base(strings.TrimSuffix(strings.TrimSpace(remote), "/"))
	return strings.TrimSuffix(name, ".git")
}
