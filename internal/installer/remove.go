package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hbpm-labs/hbpm/internal/installed"
	"github.com/hbpm-labs/hbpm/internal/pkgdb"
	"github.com/hbpm-labs/hbpm/internal/prompt"
)

// Remove deletes the plugin directories matching the requested titles.
// Only packages present on disk are eligible; titles that match nothing
// are reported. Each removal is confirmed individually, and an interrupt
// mid-loop keeps the removals already completed.
func (ins *Installer) Remove(ctx context.Context, catalog pkgdb.Catalog, titles []string) (Report, error) {
	var report Report

	if _, err := os.Stat(ins.rt.PluginsRoot); err != nil {
		return report, fmt.Errorf("%w: %s (is %s set correctly?)",
			installed.ErrPluginsRootNotFound, ins.rt.PluginsRoot, "HBPM_DASHBOARD_ROOT")
	}

	installedByTitle := make(map[string]pkgdb.Package)
	for _, pkgs := range catalog {
		for _, pkg := range pkgs {
			if pkg.Installed() {
				installedByTitle[pkg.Title] = pkg
			}
		}
	}

	var marked []pkgdb.Package
	for _, title := range titles {
		pkg, ok := installedByTitle[title]
		if !ok {
			report.NotFound = append(report.NotFound, title)
			fmt.Fprintf(ins.out, "Unable to locate an installed package named %s\n", title)
			continue
		}
		marked = append(marked, pkg)
	}
	if len(marked) == 0 {
		return report, fmt.Errorf("%w: unable to match query to any installed packages", pkgdb.ErrNotFound)
	}

	for _, pkg := range marked {
		yes, err := ins.confirm.Confirm(fmt.Sprintf("Remove %s (%s)?", pkg.Title, pkg.Directory))
		if err != nil {
			if errors.Is(err, prompt.ErrInterrupted) {
				ins.log.Infow("removal confirmation interrupted", "title", pkg.Title)
				report.Cancelled = true
				return report, nil
			}
			return report, err
		}
		if !yes {
			report.Declined = append(report.Declined, pkg.Title)
			continue
		}

		dir := pkg.Directory
		if dir == "" {
			dir = filepath.Join(ins.rt.PluginsRoot, pkg.Title)
		}
		if err := os.RemoveAll(dir); err != nil {
			report.fail(pkg.Title, err.Error())
			ins.log.Errorw("removal failed", "title", pkg.Title, "directory", dir, "error", err)
			fmt.Fprintf(ins.out, "  ✗ %s: %v\n", pkg.Title, err)
			continue
		}
		report.Removed = append(report.Removed, pkg.Title)
		ins.log.Infow("removed package", "title", pkg.Title, "directory", dir)
		fmt.Fprintf(ins.out, "  ✓ Removed %s\n", pkg.Title)
	}

	return report, nil
}
