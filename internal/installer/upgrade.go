package installer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hbpm-labs/hbpm/internal/pkgdb"
	"github.com/hbpm-labs/hbpm/internal/prompt"
)

// CheckUpgrades returns the installed packages whose upstream has commits
// not present locally. Detection uses `git fetch --dry-run`: any output on
// stderr or stdout means the remote is ahead. Packages whose check fails
// are recorded in the report and skipped.
func (ins *Installer) CheckUpgrades(ctx context.Context, catalog pkgdb.Catalog, report *Report) []pkgdb.Package {
	var updatable []pkgdb.Package
	for _, category := range catalog.Categories() {
		for _, pkg := range catalog[category] {
			if !pkg.Installed() {
				continue
			}
			res, err := ins.runner.Run(ctx, pkg.Directory, "git", "fetch", "--dry-run")
			if err != nil {
				report.fail(pkg.Title, err.Error())
				continue
			}
			if res.ExitCode != 0 {
				reason := strings.TrimSpace(res.Stderr)
				report.fail(pkg.Title, reason)
				ins.log.Errorw("upgrade check failed", "title", pkg.Title, "stderr", reason)
				continue
			}
			if strings.TrimSpace(res.Stdout) != "" || strings.TrimSpace(res.Stderr) != "" {
				updatable = append(updatable, pkg)
			}
		}
	}
	return updatable
}

// Upgrade pulls the latest upstream changes for each installed package
// that has any, confirming each pull and re-running the dependency steps
// afterwards. When titles is non-empty only those packages are considered.
func (ins *Installer) Upgrade(ctx context.Context, catalog pkgdb.Catalog, titles []string) (Report, error) {
	var report Report

	scope := catalog
	if len(titles) > 0 {
		requested := make(map[string]bool, len(titles))
		for _, title := range titles {
			requested[title] = true
		}
		scope = make(pkgdb.Catalog)
		matched := make(map[string]bool)
		for category, pkgs := range catalog {
			for _, pkg := range pkgs {
				if requested[pkg.Title] && pkg.Installed() {
					scope[category] = append(scope[category], pkg)
					matched[pkg.Title] = true
				}
			}
		}
		for _, title := range titles {
			if !matched[title] {
				report.NotFound = append(report.NotFound, title)
				fmt.Fprintf(ins.out, "Unable to locate an installed package named %s\n", title)
			}
		}
	}

	updatable := ins.CheckUpgrades(ctx, scope, &report)
	if len(updatable) == 0 {
		fmt.Fprintln(ins.out, "All packages are up to date")
		return report, nil
	}

	for _, pkg := range updatable {
		yes, err := ins.confirm.Confirm(fmt.Sprintf("Upgrade %s?", pkg.Title))
		if err != nil {
			if errors.Is(err, prompt.ErrInterrupted) {
				report.Cancelled = true
				return report, nil
			}
			return report, err
		}
		if !yes {
			report.Declined = append(report.Declined, pkg.Title)
			continue
		}

		res, err := ins.runner.Run(ctx, pkg.Directory, "git", "pull")
		if err != nil {
			report.fail(pkg.Title, err.Error())
			continue
		}
		if res.ExitCode != 0 {
			reason := strings.TrimSpace(res.Stderr)
			report.fail(pkg.Title, reason)
			ins.log.Errorw("git pull failed", "title", pkg.Title, "stderr", reason)
			fmt.Fprintf(ins.out, "  ✗ %s: %s\n", pkg.Title, reason)
			continue
		}
		if err := ins.installDeps(ctx, pkg.Directory); err != nil {
			report.fail(pkg.Title, err.Error())
			fmt.Fprintf(ins.out, "  ✗ %s: %v\n", pkg.Title, err)
			continue
		}
		report.Upgraded = append(report.Upgraded, pkg.Title)
		ins.log.Infow("upgraded package", "title", pkg.Title)
		fmt.Fprintf(ins.out, "  ✓ Upgraded %s\n", pkg.Title)
	}

	return report, nil
}
