package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hbpm-labs/hbpm/internal/config"
	"github.com/hbpm-labs/hbpm/internal/installed"
	"github.com/hbpm-labs/hbpm/internal/logging"
	"github.com/hbpm-labs/hbpm/internal/pkgdb"
	"github.com/hbpm-labs/hbpm/internal/prompt"
	"github.com/hbpm-labs/hbpm/internal/shell"
)

// ErrConflict reports that a candidate's target directory name is already
// taken on disk. Per-package and non-fatal: the batch continues.
var ErrConflict = errors.New("target directory already exists")

// Report aggregates per-package outcomes of one batch operation.
type Report struct {
	Installed []string
	Removed   []string
	Upgraded  []string
	Conflicts []string
	Declined  []string
	NotFound  []string
	Failed    map[string]string // title -> reason
	// Cancelled is set when the user interrupted a confirmation loop.
	// Mutations performed before the interrupt are not rolled back.
	Cancelled bool
}

// Success reports whether at least one package completed. Per-package
// failures do not fail a batch that made progress; a cancellation is a
// soft abort, not a failure.
func (r Report) Success() bool {
	return len(r.Installed)+len(r.Removed)+len(r.Upgraded) > 0 || r.Cancelled
}

func (r *Report) fail(title, reason string) {
	if r.Failed == nil {
		r.Failed = make(map[string]string)
	}
	r.Failed[title] = reason
}

// Installer orchestrates package installation and removal against the
// plugins directory. Prompts and subprocesses are injected capabilities.
type Installer struct {
	rt      config.Runtime
	runner  shell.Runner
	confirm prompt.Confirmer
	log     *logging.Logger
	out     io.Writer
}

// New constructs an Installer.
func New(rt config.Runtime, runner shell.Runner, confirm prompt.Confirmer, log *logging.Logger, out io.Writer) *Installer {
	return &Installer{rt: rt, runner: runner, confirm: confirm, log: log, out: out}
}

// Install runs the install workflow for each candidate: confirm, clone into
// pluginsRoot/<title>, dependency install, and rollback prompting when the
// dependency step fails. An existing directory with the candidate's name is
// a per-package conflict; the rest of the batch still runs. The error
// return is reserved for batch preconditions (missing plugins root, empty
// candidate list).
func (ins *Installer) Install(ctx context.Context, candidates []pkgdb.Package) (Report, error) {
	var report Report

	if _, err := os.Stat(ins.rt.PluginsRoot); err != nil {
		return report, fmt.Errorf("%w: %s (is %s set correctly?)",
			installed.ErrPluginsRootNotFound, ins.rt.PluginsRoot, "HBPM_DASHBOARD_ROOT")
	}
	if len(candidates) == 0 {
		return report, fmt.Errorf("%w: unable to match query to any installation candidates", pkgdb.ErrNotFound)
	}

	fmt.Fprintf(ins.out, "Matched query to %d package(s)\n", len(candidates))

	// Confirm every candidate before any filesystem mutation.
	var confirmed []pkgdb.Package
	for _, candidate := range candidates {
		yes, err := ins.confirm.Confirm(fmt.Sprintf("Install %s (%s)?", candidate.Title, candidate.Repository))
		if err != nil {
			if errors.Is(err, prompt.ErrInterrupted) {
				ins.log.Infow("install confirmation interrupted", "title", candidate.Title)
				report.Cancelled = true
				return report, nil
			}
			return report, err
		}
		if !yes {
			ins.log.Infow("user declined install", "title", candidate.Title)
			report.Declined = append(report.Declined, candidate.Title)
			continue
		}
		confirmed = append(confirmed, candidate)
	}

	for _, candidate := range confirmed {
		ins.installOne(ctx, candidate, &report)
	}

	return report, nil
}

// installOne takes a single confirmed candidate through clone and
// dependency install, recording the outcome in the report.
func (ins *Installer) installOne(ctx context.Context, candidate pkgdb.Package, report *Report) {
	target := filepath.Join(ins.rt.PluginsRoot, candidate.Title)

	if _, err := os.Stat(target); err == nil {
		fmt.Fprintf(ins.out, "  ✗ %s: a plugin named %s is already installed at %s. Remove it first.\n",
			candidate.Title, candidate.Title, target)
		ins.log.Errorw("install conflict", "title", candidate.Title, "directory", target)
		report.Conflicts = append(report.Conflicts, candidate.Title)
		return
	}

	fmt.Fprintf(ins.out, "Installing %s (%s)\n", candidate.Title, candidate.Repository)

	res, err := ins.runner.Run(ctx, ins.rt.PluginsRoot, "git", "clone", candidate.Repository, target)
	if err != nil {
		report.fail(candidate.Title, err.Error())
		fmt.Fprintf(ins.out, "  ✗ %s: %v\n", candidate.Title, err)
		return
	}
	if res.ExitCode != 0 {
		reason := strings.TrimSpace(res.Stderr)
		report.fail(candidate.Title, reason)
		ins.log.Errorw("clone failed", "title", candidate.Title, "stderr", reason)
		fmt.Fprintf(ins.out, "  ✗ %s: %s\n", candidate.Title, reason)
		// A failed clone must not leave a directory behind.
		_ = os.RemoveAll(target)
		return
	}

	if err := ins.installDeps(ctx, target); err != nil {
		report.fail(candidate.Title, err.Error())
		ins.log.Errorw("dependency install failed", "title", candidate.Title, "error", err)
		fmt.Fprintf(ins.out, "  ✗ %s: %v\n", candidate.Title, err)

		yes, confirmErr := ins.confirm.Confirm(fmt.Sprintf("Failed to install %s at %s. Remove the directory?", candidate.Title, target))
		if confirmErr == nil && yes {
			_ = os.RemoveAll(target)
			fmt.Fprintf(ins.out, "  Removed %s\n", target)
			ins.log.Infow("removed partial install", "directory", target)
		} else {
			fmt.Fprintf(ins.out, "  Keeping %s\n", target)
		}
		return
	}

	report.Installed = append(report.Installed, candidate.Title)
	ins.log.Infow("installed package", "title", candidate.Title, "directory", target)
	fmt.Fprintf(ins.out, "  ✓ %s\n", candidate.Title)
}
