// Package lifecycle controls the HomeBoard dashboard process itself:
// starting, stopping, and restarting it, plus installing and updating the
// dashboard checkout. pm2 is preferred when present; otherwise the
// dashboard is launched directly with npm.
package lifecycle

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hbpm-labs/hbpm/internal/branding"
	"github.com/hbpm-labs/hbpm/internal/config"
	"github.com/hbpm-labs/hbpm/internal/logging"
	"github.com/hbpm-labs/hbpm/internal/shell"
)

// Manager drives the dashboard process and checkout.
type Manager struct {
	rt     config.Runtime
	runner shell.Runner
	log    *logging.Logger
	out    io.Writer

	// hasPM2 is overridable in tests; defaults to a PATH lookup.
	hasPM2 func() bool
}

// NewManager constructs a Manager.
func NewManager(rt config.Runtime, runner shell.Runner, log *logging.Logger, out io.Writer) *Manager {
	return &Manager{
		rt:     rt,
		runner: runner,
		log:    log,
		out:    out,
		hasPM2: func() bool { return shell.Which("pm2") },
	}
}

// Start brings the dashboard up, through pm2 when available and with a
// detached `npm run start` otherwise.
func (m *Manager) Start(ctx context.Context) error {
	if _, err := os.Stat(m.rt.DashboardRoot); err != nil {
		return fmt.Errorf("dashboard not found at %s: run the dashboard install first", m.rt.DashboardRoot)
	}

	if m.hasPM2() {
		return m.pm2(ctx, "start")
	}

	m.log.Infow("starting dashboard with npm", "dir", m.rt.DashboardRoot)
	if err := m.runner.Start(ctx, m.rt.DashboardRoot, "npm", "run", "start"); err != nil {
		return fmt.Errorf("starting dashboard: %w", err)
	}
	fmt.Fprintln(m.out, "Started the dashboard")
	return nil
}

// Stop brings the dashboard down. Without pm2 the running processes are
// located by name and signalled.
func (m *Manager) Stop(ctx context.Context) error {
	if m.hasPM2() {
		return m.pm2(ctx, "stop")
	}

	m.log.Infow("stopping dashboard with pkill")
	res, err := m.runner.Run(ctx, m.rt.DashboardRoot, "pkill", "-f", m.rt.PM2ProcessName)
	if err != nil {
		return fmt.Errorf("stopping dashboard: %w", err)
	}
	if res.ExitCode > 1 {
		// pkill exits 1 when nothing matched, which is fine here.
		return fmt.Errorf("stopping dashboard: %s", strings.TrimSpace(res.Stderr))
	}
	fmt.Fprintln(m.out, "Stopped the dashboard")
	return nil
}

// Restart cycles the dashboard process.
func (m *Manager) Restart(ctx context.Context) error {
	if m.hasPM2() {
		return m.pm2(ctx, "restart")
	}
	if err := m.Stop(ctx); err != nil {
		return err
	}
	return m.Start(ctx)
}

func (m *Manager) pm2(ctx context.Context, action string) error {
	m.log.Infow("controlling dashboard with pm2", "action", action, "process", m.rt.PM2ProcessName)
	res, err := m.runner.Run(ctx, m.rt.DashboardRoot, "pm2", action, m.rt.PM2ProcessName)
	if err != nil {
		return fmt.Errorf("pm2 %s: %w", action, err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("pm2 %s exited with status %d: %s", action, res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	fmt.Fprintf(m.out, "pm2 %s %s: done\n", action, m.rt.PM2ProcessName)
	return nil
}

// Install clones the dashboard repository into the configured root and
// installs its npm dependencies. An existing checkout is left untouched.
func (m *Manager) Install(ctx context.Context) error {
	if _, err := os.Stat(m.rt.DashboardRoot); err == nil {
		return fmt.Errorf("dashboard already installed at %s", m.rt.DashboardRoot)
	}

	repo := branding.DashboardRepoURL()
	fmt.Fprintf(m.out, "Installing the dashboard into %s\n", m.rt.DashboardRoot)
	m.log.Infow("cloning dashboard", "repo", repo, "dir", m.rt.DashboardRoot)

	res, err := m.runner.Run(ctx, "", "git", "clone", repo, m.rt.DashboardRoot)
	if err != nil {
		return fmt.Errorf("cloning dashboard: %w", err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("cloning dashboard: %s", strings.TrimSpace(res.Stderr))
	}

	return m.npmInstall(ctx)
}

// Update pulls the latest dashboard sources and refreshes npm dependencies.
func (m *Manager) Update(ctx context.Context) error {
	if _, err := os.Stat(m.rt.DashboardRoot); err != nil {
		return fmt.Errorf("dashboard not found at %s: run the dashboard install first", m.rt.DashboardRoot)
	}

	fmt.Fprintln(m.out, "Updating the dashboard")
	res, err := m.runner.Run(ctx, m.rt.DashboardRoot, "git", "pull")
	if err != nil {
		return fmt.Errorf("updating dashboard: %w", err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("updating dashboard: %s", strings.TrimSpace(res.Stderr))
	}

	return m.npmInstall(ctx)
}

func (m *Manager) npmInstall(ctx context.Context) error {
	fmt.Fprintln(m.out, "Running npm install")
	res, err := m.runner.Run(ctx, m.rt.DashboardRoot, "npm", "install")
	if err != nil {
		return fmt.Errorf("npm install: %w", err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("npm install exited with status %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return nil
}
