//go:build integration

package integration_test

import (
	"context"
	"io"
	"testing"

	"github.com/hbpm-labs/hbpm/internal/installed"
	"github.com/hbpm-labs/hbpm/internal/installer"
	"github.com/hbpm-labs/hbpm/internal/logging"
	"github.com/hbpm-labs/hbpm/internal/pkgdb"
	"github.com/hbpm-labs/hbpm/internal/query"
)

// TestFullFlowInstallCorrelateRemove drives the complete flow:
// refresh catalog -> resolve -> install -> correlate on disk -> remove.
func TestFullFlowInstallCorrelateRemove(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	log := logging.Nop()

	fetch := &wikiFetcher{catalog: pkgdb.Catalog{
		"Clocks": {
			{Title: "Clock1", Author: "ann", Description: "a clock", Repository: "https://github.com/a/Clock1"},
			{Title: "Clock2", Author: "ann", Description: "another clock", Repository: "https://github.com/a/Clock2"},
		},
		"Weather": {
			{Title: "Weather1", Author: "bob", Description: "a forecast", Repository: "https://github.com/b/Weather1"},
		},
	}}
	runner := newGitRunner()
	store := pkgdb.NewStore(env.rt, fetch, log)
	scanner := installed.NewScanner(env.rt, runner, log)
	ins := installer.New(env.rt, runner, yesConfirmer{}, log, io.Discard)

	// Step 1: first load fetches and persists the snapshot.
	catalog, err := store.Load(ctx, false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if fetch.calls != 1 {
		t.Fatalf("fetch calls = %d, want 1", fetch.calls)
	}

	// Step 2: resolve and install two packages.
	candidates, dropped := query.ResolveCandidates(catalog, []string{"Clock1", "Weather1"}, env.rt.SelfName)
	if len(dropped) != 0 || len(candidates) != 2 {
		t.Fatalf("candidates = %v, dropped = %v", candidates, dropped)
	}
	report, err := ins.Install(ctx, candidates)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if len(report.Installed) != 2 {
		t.Fatalf("Installed = %v", report.Installed)
	}
	assertDirExists(t, env.rt.PluginsRoot+"/Clock1")
	assertDirExists(t, env.rt.PluginsRoot+"/Weather1")

	// Step 3: a second load uses the snapshot and correlation marks both
	// installs, but not the package that was never cloned.
	catalog, err = store.Load(ctx, false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if fetch.calls != 1 {
		t.Fatalf("fresh snapshot should not refetch, calls = %d", fetch.calls)
	}
	catalog, err = scanner.Correlate(ctx, catalog)
	if err != nil {
		t.Fatalf("Correlate: %v", err)
	}

	onDisk := installed.OnDisk(catalog)
	if onDisk.Count() != 2 {
		t.Fatalf("installed count = %d, want 2", onDisk.Count())
	}
	for _, pkg := range catalog["Clocks"] {
		if pkg.Title == "Clock2" && pkg.Installed() {
			t.Error("Clock2 was never installed but is marked installed")
		}
	}

	// Step 4: remove one package and verify the other survives.
	report, err = ins.Remove(ctx, catalog, []string{"Clock1"})
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(report.Removed) != 1 {
		t.Fatalf("Removed = %v", report.Removed)
	}
	assertDirMissing(t, env.rt.PluginsRoot+"/Clock1")
	assertDirExists(t, env.rt.PluginsRoot+"/Weather1")
}

// TestExternalSourceInstallFlow registers an external package and installs
// it like any catalog package.
func TestExternalSourceInstallFlow(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	log := logging.Nop()

	fetch := &wikiFetcher{catalog: pkgdb.Catalog{}}
	runner := newGitRunner()
	store := pkgdb.NewStore(env.rt, fetch, log)
	ins := installer.New(env.rt, runner, yesConfirmer{}, log, io.Discard)

	external := pkgdb.Package{
		Title:       "MyPlugin",
		Author:      "me",
		Repository:  "https://github.com/me/MyPlugin",
		Description: "mine",
	}
	if err := store.External().Add(external); err != nil {
		t.Fatalf("Add: %v", err)
	}

	catalog, err := store.Load(ctx, false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(catalog[pkgdb.ExternalCategory]) != 1 {
		t.Fatalf("external category = %v", catalog[pkgdb.ExternalCategory])
	}

	candidates, _ := query.ResolveCandidates(catalog, []string{"MyPlugin"}, env.rt.SelfName)
	report, err := ins.Install(ctx, candidates)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if len(report.Installed) != 1 {
		t.Fatalf("Installed = %v", report.Installed)
	}
	assertDirExists(t, env.rt.PluginsRoot+"/MyPlugin")

	// Remove the external source; the clone on disk is unaffected.
	if err := store.External().Remove([]string{"MyPlugin"}, yesConfirmer{}); err != nil {
		t.Fatalf("Remove external: %v", err)
	}
	catalog, err = store.Load(ctx, false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(catalog[pkgdb.ExternalCategory]) != 0 {
		t.Errorf("external category should be empty, got %v", catalog[pkgdb.ExternalCategory])
	}
	assertDirExists(t, env.rt.PluginsRoot+"/MyPlugin")
}
