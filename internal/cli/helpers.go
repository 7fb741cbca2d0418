package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hbpm-labs/hbpm/internal/branding"
	"github.com/hbpm-labs/hbpm/internal/config"
	"github.com/hbpm-labs/hbpm/internal/installed"
	"github.com/hbpm-labs/hbpm/internal/installer"
	"github.com/hbpm-labs/hbpm/internal/logging"
	"github.com/hbpm-labs/hbpm/internal/pkgdb"
	"github.com/hbpm-labs/hbpm/internal/prompt"
	"github.com/hbpm-labs/hbpm/internal/scraper"
	"github.com/hbpm-labs/hbpm/internal/shell"
)

// session bundles the per-invocation runtime context and components that
// most commands need. Constructed fresh in each RunE.
type session struct {
	rt      config.Runtime
	log     *logging.Logger
	store   *pkgdb.Store
	scanner *installed.Scanner
	runner  shell.Runner
}

func newSession() (*session, error) {
	rt, err := config.NewRuntime()
	if err != nil {
		return nil, err
	}

	log, err := logging.New(rt.LogDir)
	if err != nil {
		return nil, fmt.Errorf("opening log: %w", err)
	}

	fetch := scraper.NewWikiFetcher(branding.PluginsWikiURL(), log)
	runner := shell.ExecRunner{}

	return &session{
		rt:      rt,
		log:     log,
		store:   pkgdb.NewStore(rt, fetch, log),
		scanner: installed.NewScanner(rt, runner, log),
		runner:  runner,
	}, nil
}

// confirmer returns the interactive prompt, honoring the global --yes flag.
func (s *session) confirmer(cmd *cobra.Command) prompt.Confirmer {
	return &prompt.Terminal{
		In:        cmd.InOrStdin(),
		Out:       cmd.ErrOrStderr(),
		AssumeYes: assumeYes,
	}
}

func (s *session) installer(cmd *cobra.Command) *installer.Installer {
	return installer.New(s.rt, s.runner, s.confirmer(cmd), s.log, cmd.OutOrStdout())
}

// loadCatalog loads the merged catalog and annotates installed packages.
// An unreachable upstream degrades to a warning; a missing plugins root
// skips annotation.
func (s *session) loadCatalog(cmd *cobra.Command, forceRefresh bool) (pkgdb.Catalog, error) {
	catalog, err := s.store.Load(cmd.Context(), forceRefresh)
	if err != nil {
		if !errors.Is(err, pkgdb.ErrUpstreamUnavailable) {
			return nil, err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}

	correlated, err := s.scanner.Correlate(cmd.Context(), catalog)
	if err != nil {
		if errors.Is(err, installed.ErrPluginsRootNotFound) {
			return catalog, nil
		}
		return nil, err
	}
	return correlated, nil
}

// printCatalogTable renders packages grouped by category.
func printCatalogTable(cmd *cobra.Command, catalog pkgdb.Catalog) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tTITLE\tAUTHOR\tDESCRIPTION")
	for _, category := range catalog.Categories() {
		for _, pkg := range catalog[category] {
			title := pkg.Title
			if pkg.Installed() {
				title += " [installed]"
			}
			desc := pkg.Description
			if len(desc) > 60 {
				desc = desc[:57] + "..."
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", category, title, pkg.Author, desc)
		}
	}
	return w.Flush()
}

func printCategoryTable(cmd *cobra.Command, catalog pkgdb.Catalog) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tPACKAGES")
	for _, category := range catalog.Categories() {
		fmt.Fprintf(w, "%s\t%d\n", category, len(catalog[category]))
	}
	return w.Flush()
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

// reportOutcome prints per-package failures and turns an unsuccessful batch
// into a non-zero exit.
func reportOutcome(cmd *cobra.Command, report installer.Report) error {
	if len(report.Failed) > 0 {
		titles := make([]string, 0, len(report.Failed))
		for title := range report.Failed {
			titles = append(titles, title)
		}
		sort.Strings(titles)
		for _, title := range titles {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", title, report.Failed[title])
		}
	}
	if !report.Success() {
		return fmt.Errorf("no packages were processed successfully")
	}
	return nil
}
