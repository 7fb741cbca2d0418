package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hbpm-labs/hbpm/internal/branding"
	"github.com/hbpm-labs/hbpm/internal/updater"
)

var upgradeSelf bool

var upgradeCmd = &cobra.Command{
	Use:   "upgrade [title]...",
	Short: "Upgrade installed packages",
	Long: `Upgrade installed packages that have upstream changes.

Without arguments every installed package is checked; with titles only
those packages are considered. Each upgrade pulls the latest changes and
re-runs the dependency install.

With --self the CLI checks its own GitHub releases instead.`,
	RunE: runUpgrade,
}

func init() {
	upgradeCmd.Flags().BoolVar(&upgradeSelf, "self", false, "Check for a newer release of "+branding.CLIName())
	rootCmd.AddCommand(upgradeCmd)
}

func runUpgrade(cmd *cobra.Command, args []string) error {
	if upgradeSelf {
		return runSelfUpgrade(cmd)
	}

	s, err := newSession()
	if err != nil {
		return err
	}

	catalog, err := s.loadCatalog(cmd, false)
	if err != nil {
		return err
	}

	report, err := s.installer(cmd).Upgrade(cmd.Context(), catalog, args)
	if err != nil {
		return err
	}
	if report.Cancelled {
		fmt.Fprintln(cmd.OutOrStdout(), "Upgrade cancelled")
		return nil
	}
	if len(report.Upgraded) == 0 && len(report.Failed) == 0 {
		return nil
	}
	return reportOutcome(cmd, report)
}

func runSelfUpgrade(cmd *cobra.Command) error {
	u := updater.New(buildVersion)
	release, available, err := u.SelfCheck()
	if err != nil {
		return fmt.Errorf("checking for updates: %w", err)
	}

	if !available {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s is up to date\n", branding.CLIName(), buildVersion)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s is available (running %s)\n",
		branding.CLIName(), release.Version, buildVersion)
	fmt.Fprintf(cmd.OutOrStdout(), "Download it from %s\n", release.HTMLURL)
	return nil
}
