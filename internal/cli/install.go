package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hbpm-labs/hbpm/internal/query"
)

var installCmd = &cobra.Command{
	Use:   "install <title>...",
	Short: "Install packages into the dashboard's plugins directory",
	Long: `Install one or more packages by exact title.

Each matched package is confirmed, cloned into the plugins directory, and
has its dependencies installed. A package whose directory name is already
taken is skipped; the rest of the batch still runs.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInstall,
}

func init() {
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}

	catalog, err := s.loadCatalog(cmd, false)
	if err != nil {
		return err
	}

	candidates, dropped := query.ResolveCandidates(catalog, args, s.rt.SelfName)
	for _, title := range dropped {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s cannot install itself, skipping\n", title)
	}

	report, err := s.installer(cmd).Install(cmd.Context(), candidates)
	if err != nil {
		return err
	}
	if report.Cancelled {
		fmt.Fprintln(cmd.OutOrStdout(), "Installation cancelled")
		return nil
	}
	return reportOutcome(cmd, report)
}
