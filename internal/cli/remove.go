package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove <title>...",
	Short: "Remove installed packages",
	Long: `Remove one or more installed packages by exact title.

Each matched plugin directory is deleted after confirmation. Titles that do
not match an installed package are reported and skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}

	catalog, err := s.loadCatalog(cmd, false)
	if err != nil {
		return err
	}

	report, err := s.installer(cmd).Remove(cmd.Context(), catalog, args)
	if err != nil {
		return err
	}
	if report.Cancelled {
		fmt.Fprintln(cmd.OutOrStdout(), "Removal cancelled")
		return nil
	}
	return reportOutcome(cmd, report)
}
