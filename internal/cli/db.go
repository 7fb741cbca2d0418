package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var dbInfoJSON bool

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the local package database",
}

var dbRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Force a refresh of the package database",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}

		catalog, err := s.store.Load(cmd.Context(), true)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Refreshed database: %d packages in %d categories\n",
			catalog.Count(), len(catalog))
		return nil
	},
}

var dbInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show database freshness and size",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}

		catalog, err := s.loadCatalog(cmd, false)
		if err != nil {
			return err
		}

		last, next := s.store.SnapshotAge()

		if dbInfoJSON {
			return printJSON(cmd, map[string]any{
				"categories":   len(catalog),
				"packages":     catalog.Count(),
				"last_refresh": last,
				"next_refresh": next,
				"snapshot":     s.store.SnapshotPath(),
			})
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintf(w, "Categories:\t%d\n", len(catalog))
		fmt.Fprintf(w, "Packages:\t%d\n", catalog.Count())
		if last.IsZero() {
			fmt.Fprintf(w, "Last refresh:\tnever\n")
		} else {
			fmt.Fprintf(w, "Last refresh:\t%s\n", last.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(w, "Next refresh:\t%s\n", next.Format("2006-01-02 15:04:05"))
		}
		fmt.Fprintf(w, "Snapshot:\t%s\n", s.store.SnapshotPath())
		return w.Flush()
	},
}

var dbCategoriesCmd = &cobra.Command{
	Use:   "list-categories",
	Short: "List catalog categories and their package counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}

		catalog, err := s.loadCatalog(cmd, false)
		if err != nil {
			return err
		}

		return printCategoryTable(cmd, catalog)
	},
}

func init() {
	dbInfoCmd.Flags().BoolVar(&dbInfoJSON, "json", false, "Output in JSON format")

	dbCmd.AddCommand(dbRefreshCmd)
	dbCmd.AddCommand(dbInfoCmd)
	dbCmd.AddCommand(dbCategoriesCmd)
	rootCmd.AddCommand(dbCmd)
}
