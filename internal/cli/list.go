package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hbpm-labs/hbpm/internal/installed"
)

var (
	listInstalled  bool
	listCategories bool
	listJSON       bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List packages in the catalog",
	Long: `List every package in the catalog, only the installed ones with
--installed, or the category summary with --categories.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listInstalled, "installed", false, "List only installed packages")
	listCmd.Flags().BoolVar(&listCategories, "categories", false, "List categories and their package counts")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}

	catalog, err := s.loadCatalog(cmd, false)
	if err != nil {
		return err
	}

	if listCategories {
		if listJSON {
			counts := make(map[string]int, len(catalog))
			for category, pkgs := range catalog {
				counts[category] = len(pkgs)
			}
			return printJSON(cmd, counts)
		}
		return printCategoryTable(cmd, catalog)
	}

	if listInstalled {
		catalog = installed.OnDisk(catalog)
	}

	if listJSON {
		return printJSON(cmd, catalog)
	}
	if catalog.Count() == 0 {
		if listInstalled {
			fmt.Fprintln(cmd.OutOrStdout(), "No packages installed yet.")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "The package database is empty. Run the db refresh first.")
		}
		return nil
	}
	return printCatalogTable(cmd, catalog)
}
