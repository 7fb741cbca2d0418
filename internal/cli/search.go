package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hbpm-labs/hbpm/internal/query"
)

var (
	searchCaseSensitive bool
	searchTitleOnly     bool
	searchJSON          bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the package catalog",
	Long: `Search the package catalog by category or free text.

A query that exactly matches a category name returns that whole category.
Otherwise the query matches as a substring against each package's title,
author, and description (case-insensitive unless --case-sensitive is set).`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchCaseSensitive, "case-sensitive", false, "Match case exactly")
	searchCmd.Flags().BoolVar(&searchTitleOnly, "title-only", false, "Match against titles only")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}

	catalog, err := s.loadCatalog(cmd, false)
	if err != nil {
		return err
	}

	results := query.Search(catalog, args[0], query.SearchOptions{
		CaseSensitive: searchCaseSensitive,
		TitleOnly:     searchTitleOnly,
	})

	if searchJSON {
		return printJSON(cmd, results)
	}
	if results.Count() == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No packages found matching %q\n", args[0])
		return nil
	}
	return printCatalogTable(cmd, results)
}
