package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hbpm-labs/hbpm/internal/pkgdb"
)

var (
	extTitle       string
	extAuthor      string
	extRepository  string
	extDescription string
)

var extPkgCmd = &cobra.Command{
	Use:   "ext-pkg",
	Short: "Manage user-registered external packages",
	Long: `Manage packages that are not part of the community wiki.

External packages live in their own file and appear in the catalog under
the reserved "External Packages" category. They can be installed, removed,
and upgraded like any other package.`,
}

var extPkgAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register an external package",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}

		pkg := pkgdb.Package{
			Title:       extTitle,
			Author:      extAuthor,
			Repository:  extRepository,
			Description: extDescription,
		}
		if err := s.store.External().Add(pkg); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (%s)\n", pkg.Title, pkg.Repository)
		return nil
	},
}

var extPkgRemoveCmd = &cobra.Command{
	Use:   "remove <title>...",
	Short: "Remove external packages from the local database",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}

		if err := s.store.External().Remove(args, s.confirmer(cmd)); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "External package list updated")
		return nil
	},
}

func init() {
	extPkgAddCmd.Flags().StringVar(&extTitle, "title", "", "Package title")
	extPkgAddCmd.Flags().StringVar(&extAuthor, "author", "", "Package author")
	extPkgAddCmd.Flags().StringVar(&extRepository, "repo", "", "Git repository URL")
	extPkgAddCmd.Flags().StringVar(&extDescription, "desc", "", "Package description")
	_ = extPkgAddCmd.MarkFlagRequired("title")
	_ = extPkgAddCmd.MarkFlagRequired("repo")

	extPkgCmd.AddCommand(extPkgAddCmd)
	extPkgCmd.AddCommand(extPkgRemoveCmd)
	rootCmd.AddCommand(extPkgCmd)
}
