package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hbpm-labs/hbpm/internal/api"
)

var uiPort int

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Serve the HTTP API for the web interface",
	Long: `Serve the package manager's HTTP API.

All operations exposed over the API run without confirmation prompts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}

		srv := api.NewServer(s.rt, s.store, s.runner, s.log, buildVersion)
		addr := fmt.Sprintf(":%d", uiPort)
		fmt.Fprintf(cmd.OutOrStdout(), "Serving API on %s\n", addr)
		return srv.Run(addr)
	},
}

func init() {
	uiCmd.Flags().IntVar(&uiPort, "port", 7890, "Port to listen on")
	rootCmd.AddCommand(uiCmd)
}
