package cli

import (
	"github.com/spf13/cobra"

	"github.com/hbpm-labs/hbpm/internal/lifecycle"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Control the dashboard process and checkout",
}

func newLifecycleManager(cmd *cobra.Command) (*lifecycle.Manager, error) {
	s, err := newSession()
	if err != nil {
		return nil, err
	}
	return lifecycle.NewManager(s.rt, s.runner, s.log, cmd.OutOrStdout()), nil
}

var dashboardStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newLifecycleManager(cmd)
		if err != nil {
			return err
		}
		return m.Start(cmd.Context())
	},
}

var dashboardStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newLifecycleManager(cmd)
		if err != nil {
			return err
		}
		return m.Stop(cmd.Context())
	},
}

var dashboardRestartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Restart the dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newLifecycleManager(cmd)
		if err != nil {
			return err
		}
		return m.Restart(cmd.Context())
	},
}

var dashboardInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Clone the dashboard and install its dependencies",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newLifecycleManager(cmd)
		if err != nil {
			return err
		}
		return m.Install(cmd.Context())
	},
}

var dashboardUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Pull the latest dashboard sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newLifecycleManager(cmd)
		if err != nil {
			return err
		}
		return m.Update(cmd.Context())
	},
}

func init() {
	dashboardCmd.AddCommand(dashboardStartCmd)
	dashboardCmd.AddCommand(dashboardStopCmd)
	dashboardCmd.AddCommand(dashboardRestartCmd)
	dashboardCmd.AddCommand(dashboardInstallCmd)
	dashboardCmd.AddCommand(dashboardUpdateCmd)
	rootCmd.AddCommand(dashboardCmd)
}
