package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hbpm-labs/hbpm/internal/branding"
	"github.com/hbpm-labs/hbpm/internal/config"
	"github.com/hbpm-labs/hbpm/internal/updater"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string

	assumeYes bool
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` installs, removes, and upgrades third-party plugins for the
HomeBoard dashboard, keeps a local snapshot of the community plugin catalog,
and manages the dashboard process itself.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()

		// Version and upgrade manage their own messaging.
		name := cmd.Name()
		if name == "version" || name == "upgrade" {
			return
		}

		// Non-blocking banner from the cached version check.
		rt, err := config.NewRuntime()
		if err != nil {
			return
		}
		u := updater.New(buildVersion)
		u.CheckAndPrintBanner(os.Stderr, rt.DataDir)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Assume yes for all confirmation prompts")
}

// Execute runs the root command with build info injected via ldflags.
// Cobra's own error printing is silenced, so fatal errors are surfaced
// exactly once here before the process exits non-zero.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	}
	return err
}
