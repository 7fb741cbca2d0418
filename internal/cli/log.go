package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hbpm-labs/hbpm/internal/config"
	"github.com/hbpm-labs/hbpm/internal/logging"
)

var logPathOnly bool

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Print the CLI log",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := config.NewRuntime()
		if err != nil {
			return err
		}

		path := filepath.Join(rt.LogDir, logging.FileName)
		if logPathOnly {
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Fprintln(cmd.OutOrStdout(), "No log entries yet.")
				return nil
			}
			return fmt.Errorf("opening log: %w", err)
		}
		defer f.Close()

		_, err = io.Copy(cmd.OutOrStdout(), f)
		return err
	},
}

func init() {
	logCmd.Flags().BoolVar(&logPathOnly, "path", false, "Print the log file path only")
	rootCmd.AddCommand(logCmd)
}
