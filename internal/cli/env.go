package cli

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hbpm-labs/hbpm/internal/config"
)

var envJSON bool

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Show the effective environment configuration",
	Long: `Show the environment variables the CLI honors and their effective
values after applying the config file and defaults.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := config.NewRuntime()
		if err != nil {
			return err
		}

		vars := config.EnvVars(rt)
		if envJSON {
			return printJSON(cmd, vars)
		}

		names := make([]string, 0, len(vars))
		for name := range vars {
			names = append(names, name)
		}
		sort.Strings(names)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		for _, name := range names {
			fmt.Fprintf(w, "%s\t%s\n", name, vars[name])
		}
		return w.Flush()
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Get and set config file values",
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a config value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value := config.Get(args[0])
		if value == "" {
			return fmt.Errorf("%s is not set", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Write a config value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Set(args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s in %s\n", args[0], config.FilePath())
		return nil
	},
}

func init() {
	envCmd.Flags().BoolVar(&envJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(envCmd)

	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
