// internal/commands/show.go
package commands

import (
	"github.com/mwiater/fncall/internal/appconfig"
	"github.com/spf13/cobra"
)

// showCmd groups read-only inspection subcommands.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show runtime information",
}

// showConfigCmd implements the 'show config' command, which displays the current configuration settings.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	Long:  `Show config settings ensuring that the config file is loaded properly and overridden by environment and flags accordingly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		asYAML, _ := cmd.Flags().GetBool("yaml")
		if asYAML {
			return appconfig.ShowConfigYAML(cmd.OutOrStdout(), GetConfig())
		}
		appconfig.ShowConfig(cmd.OutOrStdout(), GetConfig())
		return nil
	},
}

func init() {
	showConfigCmd.Flags().Bool("yaml", false, "print the configuration as YAML")
	showCmd.AddCommand(showConfigCmd)
	rootCmd.AddCommand(showCmd)
}
