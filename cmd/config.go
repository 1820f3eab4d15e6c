package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/webpaste/pkg/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Edit the webpaste configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := appVault.ConfigPath

		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("config file not found at %s (run 'webpaste init')", path)
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.FormatInfo("Opening config: "+path))
		return runEditor(path)
	},
}
