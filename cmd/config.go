package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage clockfix configuration file values.",
	Long: `Create, edit, display, and delete the clockfix configuration file.

The configuration stores the API connection and local settings:
- api.url / api.token / api.company_id / api.timeout
- storage.db
- log.level

Every key can be overridden by an environment variable, e.g. CLOCKFIX_API_TOKEN.`,
	Example: `
  # Create default config in $HOME/.clockfix.yaml
  clockfix config create

  # Show active config and source file
  clockfix config show

  # Open active config in editor (creates example if missing)
  clockfix config edit

  # Delete active config file
  clockfix config delete
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
