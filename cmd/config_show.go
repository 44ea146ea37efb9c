package cmd

import (
	"fmt"

	"clockfix/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values. The API token is masked.`,
	Example: `
  # Show active configuration
  clockfix config show
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			fmt.Println("Invalid config:", err)
			return
		}

		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Println("Config file loaded from:", configPath)
		} else {
			fmt.Println("No config file loaded; showing defaults and environment overrides.")
		}
		fmt.Println("Configuration:")
		fmt.Printf("api.url: %s\n", cfg.API.URL)
		fmt.Printf("api.token: %s\n", maskSecret(cfg.API.Token))
		fmt.Printf("api.company_id: %s\n", cfg.API.CompanyID)
		fmt.Printf("api.timeout: %s\n", cfg.API.Timeout)
		fmt.Printf("storage.db: %s\n", cfg.Storage.DB)
		fmt.Printf("log.level: %s\n", cfg.Log.Level)
	},
}

func maskSecret(value string) string {
	switch {
	case value == "":
		return "(not set)"
	case len(value) <= 4:
		return "****"
	default:
		return "****" + value[len(value)-4:]
	}
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
