package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a configuration file from the example template.",
	Long: `Create a new configuration file from the same example template used by "config edit".

If the file already exists it is left unchanged but validated. Keys that still hold
template values (api.url, api.token) are listed.`,
	Example: `
  # Create default config at $HOME/.clockfix.yaml
  clockfix config create

  # Create a config for a second company
  clockfix --configFile ./company-7.yaml config create
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath(cfgFile, viper.ConfigFileUsed())
		if err != nil {
			return err
		}
		return createConfig(os.Stdout, path)
	},
}

func createConfig(out io.Writer, path string) error {
	created, err := writeConfigTemplate(path)
	if err != nil {
		return err
	}

	cfg, err := checkConfigFile(path)
	if err != nil {
		return err
	}

	if created {
		fmt.Fprintf(out, "New config file created at: %s\n", path)
	} else {
		fmt.Fprintf(out, "Config file already exists at: %s\n", path)
	}
	if pending := pendingSettings(cfg); len(pending) > 0 {
		fmt.Fprintf(out, "Set %s before talking to the API (clockfix config edit).\n", strings.Join(pending, " and "))
	}
	return nil
}

func init() {
	configCmd.AddCommand(configCreateCmd)
}
