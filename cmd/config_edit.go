package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the active config in an editor.",
	Long: `Open the active clockfix config file in your editor ($VISUAL, then $EDITOR, then vi).

If no config file exists yet, the example template is written first. After the editor
exits, the file is validated: failing keys (api.*, storage.db, log.level) are named and
api.url must be accepted by the API client.`,
	Example: `
  # Edit active config
  clockfix config edit

  # Edit with a specific editor
  EDITOR="code --wait" clockfix config edit
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath(cfgFile, viper.ConfigFileUsed())
		if err != nil {
			return err
		}

		created, err := writeConfigTemplate(path)
		if err != nil {
			return err
		}
		if created {
			fmt.Printf("No config file found. Created example config at: %s\n", path)
		}

		editor := editorCommand(os.Getenv("VISUAL"), os.Getenv("EDITOR"), path)
		editor.Stdin = os.Stdin
		editor.Stdout = os.Stdout
		editor.Stderr = os.Stderr
		if err := editor.Run(); err != nil {
			return fmt.Errorf("opening editor failed: %w", err)
		}

		cfg, err := checkConfigFile(path)
		if err != nil {
			return err
		}

		fmt.Printf("Configuration saved and validated: %s\n", path)
		fmt.Printf("API %s, company %q, journal %s\n", cfg.API.URL, cfg.API.CompanyID, cfg.Storage.DB)
		if pending := pendingSettings(cfg); len(pending) > 0 {
			fmt.Printf("Still using template values for: %s\n", strings.Join(pending, ", "))
		}
		return nil
	},
}

// editorCommand builds the editor invocation from $VISUAL or $EDITOR, which
// may carry arguments (e.g. "code --wait"), falling back to vi.
func editorCommand(visual, editor, path string) *exec.Cmd {
	value := "vi"
	for _, candidate := range []string{visual, editor} {
		if strings.TrimSpace(candidate) != "" {
			value = candidate
			break
		}
	}

	fields := strings.Fields(value)
	return exec.Command(fields[0], append(fields[1:], path)...)
}

func init() {
	configCmd.AddCommand(configEditCmd)
}
