/*
Copyright © 2025 riad@rsworld.eu

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"clockfix/config"
	"clockfix/internal/log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "clockfix",
	Short: "Detect and resolve overlapping worklog records reported by the workforce API.",
	Long: `
**********************************************
*                CLOCKFIX                    *
**********************************************

This CLI fetches conflicting worklog records (overlapping shifts or timesheet entries)
from the workforce management API and resolves them by deleting one record or by
splitting the containing record around the contained one.

Every confirmed resolution is journaled in a local SQLite database.
`,
	Example: `
  # Create configuration file
  clockfix config create

  # List conflicts of one week
  clockfix conflicts list --from 2026-10-12 --to 2026-10-18

  # Classify conflicts from an exported file without calling the API
  clockfix conflicts check -i ./conflicts.xlsx

  # Delete one record of a conflict group (asks for confirmation)
  clockfix resolve delete --day 2026-10-18 --record 42

  # Split the containing record around the contained one
  clockfix resolve split --day 2026-10-18 --record 42

  # Show the resolution journal
  clockfix history

  # Start the local JSON API
  clockfix serve
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.clockfix.yaml, then ./.clockfix.yaml)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".clockfix" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".clockfix")
	}

	config.BindEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found. Create one first with: clockfix config create")
	}

	log.Configure(log.Config{Level: viper.GetString(config.KeyLogLevel)})
}
