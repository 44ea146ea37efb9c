package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"clockfix/config"
)

// resolveConfigPath picks --configFile, then the file viper loaded, then
// $HOME/.clockfix.yaml.
func resolveConfigPath(flagValue, loaded string) (string, error) {
	for _, candidate := range []string{flagValue, loaded} {
		if strings.TrimSpace(candidate) != "" {
			return candidate, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".clockfix.yaml"), nil
}

// writeConfigTemplate writes the example config unless path already exists.
// The file is created 0600 because it holds the API token.
func writeConfigTemplate(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("checking config file failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("creating config directory failed: %w", err)
	}
	if err := os.WriteFile(path, []byte(config.ExampleYAML()), 0o600); err != nil {
		return false, fmt.Errorf("creating example config failed: %w", err)
	}
	return true, nil
}

// checkConfigContent validates YAML content and builds the API client from
// it, so a config that passes here is one the resolve commands can use.
func checkConfigContent(content []byte) (*config.Config, error) {
	cfg, err := config.ValidateYAMLContent(content)
	if err != nil {
		var validationErr *config.ValidationError
		if errors.As(err, &validationErr) {
			return nil, fmt.Errorf("invalid keys %s: %w", strings.Join(validationErr.Keys(), ", "), err)
		}
		return nil, err
	}

	if _, err := newAPIClient(cfg, ""); err != nil {
		return nil, fmt.Errorf("%s rejected by api client: %w", config.KeyAPIURL, err)
	}
	return cfg, nil
}

// pendingSettings lists keys that still hold template values.
func pendingSettings(cfg *config.Config) []string {
	var pending []string
	if cfg.API.URL == config.DefaultAPIURL {
		pending = append(pending, config.KeyAPIURL)
	}
	if strings.TrimSpace(cfg.API.Token) == "" {
		pending = append(pending, config.KeyAPIToken)
	}
	return pending
}

func checkConfigFile(path string) (*config.Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config failed: %w", err)
	}
	cfg, err := checkConfigContent(content)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
