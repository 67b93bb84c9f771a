// Package cmdutil holds helpers shared by the CLI subcommands.
package cmdutil

import (
	"os"

	"github.com/spf13/cobra"
	"whisper-web/internal/config"
)

// ConfigEnv names the config file when --config is not given.
const ConfigEnv = "WHISPER_WEB_CONFIG"

// LoadConfig loads configuration using the root command's persistent flags.
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv(ConfigEnv)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Log.Development = true
	}
	return cfg, nil
}
