package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
	Long:  "View the effective service and CLI configuration",
}

// ClientConfigPath is where per-user CLI settings (API URL, token) are kept
func ClientConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".dailygrit", "cli.yaml"), nil
}
