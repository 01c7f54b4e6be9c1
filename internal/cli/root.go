// Package cli holds the dailygrit command tree.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Miandari/dailygrit/internal/cli/challenge"
	clicfg "github.com/Miandari/dailygrit/internal/cli/config"
	"github.com/Miandari/dailygrit/internal/cli/score"
	"github.com/Miandari/dailygrit/internal/cli/server"
	"github.com/Miandari/dailygrit/internal/cli/token"
	"github.com/Miandari/dailygrit/pkg/config"
)

var cfgFile string

// RootCmd is the dailygrit entry point
var RootCmd = &cobra.Command{
	Use:           "dailygrit",
	Short:         "Daily habit challenges with scoring and streaks",
	Long:          "dailygrit runs the challenge API and offers offline scoring, streak and admin tools",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the root command and exits non-zero on error
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./configs/development.yaml if present)")
	RootCmd.PersistentFlags().String("api-url", "", "dailygrit API base URL (default http://localhost:8080)")
	_ = viper.BindPFlag("client.api_url", RootCmd.PersistentFlags().Lookup("api-url"))

	RootCmd.AddCommand(server.ServeCmd)
	RootCmd.AddCommand(server.MigrateCmd)
	RootCmd.AddCommand(score.ScoreCmd)
	RootCmd.AddCommand(score.StreakCmd)
	RootCmd.AddCommand(challenge.RecalculateCmd)
	RootCmd.AddCommand(token.TokenCmd)
	RootCmd.AddCommand(clicfg.ConfigCmd)
}

// initConfig loads the service config into the global viper, then merges the
// per-user client settings written by `dailygrit token issue --save`
func initConfig() error {
	config.SetDefaults(viper.GetViper())
	viper.SetDefault("client.api_url", "http://localhost:8080")
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	switch {
	case cfgFile != "":
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", cfgFile, err)
		}
	default:
		if _, err := os.Stat(filepath.Join("configs", "development.yaml")); err == nil {
			viper.SetConfigFile(filepath.Join("configs", "development.yaml"))
			if err := viper.ReadInConfig(); err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	clientFile, err := clicfg.ClientConfigPath()
	if err != nil {
		return nil
	}
	if _, err := os.Stat(clientFile); err != nil {
		return nil
	}
	client := viper.New()
	client.SetConfigFile(clientFile)
	if err := client.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read client config %s: %w", clientFile, err)
	}
	return viper.MergeConfigMap(client.AllSettings())
}
