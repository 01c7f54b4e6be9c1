package config

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Miandari/dailygrit/pkg/config"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the effective dailygrit configuration with secrets masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.FromViper(viper.GetViper())
		if err != nil {
			return err
		}
		printConfig(cmd.OutOrStdout(), cfg, viper.ConfigFileUsed(), viper.GetString("client.api_url"), viper.GetString("client.token"))
		return nil
	},
}

func printConfig(w io.Writer, cfg *config.Config, file, apiURL, token string) {
	if file == "" {
		file = "(defaults and environment only)"
	}
	fmt.Fprintf(w, "dailygrit Configuration (%s):\n", file)
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Server:\n")
	fmt.Fprintf(w, "  Address: %s\n", cfg.Server.Addr())
	fmt.Fprintf(w, "  Mode: %s\n", cfg.Server.Mode)
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Storage:\n")
	fmt.Fprintf(w, "  Driver: %s\n", cfg.Storage.Driver)
	if cfg.Storage.Driver == config.DriverPostgres {
		fmt.Fprintf(w, "  Database: %s@%s:%d/%s\n", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)
	}
	fmt.Fprintf(w, "  Lock: %s", cfg.Lock.Driver)
	if cfg.Lock.Driver == config.DriverRedis {
		fmt.Fprintf(w, " (%s, ttl %s)", cfg.Redis.Addr, cfg.Lock.TTL)
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Auth:\n")
	fmt.Fprintf(w, "  Issuer: %s\n", cfg.JWT.Issuer)
	fmt.Fprintf(w, "  Secret: %s\n", mask(cfg.JWT.Secret))
	fmt.Fprintf(w, "  Token lifetime: %s\n", cfg.JWT.Expiration)
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Rate limit: ")
	if cfg.RateLimit.Enabled {
		fmt.Fprintf(w, "%.2f req/s, burst %d\n", cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	} else {
		fmt.Fprintln(w, "disabled")
	}
	fmt.Fprintf(w, "Timezone: %s\n", cfg.App.Timezone)
	fmt.Fprintf(w, "Logging: %s/%s -> %s\n", cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	fmt.Fprintln(w, "")

	fmt.Fprintf(w, "Client:\n")
	fmt.Fprintf(w, "  API URL: %s\n", apiURL)
	if token != "" {
		fmt.Fprintf(w, "  Token: %s\n", mask(token))
	} else {
		fmt.Fprintf(w, "  Token: not set\n")
		fmt.Fprintf(w, "  Run 'dailygrit token issue --user <id> --save' to store one\n")
	}
}

func mask(secret string) string {
	switch {
	case secret == "":
		return "(empty)"
	case len(secret) > 8:
		return secret[:4] + "..." + fmt.Sprintf(" (%d chars)", len(secret))
	default:
		return "****"
	}
}

func init() {
	ConfigCmd.AddCommand(showCmd)
}
