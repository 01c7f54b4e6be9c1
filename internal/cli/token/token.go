package token

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	clicfg "github.com/Miandari/dailygrit/internal/cli/config"
	"github.com/Miandari/dailygrit/internal/core"
	"github.com/Miandari/dailygrit/pkg/config"
)

var TokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Bearer token commands",
	Long:  "Issue bearer tokens signed with the configured JWT secret",
}

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a bearer token for a user id",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")
		ttl, _ := cmd.Flags().GetDuration("ttl")
		save, _ := cmd.Flags().GetBool("save")

		cfg, err := config.FromViper(viper.GetViper())
		if err != nil {
			return err
		}
		if ttl <= 0 {
			ttl = cfg.JWT.Expiration
		}

		tokens := core.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, ttl)
		token, expiresAt, err := tokens.Issue(userID)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, token)
		fmt.Fprintf(cmd.ErrOrStderr(), "  User: %s\n  Expires: %s\n", userID, expiresAt.Format(time.RFC3339))

		if save {
			path, err := SaveClientToken(token)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "  Token saved to: %s\n", path)
		}
		return nil
	},
}

// SaveClientToken stores the token and API URL in the per-user CLI config
func SaveClientToken(token string) (string, error) {
	path, err := clicfg.ClientConfigPath()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}

	client := viper.New()
	client.SetConfigFile(path)
	if _, err := os.Stat(path); err == nil {
		if err := client.ReadInConfig(); err != nil {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}
	}
	client.Set("client.token", token)
	client.Set("client.api_url", viper.GetString("client.api_url"))

	if err := client.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return "", err
	}
	return path, nil
}

func init() {
	issueCmd.Flags().String("user", "", "user id to embed in the token (required)")
	issueCmd.Flags().Duration("ttl", 0, "token lifetime (defaults to jwt.expiration)")
	issueCmd.Flags().Bool("save", false, "store the token in ~/.dailygrit/cli.yaml")
	_ = issueCmd.MarkFlagRequired("user")
	TokenCmd.AddCommand(issueCmd)
}
