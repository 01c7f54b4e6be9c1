package server

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Miandari/dailygrit/internal/app"
	"github.com/Miandari/dailygrit/pkg/config"
	"github.com/Miandari/dailygrit/pkg/database"
)

var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long:  "Create or upgrade the PostgreSQL schema for challenges, participants and daily entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if list, _ := cmd.Flags().GetBool("list"); list {
			migrations, err := database.Migrations()
			if err != nil {
				return err
			}
			for _, m := range migrations {
				fmt.Fprintln(out, m.Version)
			}
			return nil
		}

		cfg, err := config.FromViper(viper.GetViper())
		if err != nil {
			return err
		}

		applied, err := app.Migrate(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Fprintln(out, "✓ Schema is up to date")
			return nil
		}
		for _, v := range applied {
			fmt.Fprintf(out, "✓ Applied %s\n", v)
		}
		return nil
	},
}

func init() {
	MigrateCmd.Flags().Bool("list", false, "list embedded migrations without connecting")
}
