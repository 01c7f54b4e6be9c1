package server

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Miandari/dailygrit/internal/app"
	"github.com/Miandari/dailygrit/pkg/config"
	"github.com/Miandari/dailygrit/pkg/logger"
	"github.com/Miandari/dailygrit/pkg/metrics"
)

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long:  "Start the dailygrit REST API with the configured storage and lock drivers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.FromViper(viper.GetViper())
		if err != nil {
			return err
		}
		logger.Init(cfg.Logging)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
			applied, err := app.Migrate(ctx, cfg)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.Infof("Applied %d migration(s)", len(applied))
		}

		a, err := app.New(ctx, cfg, metrics.Default())
		if err != nil {
			return err
		}
		defer a.Close()

		logger.Info("Press Ctrl+C to shutdown")
		if err := a.Run(ctx); err != nil {
			return err
		}
		logger.Info("Shutdown complete")
		return nil
	},
}

func init() {
	ServeCmd.Flags().Bool("migrate", false, "apply pending migrations before serving")
}
