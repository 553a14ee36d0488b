package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wys-platform/prices/internal/api"
	"github.com/wys-platform/prices/internal/pkg/constants"
	"github.com/wys-platform/prices/internal/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		svc, err := api.NewAPIService(api.Config{
			AllowOrigins: viper.GetStringSlice(constants.ViperHTTPAllowOriginsKey),
			BodyLimit:    viper.GetString(constants.ViperHTTPBodyLimitKey),
			Debug:        verbose,
		}, api.Services{
			Catalog:  a.catalog,
			Estimate: a.estimate,
			Exchange: a.exchange,
		})
		if err != nil {
			return err
		}

		addr := viper.GetString(constants.ViperHTTPAddrKey)
		errCh := make(chan error, 1)
		go func() {
			logger.Infof(ctx, "listening on %s", addr)
			errCh <- svc.Serve(addr)
		}()

		select {
		case err = <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		logger.Info(shutdownCtx, "shutting down")
		return svc.Shutdown(shutdownCtx)
	},
}
