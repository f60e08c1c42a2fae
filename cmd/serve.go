package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"db-crud/internal/api"
	"db-crud/internal/record"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the generic CRUD HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger("")
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		s, err := connect(ctx, logger, true)
		if err != nil {
			return err
		}
		defer s.Close()

		return serveHTTP(ctx, s.acc, logger)
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().Float64("rate-limit", 0, "requests per second, 0 disables limiting")

	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	viper.BindPFlag("server.rate_limit", serveCmd.Flags().Lookup("rate-limit"))
}

// serveHTTP listens until ctx is cancelled, then drains in-flight requests.
func serveHTTP(ctx context.Context, acc *record.Accessor, logger *zap.Logger) error {
	app := api.New(acc, api.Config{
		RateLimit: viper.GetFloat64("server.rate_limit"),
		Burst:     viper.GetInt("server.burst"),
	}, logger)

	addr := viper.GetString("server.addr")
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", addr))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
