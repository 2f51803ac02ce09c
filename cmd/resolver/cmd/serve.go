package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/banner-resolver/internal/delivery/http/handler"
	"github.com/user/banner-resolver/internal/delivery/http/router"
	"github.com/user/banner-resolver/internal/usecase"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the run API and metrics over HTTP.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		coordinator := usecase.NewCoordinator(ctx, a.runner, log)
		apiHandler := handler.NewHandler(coordinator, log)

		server := &http.Server{
			Addr:         ":" + cfg.ServerPort,
			Handler:      router.New(apiHandler, a.metrics, log),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("Starting server", zap.String("port", cfg.ServerPort))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return err
			}
		case <-ctx.Done():
		}

		log.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		coordinator.Wait()
		log.Info("server exiting")
		return nil
	},
}
