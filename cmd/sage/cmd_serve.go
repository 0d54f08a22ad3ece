package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Ramsey-B/sage/pkg/routes/health"
	"github.com/Ramsey-B/sage/pkg/routes/vocabulary"
	"github.com/Ramsey-B/sage/pkg/tracing"
)

const version = "0.3.0"

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the vocabulary admin HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			tp := sdktrace.NewTracerProvider()
			otel.SetTracerProvider(tp)
			tracing.SetTracer(tp.Tracer(cfg.AppName))
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = tp.Shutdown(shutdownCtx)
			}()

			db, err := connectDatabase(ctx, logger)
			if err != nil {
				return fmt.Errorf("serve: connecting to database: %w", err)
			}
			defer db.Close()

			items := newItemRepository(db, logger)
			refs := newRefRepository(db, logger)

			e := echo.New()
			e.HideBanner = true
			e.Use(otelecho.Middleware(cfg.AppName))
			e.Use(middleware.Recover())

			checker := health.NewChecker(db, version)
			checker.RegisterRoutes(e)
			checker.SetReady(true)

			handler := vocabulary.NewHandler(items, refs, logger, cfg.FuzzyThreshold)
			handler.Register(e.Group("/api/v1/vocabulary"))

			e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
			e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
			e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second

			errCh := make(chan error, 1)
			go func() {
				logger.WithFields(map[string]any{"port": cfg.Port}).Info("Admin server starting")
				if serveErr := e.Start(fmt.Sprintf(":%d", cfg.Port)); serveErr != nil && serveErr != http.ErrServerClosed {
					errCh <- serveErr
				}
				close(errCh)
			}()

			select {
			case <-ctx.Done():
				logger.Info("Shutting down admin server")
			case startErr := <-errCh:
				if startErr != nil {
					return fmt.Errorf("serve: %w", startErr)
				}
				return nil
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return e.Shutdown(shutdownCtx)
		},
	}
}
