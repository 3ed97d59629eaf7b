// Package main runs the bridge as a local HTTP server that emulates API Gateway.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"

	"github.com/nnnkkk7/snowflake-bridge/pkg/config"
	"github.com/nnnkkk7/snowflake-bridge/pkg/connection"
	"github.com/nnnkkk7/snowflake-bridge/pkg/logging"
	"github.com/nnnkkk7/snowflake-bridge/server/handlers"
)

const defaultHost = "127.0.0.1"

type serverOptions struct {
	host       string
	port       string
	envFile    string
	offline    bool
	duckDBPath string
	duckDBInit string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &serverOptions{}

	cmd := &cobra.Command{
		Use:   "bridge-server",
		Short: "Serve the Snowflake bridge locally",
		Long: `Serve the bridge routes (/hello, /test-snowflake, /chat, /execute-sql) over
plain HTTP. Every request is turned into the API Gateway event the Lambda
would receive, so responses match the deployed function.

With --offline, SQL runs on a local DuckDB database instead of Snowflake.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer cancel()
			return run(ctx, opts)
		},
	}

	cmd.Flags().StringVar(&opts.host, "host", defaultHost, "Address to listen on")
	cmd.Flags().StringVarP(&opts.port, "port", "p", "", "Port to listen on (default: $PORT or "+config.DefaultPort+")")
	cmd.Flags().StringVar(&opts.envFile, "env-file", ".env", "Load environment variables from this file if it exists")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "Run SQL on a local DuckDB database")
	cmd.Flags().StringVar(&opts.duckDBPath, "duckdb-path", "", "DuckDB database file for --offline (default: in-memory)")
	cmd.Flags().StringVar(&opts.duckDBInit, "duckdb-init", "", "SQL file executed against the DuckDB database at startup")

	return cmd
}

func run(ctx context.Context, opts *serverOptions) error {
	if err := config.LoadDotEnv(opts.envFile); err != nil {
		return err
	}

	settings, err := config.Load()
	if err != nil {
		return err
	}
	if opts.offline {
		settings.Engine = string(config.EngineDuckDB)
	}
	if opts.duckDBPath != "" {
		settings.DuckDBPath = opts.duckDBPath
	}
	if opts.port != "" {
		settings.Port = opts.port
	}
	if settings.Port == "" {
		settings.Port = config.DefaultPort
	}

	logger := logging.NewDefault(settings.Debug)

	app, err := handlers.NewApp(settings, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to close SQL engine", "err", err)
		}
	}()

	if opts.duckDBInit != "" {
		if err := seedDuckDB(ctx, app.Dialer, opts.duckDBInit); err != nil {
			return err
		}
		logger.Info("seeded DuckDB", "file", opts.duckDBInit)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))
	app.Router.Mount(r)

	server := &http.Server{
		Addr:              net.JoinHostPort(opts.host, settings.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      settings.AnalystTimeout() + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("starting local bridge", "addr", "http://"+server.Addr, "engine", settings.SQLEngine(), "routes", app.Router.Paths())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func seedDuckDB(ctx context.Context, dialer connection.Dialer, path string) error {
	duck, ok := dialer.(*connection.DuckDBDialer)
	if !ok {
		return fmt.Errorf("--duckdb-init requires the %s engine", config.EngineDuckDB)
	}

	script, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if _, err := duck.Exec(ctx, string(script)); err != nil {
		return fmt.Errorf("failed to run %s: %w", path, err)
	}
	return nil
}
