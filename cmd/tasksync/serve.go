package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rpggio/tasksync/internal/app"
	"github.com/rpggio/tasksync/internal/config"
	"github.com/rpggio/tasksync/internal/identity"
	"github.com/rpggio/tasksync/internal/mcp"
	"github.com/rpggio/tasksync/internal/sqlite"
	"github.com/rpggio/tasksync/internal/store"
	"github.com/rpggio/tasksync/internal/transport"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API, live streams and MCP over HTTP",
		Long: `Start the HTTP daemon.

Sign in with POST /v1/session and a bearer token from "tasksync token".
Every other /v1 route and /mcp require that same principal's token.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			if addr == "" {
				addr = cfg.Server.Addr()
			}
			return runServe(cmd.Context(), cfg, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.host and server.port)")
	return cmd
}

func runServe(ctx context.Context, cfg config.Config, addr string) error {
	if err := cfg.RequireSecret(); err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg, os.Stdout)
	if err != nil {
		return err
	}
	defer closeLog()

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	tokens, err := identity.NewTokens(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	core := newApp(db, tokens, cfg, logger)
	if err := core.Start(ctx); err != nil {
		return err
	}
	defer core.Close()

	router := transport.NewServer(core, tokens, logger)
	mcpServer := mcp.NewServer(mcp.Config{App: core, Logger: logger})
	transport.MountMCP(router, mcp.NewHTTPHandler(mcpServer), tokens, core.Session)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Info("shutting down")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func newApp(db *sqlite.DB, verifier identity.TokenVerifier, cfg config.Config, logger *slog.Logger) *app.App {
	return app.New(db, verifier, app.Options{
		Store: store.Options{
			GraceWindow:   cfg.Store.GraceWindow,
			ElevatedRoles: cfg.Store.ElevatedRoles,
		},
		MemoTTL: cfg.Views.MemoTTL,
	}, logger)
}
