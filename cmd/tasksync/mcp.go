package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/tasksync/internal/config"
	"github.com/rpggio/tasksync/internal/identity"
	"github.com/rpggio/tasksync/internal/mcp"
	"github.com/spf13/cobra"
)

type mcpOptions struct {
	token     string
	principal string
}

func mcpCmd() *cobra.Command {
	var opts mcpOptions

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve MCP tools over stdio",
		Long: `Serve MCP tools over stdin/stdout. Logs go to stderr.

The session starts signed out unless --token (or TASKSYNC_TOKEN) or --principal is given.
--principal trusts the local caller and needs no signing secret.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			if opts.token == "" {
				opts.token = os.Getenv("TASKSYNC_TOKEN")
			}
			return runMCP(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.token, "token", "", "sign in with this bearer token at startup")
	cmd.Flags().StringVar(&opts.principal, "principal", "", "sign in as this principal id without a token")
	return cmd
}

func runMCP(ctx context.Context, cfg config.Config, opts mcpOptions) error {
	// stdout carries JSON-RPC.
	logger, closeLog, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	var verifier identity.TokenVerifier
	if cfg.Auth.Secret != "" {
		tokens, err := identity.NewTokens(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
		if err != nil {
			return err
		}
		verifier = tokens
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	core := newApp(db, verifier, cfg, logger)
	if err := core.Start(ctx); err != nil {
		return err
	}
	defer core.Close()

	switch {
	case opts.token != "":
		if _, err := core.Session.SignIn(ctx, opts.token); err != nil {
			return fmt.Errorf("sign in: %w", err)
		}
	case opts.principal != "":
		core.Session.Set(&identity.Principal{ID: opts.principal})
		logger.Info("signed in without token", "principal", opts.principal)
	}

	server := mcp.NewServer(mcp.Config{App: core, Logger: logger})
	logger.Info("starting stdio transport")
	if err := server.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stdio server: %w", err)
	}
	logger.Info("shutting down")
	return nil
}
