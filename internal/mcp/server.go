// Package mcp exposes the synchronization core as Model Context Protocol tools.
package mcp

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/tasksync/internal/app"
)

// Version is reported in the MCP handshake.
const Version = "0.1.0"

// Config contains server configuration.
type Config struct {
	App    *app.App
	Logger *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "tasksync",
		Version: Version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// The first middleware runs outermost, so traffic logs see the principal tag.
	server.AddReceivingMiddleware(
		principalMiddleware(cfg.App.Session),
		trafficLoggingMiddleware(cfg.Logger, cfg.App, "inbound"),
	)
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, nil, "outbound"))

	registerTools(server, &tools{app: cfg.App, now: cfg.Now, logger: cfg.Logger})

	return server
}

// NewHTTPHandler serves server over the streamable HTTP transport.
func NewHTTPHandler(server *sdkmcp.Server) http.Handler {
	return sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return server },
		&sdkmcp.StreamableHTTPOptions{
			SessionTimeout: 30 * time.Minute,
		},
	)
}
