package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/tasksync/internal/app"
	"github.com/rpggio/tasksync/internal/store"
)

// trafficLoggingMiddleware logs each request and response at debug level, tagged with the
// signed-in principal. Tool calls also record the tool, the outcome code and the store
// state and snapshot version each collection had when the call returned.
func trafficLoggingMiddleware(logger *slog.Logger, core *app.App, direction string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if logger == nil || !logger.Enabled(ctx, slog.LevelDebug) {
				return next(ctx, method, req)
			}

			attrs := []any{
				"direction", direction,
				"method", method,
				"session_id", safeSessionID(req),
				"principal_id", principalIDFromContext(ctx),
			}
			if tool := toolName(req); tool != "" {
				attrs = append(attrs, "tool", tool)
			}
			logger.Debug("mcp traffic", append(attrs, "stage", "request", "params", formatPayload(safeParams(req)))...)

			start := time.Now()
			result, err := next(ctx, method, req)
			if strings.HasPrefix(method, "notifications/") {
				return result, err
			}

			attrs = append(attrs, "stage", "response", "duration", time.Since(start))
			switch {
			case err != nil:
				attrs = append(attrs, "error", err)
			case method == "tools/call":
				attrs = append(attrs, "outcome", toolOutcome(result))
				if core != nil {
					attrs = append(attrs, snapshotAttrs(core))
				}
			default:
				attrs = append(attrs, "result", formatPayload(result))
			}
			logger.Debug("mcp traffic", attrs...)
			return result, err
		}
	}
}

func toolName(req sdkmcp.Request) string {
	call, ok := req.(*sdkmcp.CallToolRequest)
	if !ok || call.Params == nil {
		return ""
	}
	return call.Params.Name
}

// toolOutcome is "ok" or the error code of a failed tool result.
func toolOutcome(result sdkmcp.Result) string {
	res, ok := result.(*sdkmcp.CallToolResult)
	if !ok || res == nil || !res.IsError {
		return "ok"
	}
	for _, c := range res.Content {
		text, ok := c.(*sdkmcp.TextContent)
		if !ok {
			continue
		}
		var out errorOutput
		if json.Unmarshal([]byte(text.Text), &out) == nil && out.Error != nil {
			return out.Error.Code
		}
	}
	return "error"
}

func snapshotAttrs(core *app.App) slog.Attr {
	return slog.Group("snapshots",
		slog.String("tasks", describeStore(core.Tasks)),
		slog.String("projects", describeStore(core.Projects)),
		slog.String("categories", describeStore(core.Categories)),
		slog.String("comments", describeStore(core.Comments)),
	)
}

// describeStore renders a store as state@version, e.g. "live@3".
func describeStore[T any](s *store.Store[T]) string {
	snap, _ := s.Snapshot()
	return fmt.Sprintf("%s@%d", s.State(), snap.Version)
}

func safeSessionID(req sdkmcp.Request) (id string) {
	if req == nil {
		return ""
	}
	defer func() {
		if recover() != nil {
			id = ""
		}
	}()
	session := req.GetSession()
	if session == nil {
		return ""
	}
	return session.ID()
}

func safeParams(req sdkmcp.Request) (params any) {
	if req == nil {
		return nil
	}
	defer func() {
		if recover() != nil {
			params = nil
		}
	}()
	return req.GetParams()
}

func formatPayload(payload any) string {
	if payload == nil {
		return "<nil>"
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%T", payload)
	}
	return string(data)
}
