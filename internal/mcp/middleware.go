package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/tasksync/internal/identity"
)

type contextKey string

const principalIDKey contextKey = "principal_id"

// principalMiddleware tags every request with the principal signed in when it arrived.
// Tools still resolve the principal themselves; the tag is for logging.
func principalMiddleware(signal identity.Signal) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if p, err := signal.Current(ctx); err == nil && p != nil {
				ctx = context.WithValue(ctx, principalIDKey, p.ID)
			}
			return next(ctx, method, req)
		}
	}
}

func principalIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(principalIDKey).(string)
	return id
}
