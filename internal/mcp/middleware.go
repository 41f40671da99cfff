package mcp

import (
	"context"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ganot/entreate/internal/drive"
)

// tokenMiddleware forwards a bearer token from the MCP HTTP request to the
// drive. Requests without one use the configured drive token.
func tokenMiddleware() sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if token := bearerToken(req); token != "" {
				ctx = drive.WithToken(ctx, token)
			}
			return next(ctx, method, req)
		}
	}
}

func bearerToken(req sdkmcp.Request) string {
	if req == nil {
		return ""
	}
	extra := req.GetExtra()
	if extra == nil || extra.Header == nil {
		return ""
	}
	auth := extra.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
}
