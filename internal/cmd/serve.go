package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/ganot/entreate/internal/mcp"
	"github.com/ganot/entreate/internal/transport"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the command that runs the HTTP API.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and the MCP endpoint",
		Long: `Serve the journal over HTTP:

  /api/...   REST endpoints for entries, tags, publishing and activity
  /rpc       JSON-RPC 2.0 calls using the MCP tool names
  /mcp       MCP streamable HTTP transport
  /health    liveness probe

A bearer token on a request is passed through to the drive. With
server.auth_enabled set, requests without one are rejected.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, os.Stdout)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if err := a.ensureEntries(ctx); err != nil {
				// A token-less server may only be able to reach the drive
				// with per-request tokens.
				a.logger.Warn("entries dir not checked", "error", err)
			}

			addr := net.JoinHostPort(a.cfg.Server.Host, strconv.Itoa(a.cfg.Server.Port))
			return serveHTTP(ctx, a.logger, addr, newHTTPHandler(a))
		},
	}
}

func newHTTPHandler(a *app) http.Handler {
	services := a.services()
	router := transport.NewServer(mcp.NewHandler(services), transport.Options{
		AuthRequired: a.cfg.Server.AuthEnabled,
		Logger:       a.logger,
	})

	mcpServer := mcp.NewServer(mcp.Config{
		Services:      services,
		TransportMode: "http",
		Logger:        a.logger,
	})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{SessionTimeout: 30 * time.Minute},
	)
	router.Handle("/mcp", mcpHandler)
	router.Handle("/mcp/*", mcpHandler)
	return router
}

// serveHTTP runs handler on addr until ctx is cancelled.
func serveHTTP(ctx context.Context, logger *slog.Logger, addr string, handler http.Handler) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
