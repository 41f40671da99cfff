package cmd

import (
	"log/slog"
	"net"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ganot/entreate/internal/config"
	"github.com/ganot/entreate/internal/localdrive"
)

// NewDriveCmd creates the local drive commands.
func NewDriveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drive",
		Short: "Local gemdrive server",
	}

	var (
		host  string
		port  int
		token string
		level string
	)
	serve := &cobra.Command{
		Use:   "serve DIR",
		Short: "Serve a directory as a gemdrive",
		Long: `Serve DIR over the gemdrive HTTP surface entreate uses: directory
listings, recursive directory creation, and file reads and writes.

DIR may be a local path or a storage URL such as mem://localhost/journal.
With --token set, requests must present it as a bearer token or an
access_token query parameter.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := config.ParseLevel(level)
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))

			ctx := cmd.Context()
			server, err := localdrive.New(ctx, args[0], localdrive.Options{Token: token, Logger: logger})
			if err != nil {
				return err
			}
			addr := net.JoinHostPort(host, strconv.Itoa(port))
			return serveHTTP(ctx, logger, addr, server)
		},
	}
	serve.Flags().StringVar(&host, "host", "127.0.0.1", "Listen host")
	serve.Flags().IntVarP(&port, "port", "p", 8081, "Listen port")
	serve.Flags().StringVar(&token, "token", os.Getenv("ENTREATE_DRIVE_TOKEN"), "Required access token")
	serve.Flags().StringVar(&level, "log-level", "info", "Log level")
	cmd.AddCommand(serve)
	return cmd
}
