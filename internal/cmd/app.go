package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ganot/entreate/internal/config"
	"github.com/ganot/entreate/internal/domain/activity"
	"github.com/ganot/entreate/internal/domain/entry"
	"github.com/ganot/entreate/internal/domain/journal"
	"github.com/ganot/entreate/internal/drive"
	"github.com/ganot/entreate/internal/gemdrive"
	"github.com/ganot/entreate/internal/mcp"
	"github.com/ganot/entreate/internal/publish"
	"github.com/ganot/entreate/internal/sqlite"
)

// app holds the services behind every journal command.
type app struct {
	cfg       config.Config
	logger    *slog.Logger
	entries   *entry.Service
	journal   *journal.Service
	activity  *activity.Service
	publisher *publish.Publisher
	closers   []func()
}

// loadConfig reads the file named by --config, or ENTREATE_CONFIG_PATH.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// openApp wires the drive client, repositories and services. logs receives
// log output; stdio MCP passes stderr to keep stdout clean.
func openApp(cmd *cobra.Command, logs io.Writer) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.Drive.URL == "" {
		return nil, fmt.Errorf("config: drive.url is required (set ENTREATE_DRIVE_URL)")
	}

	logger, closeLog, err := newLogger(cfg, logs)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, closers: []func(){closeLog}}

	client, err := drive.New(drive.Options{
		BaseURL:    cfg.Drive.URL,
		Token:      cfg.Drive.Token,
		Auth:       drive.AuthMode(cfg.Drive.Auth),
		Format:     drive.Format(cfg.Drive.Format),
		HTTPClient: &http.Client{Timeout: cfg.Drive.Timeout},
		RateLimit:  cfg.Drive.Rate,
		Burst:      cfg.Drive.Burst,
		Logger:     logger,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("drive: %w", err)
	}

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		a.Close()
		return nil, fmt.Errorf("database path: %w", err)
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = db.Close() })
	if err := db.RunMigrations(); err != nil {
		a.Close()
		return nil, err
	}

	scope := cfg.JournalURL()
	site := gemdrive.NewDir(client, cfg.Drive.Root)
	store := gemdrive.NewDir(client, site.Root()+cfg.Journal.EntriesDir)
	activityRepo := sqlite.NewActivityRepository(db)

	a.activity = activity.NewService(activityRepo, logger)
	a.journal = journal.NewService(gemdrive.NewJournalRepository(site), logger).WithActivity(a.activity, scope)
	a.entries, err = entry.NewService(store, a.journal, a.activity, entry.Options{
		Layout:      entry.Layout(cfg.Journal.Layout),
		MaxAttempts: cfg.Journal.MaxAttempts,
		RecentLimit: cfg.Journal.RecentLimit,
		Scope:       scope,
	}, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.publisher = publish.New(site, a.entries, a.journal, a.activity, publish.Options{
		Title:       cfg.Publish.Title,
		InlineLimit: cfg.Publish.InlineLimit,
		EntriesDir:  cfg.Journal.EntriesDir,
		Scope:       scope,
	}, logger)

	return a, nil
}

// services exposes the app to the MCP handler.
func (a *app) services() mcp.Services {
	return mcp.Services{
		Entries:   a.entries,
		Tags:      a.journal,
		Publisher: a.publisher,
		Activity:  a.activity,
		Scope:     a.cfg.JournalURL(),
	}
}

// ensureEntries creates the entries dir on first use of a journal.
func (a *app) ensureEntries(ctx context.Context) error {
	return a.entries.EnsureEntriesDir(ctx)
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
