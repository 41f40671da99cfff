// Package testserver runs a complete entreate stack against an in-memory
// local drive for integration tests.
package testserver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ganot/entreate/internal/domain/activity"
	"github.com/ganot/entreate/internal/domain/entry"
	"github.com/ganot/entreate/internal/domain/journal"
	"github.com/ganot/entreate/internal/drive"
	"github.com/ganot/entreate/internal/gemdrive"
	"github.com/ganot/entreate/internal/localdrive"
	"github.com/ganot/entreate/internal/mcp"
	"github.com/ganot/entreate/internal/publish"
	"github.com/ganot/entreate/internal/sqlite"
	"github.com/ganot/entreate/internal/transport"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Scope is the journal name used in activity records.
const Scope = "test-journal"

// Options configures a TestServer.
type Options struct {
	// Token, when set, is required by the drive and by the API.
	Token  string
	Layout entry.Layout
	Now    func() time.Time
}

// Stack is one client's view of the journal: its own drive client and
// services, sharing the drive with every other stack of the same server.
type Stack struct {
	Client    *drive.Client
	Site      *gemdrive.Dir
	Entries   *entry.Service
	Journal   *journal.Service
	Activity  *activity.Service
	Publisher *publish.Publisher
}

// TestServer is the HTTP API backed by a local drive.
type TestServer struct {
	Server *httptest.Server
	Drive  *httptest.Server
	DB     *sqlite.DB
	Token  string
	Stack  *Stack

	opts Options
}

// New starts a drive and an API server. Both are closed when t ends.
func New(t *testing.T, opts Options) *TestServer {
	t.Helper()
	ctx := context.Background()

	driveSrv, err := localdrive.New(ctx, "mem://localhost/"+uuid.NewString(), localdrive.Options{Token: opts.Token})
	require.NoError(t, err)
	driveHTTP := httptest.NewServer(driveSrv)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	ts := &TestServer{Drive: driveHTTP, DB: db, Token: opts.Token, opts: opts}
	ts.Stack = ts.NewStack(t)
	require.NoError(t, ts.Stack.Entries.EnsureEntriesDir(ctx))

	services := mcp.Services{
		Entries:   ts.Stack.Entries,
		Tags:      ts.Stack.Journal,
		Publisher: ts.Stack.Publisher,
		Activity:  ts.Stack.Activity,
		Scope:     Scope,
	}
	ts.Server = httptest.NewServer(transport.NewServer(mcp.NewHandler(services), transport.Options{
		AuthRequired: opts.Token != "",
	}))

	t.Cleanup(func() {
		ts.Server.Close()
		driveHTTP.Close()
		_ = db.Close()
	})
	return ts
}

// NewStack builds an independent set of services over the shared drive,
// as a second writer would have.
func (ts *TestServer) NewStack(t *testing.T) *Stack {
	t.Helper()

	client, err := drive.New(drive.Options{
		BaseURL:    ts.Drive.URL + "/",
		Token:      ts.Token,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	})
	require.NoError(t, err)

	site := gemdrive.NewDir(client, "")
	store := gemdrive.NewDir(client, "entries/")
	activities := activity.NewService(sqlite.NewActivityRepository(ts.DB), nil)
	journalSvc := journal.NewService(gemdrive.NewJournalRepository(site), nil).WithActivity(activities, Scope)

	entries, err := entry.NewService(store, journalSvc, activities, entry.Options{
		Layout: ts.opts.Layout,
		Scope:  Scope,
		Now:    ts.opts.Now,
	}, nil)
	require.NoError(t, err)

	return &Stack{
		Client:   client,
		Site:     site,
		Entries:  entries,
		Journal:  journalSvc,
		Activity: activities,
		Publisher: publish.New(site, entries, journalSvc, activities, publish.Options{
			Title: "Test Journal",
			Scope: Scope,
		}, nil),
	}
}

// URL returns the API URL of path.
func (ts *TestServer) URL(path string) string {
	return ts.Server.URL + path
}
