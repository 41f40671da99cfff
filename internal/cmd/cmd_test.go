package cmd

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ganot/entreate/internal/localdrive"
)

func newConfig(t *testing.T) string {
	t.Helper()
	srv, err := localdrive.New(context.Background(), "mem://localhost/"+uuid.NewString(), localdrive.Options{Token: "secret"})
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	dir := t.TempDir()
	path := filepath.Join(dir, "entreate.yaml")
	cfg := fmt.Sprintf(`drive:
  url: %s/
  root: blog
  token: secret
db:
  path: %s
log:
  level: error
`, ts.URL, filepath.Join(dir, "activity.db"))
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}

func run(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", configPath}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_JournalCommands(t *testing.T) {
	cfg := newConfig(t)

	out, err := run(t, cfg, "new")
	require.NoError(t, err)
	require.Equal(t, "1\t1/\n", out)

	out, err = run(t, cfg, "new")
	require.NoError(t, err)
	require.Equal(t, "2\t2/\n", out)

	out, err = run(t, cfg, "list", "--order", "asc")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], "1 "))
	require.Contains(t, lines[0], "Untitled")

	out, err = run(t, cfg, "show", "2")
	require.NoError(t, err)
	require.Contains(t, out, "# Untitled")
	require.Contains(t, out, "path: 2/")

	out, err = run(t, cfg, "show", "--json", "1/")
	require.NoError(t, err)
	require.Contains(t, out, `"path": "1/"`)

	_, err = run(t, cfg, "tag", "add", "travel")
	require.NoError(t, err)
	out, err = run(t, cfg, "tag", "list")
	require.NoError(t, err)
	require.Equal(t, "travel\n", out)

	out, err = run(t, cfg, "publish")
	require.NoError(t, err)
	require.Contains(t, out, "published 2 entries")

	out, err = run(t, cfg, "activity", "--type", "entry_created")
	require.NoError(t, err)
	require.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2)
}

func TestCLI_Errors(t *testing.T) {
	cfg := newConfig(t)

	_, err := run(t, cfg, "show", "99")
	require.Error(t, err)

	_, err = run(t, cfg, "list", "--order", "sideways")
	require.Error(t, err)

	_, err = run(t, cfg, "tag", "add", " ")
	require.Error(t, err)
}

func TestCLI_RequiresDriveURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: error\n"), 0o600))
	t.Setenv("ENTREATE_DRIVE_URL", "")

	_, err := run(t, path, "list")
	require.ErrorContains(t, err, "drive.url")
}

func TestRootCmd_Commands(t *testing.T) {
	root := NewRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"new", "list", "show", "tag", "publish", "activity", "serve", "mcp", "drive"} {
		require.Contains(t, names, want)
	}
}
