package gemdrive_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/ganot/entreate/internal/domain/journal"
	"github.com/ganot/entreate/internal/drive"
	"github.com/ganot/entreate/internal/gemdrive"
	"github.com/ganot/entreate/internal/localdrive"
	"github.com/ganot/entreate/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, token string) *drive.Client {
	t.Helper()
	srv, err := localdrive.New(context.Background(), "mem://localhost/"+uuid.NewString(), localdrive.Options{Token: token})
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	client, err := drive.New(drive.Options{BaseURL: ts.URL + "/blog/", Token: token})
	require.NoError(t, err)
	return client
}

func TestDir_MapsErrors(t *testing.T) {
	ctx := context.Background()
	dir := gemdrive.NewDir(newClient(t, ""), "entries")
	require.Equal(t, "entries/", dir.Root())

	_, err := dir.ListDir(ctx, "")
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.ErrorIs(t, err, drive.ErrNotFound)

	require.NoError(t, dir.CreateDir(ctx, "8/"))
	require.ErrorIs(t, dir.CreateDir(ctx, "8/"), repository.ErrConflict)

	require.NoError(t, dir.WriteFile(ctx, "8/entry.md", []byte("hi"), false))
	require.ErrorIs(t, dir.WriteFile(ctx, "8/entry.md", []byte("x"), false), repository.ErrConflict)

	names, err := dir.ListDir(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"8/"}, names)

	data, err := dir.ReadFile(ctx, "8/entry.md")
	require.NoError(t, err)
	require.Equal(t, "hi", string(data))
}

func TestDir_Forbidden(t *testing.T) {
	ctx := context.Background()
	client := newClient(t, "secret")
	dir := gemdrive.NewDir(client, "entries/")

	_, err := dir.ListDir(drive.WithToken(ctx, "nope"), "")
	require.ErrorIs(t, err, repository.ErrForbidden)
}

func TestJournalRepository(t *testing.T) {
	ctx := context.Background()
	repo := gemdrive.NewJournalRepository(gemdrive.NewDir(newClient(t, ""), ""))

	_, err := repo.Get(ctx)
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.Create(ctx, &journal.DB{LastID: 0, Tags: journal.NewTags("go")}))
	require.ErrorIs(t, repo.Create(ctx, &journal.DB{LastID: 5}), repository.ErrConflict)

	require.NoError(t, repo.Put(ctx, &journal.DB{LastID: 8, Tags: journal.NewTags("go")}))
	db, err := repo.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(8), db.LastID)
	require.Equal(t, []string{"go"}, db.Tags.Names())
}

func TestJournalRepository_InvalidRecord(t *testing.T) {
	ctx := context.Background()
	dir := gemdrive.NewDir(newClient(t, ""), "")
	require.NoError(t, dir.WriteFile(ctx, "db.json", []byte("not json"), false))

	_, err := gemdrive.NewJournalRepository(dir).Get(ctx)
	require.ErrorIs(t, err, journal.ErrInvalidRecord)
}
