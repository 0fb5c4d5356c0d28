package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"huntx-client/internal/db"
	"huntx-client/internal/models"
)

func newTestRepo(t *testing.T) *SessionRepo {
	t.Helper()
	database, err := db.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return NewSessionRepo(database)
}

func TestSessionRepoSaveLoadClear(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	empty, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.False(t, empty.Valid())

	s := models.Session{UserID: "u1", Token: "tok", Role: models.RoleJobSeeker, DisplayName: "Ann", Theme: models.ThemeDark}
	require.NoError(t, repo.Save(ctx, s))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)

	s.DisplayName = "Ann B"
	require.NoError(t, repo.Save(ctx, s))
	loaded, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ann B", loaded.DisplayName)

	require.NoError(t, repo.Clear(ctx))
	loaded, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Session{}, loaded)
}
