package storage_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-admin-client/storage"
	"github.com/jrsteele09/go-admin-client/users"
)

func testState() *storage.State {
	identity := users.Identity{
		ID:       42,
		UserID:   "usr-042",
		Username: "admin",
		Email:    "a@b.com",
		Role:     users.RoleTenantAdmin,
		Status:   users.StatusActive,
		TenantID: "ten-001",
	}
	return &storage.State{
		User:            &identity,
		IsAuthenticated: true,
		Session: &storage.PersistedSession{
			User:         identity,
			AccessToken:  "access",
			RefreshToken: "refresh",
			ExpiresAt:    time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
		},
		Tokens: storage.TokenPair{AccessToken: "access", RefreshToken: "refresh"},
	}
}

func TestStore_SaveLoad(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.json")
		store := storage.New(path, zerolog.Nop())

		require.NoError(t, store.Save(testState()))

		loaded, err := store.Load()
		require.NoError(t, err)
		require.True(t, loaded.IsAuthenticated)
		require.Equal(t, "a@b.com", loaded.User.Email)
		require.Equal(t, "access", loaded.Tokens.AccessToken)
		require.True(t, loaded.Session.ExpiresAt.Equal(time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)))
	})

	t.Run("missing file yields empty state", func(t *testing.T) {
		store := storage.New(filepath.Join(t.TempDir(), "absent.json"), zerolog.Nop())

		loaded, err := store.Load()
		require.NoError(t, err)
		require.False(t, loaded.IsAuthenticated)
		require.Nil(t, loaded.User)
		require.Nil(t, loaded.Session)
	})

	t.Run("corrupt file is reported", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

		store := storage.New(path, zerolog.Nop())
		_, err := store.Load()
		require.Error(t, err)
	})

	t.Run("creates missing parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "deeper", "session.json")
		store := storage.New(path, zerolog.Nop())
		require.NoError(t, store.Save(testState()))

		_, err := os.Stat(path)
		require.NoError(t, err)
	})
}

func TestStore_FilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := storage.New(path, zerolog.Nop())
	require.NoError(t, store.Save(testState()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm(), "credentials file must be private")
}

func TestStore_AtomicWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := storage.New(path, zerolog.Nop())

	require.NoError(t, store.Save(testState()))
	second := testState()
	second.Tokens.AccessToken = "rotated"
	require.NoError(t, store.Save(second))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, "rotated", loaded.Tokens.AccessToken)

	_, err = os.Stat(path + ".tmp")
	require.True(t, os.IsNotExist(err), "temp file must not survive a save")
}

func TestStore_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := storage.New(path, zerolog.Nop())
	require.NoError(t, store.Save(testState()))

	require.NoError(t, store.Clear())
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))

	// Clearing an already-clean store is fine.
	require.NoError(t, store.Clear())

	loaded, err := store.Load()
	require.NoError(t, err)
	require.False(t, loaded.IsAuthenticated)
}
