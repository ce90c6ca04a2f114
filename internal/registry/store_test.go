package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileStore_MissingFileYieldsEmptyRegistry(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "versions.yaml"))
	reg, err := store.Load()
	require.NoError(t, err)
	require.Empty(t, reg.Versions)
	require.Empty(t, reg.Latest)
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "versions.yaml")
	store := NewFileStore(path)

	reg := New()
	require.NoError(t, reg.Insert(stable("v2.0.0")))
	require.NoError(t, reg.Insert(devRecord()))
	require.NoError(t, store.Save(reg))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, reg.Versions, loaded.Versions)
	require.Equal(t, "v2.0.0", loaded.Latest)
	require.Equal(t, "dev", loaded.Development)

	// Alias lookup survives the round trip.
	rec, err := loaded.Get("develop")
	require.NoError(t, err)
	require.Equal(t, "dev", rec.ID)
}

func TestFileStore_SaveIsDeterministic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "versions.yaml")
	store := NewFileStore(path)

	reg := New()
	require.NoError(t, reg.Insert(stable("v2.0.0")))
	require.NoError(t, store.Save(reg))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NoError(t, store.Save(loaded))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestFileStore_SaveRejectsInvalidRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "versions.yaml")
	store := NewFileStore(path)

	reg := New()
	require.NoError(t, reg.Insert(stable("v2.0.0")))
	reg.Latest = "v9.9.9"

	require.Error(t, store.Save(reg))
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err), "invalid registry must not reach disk")
}

func TestMemStore_CopiesOnLoadAndSave(t *testing.T) {
	store := NewMemStore()

	reg := New()
	require.NoError(t, reg.Insert(stable("v2.0.0")))
	require.NoError(t, store.Save(reg))

	// Mutating the saved value must not affect the stored one.
	reg.Latest = "corrupted"

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, "v2.0.0", loaded.Latest)

	// Mutating a loaded value must not affect subsequent loads.
	require.NoError(t, loaded.Insert(stable("v3.0.0")))
	again, err := store.Load()
	require.NoError(t, err)
	require.Len(t, again.Versions, 1)
}
