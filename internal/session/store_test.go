package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewStore(path)
	require.NoError(t, store.Load())
	require.Empty(t, store.Token())
	require.Nil(t, store.User())

	uniID := 3
	user := User{ID: 12, Name: "Asha Verma", Email: "asha@example.edu", Role: "student", UniversityID: &uniID}
	require.NoError(t, store.Save("tok-abc", user))

	// A fresh store reading the same file sees the saved session.
	reopened := NewStore(path)
	require.NoError(t, reopened.Load())
	require.Equal(t, "tok-abc", reopened.Token())
	got := reopened.User()
	require.NotNil(t, got)
	require.Equal(t, "asha@example.edu", got.Email)
	require.Equal(t, 3, *got.UniversityID)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStoreClearRemovesTokenAndUserTogether(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewStore(path)
	require.NoError(t, store.Save("tok", User{ID: 1, Role: "student"}))

	require.NoError(t, store.Clear())
	require.Empty(t, store.Token())
	require.Nil(t, store.User())
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))

	// Clearing twice is fine.
	require.NoError(t, store.Clear())
}

func TestStoreLoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nope", "session.json"))
	require.NoError(t, store.Load())
	require.Empty(t, store.Token())
}
