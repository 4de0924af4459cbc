package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listing struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestCatalogRoundTrip(t *testing.T) {
	c := NewCatalog(t.TempDir(), time.Minute, true)

	want := []listing{{ID: 1, Name: "Computer Science"}, {ID: 2, Name: "Mathematics"}}
	require.NoError(t, c.Set("branches", nil, want))

	var got []listing
	require.True(t, c.Get("branches", nil, &got))
	assert.Equal(t, want, got)
}

func TestCatalogKeysByParams(t *testing.T) {
	c := NewCatalog(t.TempDir(), time.Minute, true)

	require.NoError(t, c.Set("semesters", map[string]string{"branch_id": "1"}, []listing{{ID: 10}}))

	var got []listing
	assert.False(t, c.Get("semesters", map[string]string{"branch_id": "2"}, &got),
		"different params must not share an entry")
	require.True(t, c.Get("semesters", map[string]string{"branch_id": "1"}, &got))
	assert.Equal(t, 10, got[0].ID)
}

func TestCatalogExpiry(t *testing.T) {
	dir := t.TempDir()
	c := NewCatalog(dir, 30*time.Minute, true)
	require.NoError(t, c.Set("subjects", nil, []listing{{ID: 7}}))

	// Age the entry past the TTL.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	stale := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, entries[0].Name()), stale, stale))

	var got []listing
	assert.False(t, c.Get("subjects", nil, &got))

	// The expired file is gone.
	entries, err = os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCatalogDisabled(t *testing.T) {
	c := NewCatalog(t.TempDir(), time.Minute, false)
	require.NoError(t, c.Set("branches", nil, []listing{{ID: 1}}))

	var got []listing
	assert.False(t, c.Get("branches", nil, &got))
}

func TestCatalogClear(t *testing.T) {
	dir := t.TempDir()
	c := NewCatalog(dir, time.Minute, true)
	require.NoError(t, c.Set("branches", nil, []listing{{ID: 1}}))
	require.NoError(t, c.Set("subjects", nil, []listing{{ID: 2}}))

	require.NoError(t, c.Clear())

	var got []listing
	assert.False(t, c.Get("branches", nil, &got))
	assert.False(t, c.Get("subjects", nil, &got))
}
