package db_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/keel/internal/adapters/db"
)

func TestDB_PutAndGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keel.db")
	d, err := db.Open(path, 1)
	require.NoError(t, err)
	defer d.Close()

	_, ok, err := d.Get([]byte("missing"))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, d.Put([]byte("k1"), []byte("v1")))

	value, ok, err := d.Get([]byte("k1"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v1"), value)
}

func TestDB_PutOverwritesExistingKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keel.db")
	d, err := db.Open(path, 1)
	require.NoError(t, err)
	defer d.Close()

	require.NoError(t, d.Put([]byte("k1"), []byte("v1")))
	require.NoError(t, d.Put([]byte("k1"), []byte("v2")))

	value, ok, err := d.Get([]byte("k1"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v2"), value)
}

func TestDB_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keel.db")

	d1, err := db.Open(path, 1)
	require.NoError(t, err)
	require.NoError(t, d1.Put([]byte("k1"), []byte("v1")))
	require.NoError(t, d1.Close())

	d2, err := db.Open(path, 1)
	require.NoError(t, err)
	defer d2.Close()

	value, ok, err := d2.Get([]byte("k1"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v1"), value)
}

func TestDB_SchemaVersionMismatchWipesRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keel.db")

	d1, err := db.Open(path, 1)
	require.NoError(t, err)
	require.NoError(t, d1.Put([]byte("k1"), []byte("v1")))
	require.NoError(t, d1.Close())

	// Reopening with a different schema version re-initializes the table
	// rather than attempting to migrate stale records.
	d2, err := db.Open(path, 2)
	require.NoError(t, err)
	defer d2.Close()

	_, ok, err := d2.Get([]byte("k1"))
	require.NoError(t, err)
	assert.False(t, ok)
}
