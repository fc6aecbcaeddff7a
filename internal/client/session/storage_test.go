package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nested", "session.json"))

	// Missing file means no session, not an error.
	snap, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, snap)

	require.NoError(t, store.Save(&Snapshot{User: testUser(), Token: "token-1"}))

	snap, err = store.Load()
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "tester", snap.User.Username)
	assert.Equal(t, "token-1", snap.Token)

	require.NoError(t, store.Clear())
	snap, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, snap)

	// Clearing twice is fine.
	require.NoError(t, store.Clear())
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err := store.Load()
	assert.Error(t, err)
}
