package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accesshub/internal/client/api"
)

func testUser() api.User {
	return api.User{ID: "u-1", Username: "tester", Email: "test@example.com", Role: "user"}
}

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "session.json"))
}

func TestManager_LoginPersistsAndLogoutClears(t *testing.T) {
	store := newTestStore(t)
	mgr := NewManager(store, time.Minute, nil)
	defer mgr.Close()

	assert.Equal(t, StateAnonymous, mgr.State())

	require.NoError(t, mgr.Login(testUser(), "token-1"))
	assert.Equal(t, StateAuthenticated, mgr.State())
	assert.Equal(t, "token-1", mgr.Token())

	snap, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "tester", snap.User.Username)
	assert.Equal(t, "token-1", snap.Token)

	mgr.Logout()
	assert.Equal(t, StateAnonymous, mgr.State())
	assert.Empty(t, mgr.Token())
	assert.Nil(t, mgr.User())

	snap, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestManager_RestoreFromStorage(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(&Snapshot{User: testUser(), Token: "token-1"}))

	mgr := NewManager(store, time.Minute, nil)
	defer mgr.Close()

	require.NoError(t, mgr.Restore())
	assert.Equal(t, StateAuthenticated, mgr.State())
	assert.Equal(t, "tester", mgr.User().Username)
	assert.Equal(t, "token-1", mgr.Token())
}

func TestManager_RestoreWithoutSnapshotStaysAnonymous(t *testing.T) {
	mgr := NewManager(newTestStore(t), time.Minute, nil)
	defer mgr.Close()

	require.NoError(t, mgr.Restore())
	assert.Equal(t, StateAnonymous, mgr.State())
}

func TestManager_IdleExpiry(t *testing.T) {
	store := newTestStore(t)
	expired := make(chan struct{})
	mgr := NewManager(store, 50*time.Millisecond, func() { close(expired) })
	defer mgr.Close()

	require.NoError(t, mgr.Login(testUser(), "token-1"))

	select {
	case <-expired:
	case <-time.After(2 * time.Second):
		t.Fatal("idle timer never fired")
	}

	assert.Equal(t, StateAnonymous, mgr.State())

	// Durable storage no longer holds the identity.
	snap, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestManager_ActivityResetsIdleTimer(t *testing.T) {
	expired := make(chan struct{})
	mgr := NewManager(newTestStore(t), 300*time.Millisecond, func() { close(expired) })
	defer mgr.Close()

	require.NoError(t, mgr.Login(testUser(), "token-1"))

	// Activity just before the window would have elapsed.
	time.Sleep(150 * time.Millisecond)
	mgr.Touch()

	// Well past the original deadline, but within the reset window.
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, StateAuthenticated, mgr.State())

	// No further activity: the reset window runs out.
	select {
	case <-expired:
	case <-time.After(2 * time.Second):
		t.Fatal("idle timer never fired after reset")
	}
	assert.Equal(t, StateAnonymous, mgr.State())
}

func TestManager_LogoutCancelsIdleTimer(t *testing.T) {
	expired := make(chan struct{})
	mgr := NewManager(newTestStore(t), 50*time.Millisecond, func() { close(expired) })
	defer mgr.Close()

	require.NoError(t, mgr.Login(testUser(), "token-1"))
	mgr.Logout()

	select {
	case <-expired:
		t.Fatal("expiry callback fired after logout")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestManager_UpdateUserSurvivesRestore(t *testing.T) {
	store := newTestStore(t)
	mgr := NewManager(store, time.Minute, nil)

	require.NoError(t, mgr.Login(testUser(), "token-1"))
	require.NoError(t, mgr.UpdateUser(UserUpdate{Username: "new"}))
	assert.Equal(t, "new", mgr.User().Username)
	assert.Equal(t, "test@example.com", mgr.User().Email) // untouched
	mgr.Close()

	// Page-reload equivalent: a fresh manager restoring from storage.
	restored := NewManager(store, time.Minute, nil)
	defer restored.Close()
	require.NoError(t, restored.Restore())
	assert.Equal(t, "new", restored.User().Username)
	assert.Equal(t, "token-1", restored.Token())
}

func TestManager_InvalidateFiresExpiryCallback(t *testing.T) {
	store := newTestStore(t)
	expired := make(chan struct{})
	mgr := NewManager(store, time.Minute, func() { close(expired) })
	defer mgr.Close()

	require.NoError(t, mgr.Login(testUser(), "token-1"))
	mgr.Invalidate()

	select {
	case <-expired:
	case <-time.After(time.Second):
		t.Fatal("Invalidate did not fire the expiry callback")
	}
	assert.Equal(t, StateAnonymous, mgr.State())

	// Invalidate while anonymous is a no-op and must not panic on the
	// already-closed channel path.
	mgr.Invalidate()
}

func TestManager_SurvivesFailedReLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "invalid email or password"})
	}))
	defer srv.Close()

	store := newTestStore(t)
	mgr := NewManager(store, time.Minute, nil)
	defer mgr.Close()

	client := api.New(srv.URL)
	client.OnUnauthorized = mgr.Invalidate

	require.NoError(t, mgr.Login(testUser(), "token-1"))

	// Mistyping the password on a re-login attempt gets a 401, but the call
	// carried no bearer token; the live session and its snapshot stay put.
	_, err := client.Login(context.Background(), "test@example.com", "wrong-password")
	require.Error(t, err)

	assert.Equal(t, StateAuthenticated, mgr.State())
	snap, loadErr := store.Load()
	require.NoError(t, loadErr)
	require.NotNil(t, snap)
	assert.Equal(t, "token-1", snap.Token)

	// A rejected token on an authenticated call is still an implicit logout.
	_, err = client.Users(context.Background(), mgr.Token())
	require.Error(t, err)
	assert.Equal(t, StateAnonymous, mgr.State())
}

func TestManager_TouchWhileAnonymousIsNoOp(t *testing.T) {
	mgr := NewManager(newTestStore(t), 50*time.Millisecond, func() {
		t.Error("expiry fired for an anonymous session")
	})
	defer mgr.Close()

	mgr.Touch()
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, StateAnonymous, mgr.State())
}
