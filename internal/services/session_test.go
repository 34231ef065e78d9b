package services

import (
	"context"
	"testing"

	"inkbound/internal/api"
	"inkbound/internal/models"
	"inkbound/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginPersistsSessionAcrossRestart(t *testing.T) {
	backend := newFakeBackend(t)
	backend.users[7] = models.User{ID: 7, Username: "needle", Email: "n@example.com", UserType: "client"}
	srv := backend.serve()
	defer srv.Close()

	client := api.NewClient(srv.URL)
	dbPath := t.TempDir() + "/client.db"

	db, err := store.Open(dbPath)
	require.NoError(t, err)

	session := NewSessionService(client, db)
	user, err := session.Login(context.Background(), "needle", "pw")
	require.NoError(t, err)
	assert.Equal(t, 7, user.ID)
	assert.Equal(t, 7, session.CurrentID())
	db.Close()

	// A fresh process restores the same identity from the slot
	db2, err := store.Open(dbPath)
	require.NoError(t, err)
	defer db2.Close()

	restored := NewSessionService(client, db2)
	require.NoError(t, restored.Restore())
	current, ok := restored.Current()
	require.True(t, ok)
	assert.Equal(t, "needle", current.Username)
}

func TestLoginFailureLeavesNoSession(t *testing.T) {
	backend := newFakeBackend(t)
	srv := backend.serve()
	defer srv.Close()

	client := api.NewClient(srv.URL)
	session := newTestSession(t, client, nil)

	_, err := session.Login(context.Background(), "ghost", "pw")
	require.Error(t, err)
	assert.Zero(t, session.CurrentID())
}

func TestLogoutClearsSlot(t *testing.T) {
	backend := newFakeBackend(t)
	srv := backend.serve()
	defer srv.Close()

	client := api.NewClient(srv.URL)
	session := newTestSession(t, client, &models.User{ID: 7, Username: "needle"})
	require.Equal(t, 7, session.CurrentID())

	require.NoError(t, session.Logout())
	assert.Zero(t, session.CurrentID())

	require.NoError(t, session.Restore())
	_, ok := session.Current()
	assert.False(t, ok)
}

func TestConcurrentLoginRejected(t *testing.T) {
	backend := newFakeBackend(t)
	backend.users[7] = models.User{ID: 7, Username: "needle"}
	g := backend.delay("/user/login_user/")
	srv := backend.serve()
	defer srv.Close()

	client := api.NewClient(srv.URL)
	session := newTestSession(t, client, nil)

	done := make(chan error, 1)
	go func() {
		_, err := session.Login(context.Background(), "needle", "pw")
		done <- err
	}()
	<-g.arrived

	_, err := session.Login(context.Background(), "needle", "pw")
	require.Error(t, err)

	close(g.release)
	require.NoError(t, <-done)
	assert.Equal(t, 7, session.CurrentID())
}
