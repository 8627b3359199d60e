package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ViniZap4/nohtz-server/domain"
)

// openTestDB needs a disposable database; every table is truncated.
func openTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("NOTES_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("NOTES_TEST_DATABASE_URL not set")
	}
	require.NoError(t, Migrate(url))

	pool, err := Open(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(context.Background(),
		`TRUNCATE sessions, notes, folders, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return pool
}

func TestUsers_CreateAndConflict(t *testing.T) {
	pool := openTestDB(t)
	users := NewUsers(pool)
	ctx := context.Background()

	u, err := users.Create(ctx, "alice", "hash")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)

	_, err = users.Create(ctx, "alice", "other")
	assert.True(t, errors.Is(err, domain.ErrConflict), "got %v", err)

	got, err := users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)

	missing, err := users.GetByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFoldersAndNotes_OwnershipScoping(t *testing.T) {
	pool := openTestDB(t)
	ctx := context.Background()
	users, folders, notes := NewUsers(pool), NewFolders(pool), NewNotes(pool)

	alice, err := users.Create(ctx, "alice", "h")
	require.NoError(t, err)
	bob, err := users.Create(ctx, "bob", "h")
	require.NoError(t, err)

	work, err := folders.Create(ctx, alice.ID, "Work")
	require.NoError(t, err)

	_, err = notes.Create(ctx, bob.ID, "sneaky", "", &work.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	plan, err := notes.Create(ctx, alice.ID, "Plan", "", &work.ID)
	require.NoError(t, err)
	loose, err := notes.Create(ctx, alice.ID, "Loose", "", nil)
	require.NoError(t, err)

	inWork, err := notes.List(ctx, alice.ID, domain.FolderFilter{Mode: domain.FilterFolder, FolderID: work.ID})
	require.NoError(t, err)
	require.Len(t, inWork, 1)
	assert.Equal(t, plan.ID, inWork[0].ID)

	unfiled, err := notes.List(ctx, alice.ID, domain.FolderFilter{Mode: domain.FilterUnfiled})
	require.NoError(t, err)
	require.Len(t, unfiled, 1)
	assert.Equal(t, loose.ID, unfiled[0].ID)

	all, err := notes.List(ctx, alice.ID, domain.FolderFilter{Mode: domain.FilterAll})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = notes.Get(ctx, bob.ID, plan.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	title := "mine"
	_, err = notes.Update(ctx, bob.ID, plan.ID, domain.NoteUpdate{Title: &title})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.True(t, errors.Is(notes.Delete(ctx, bob.ID, plan.ID), domain.ErrNotFound))
	assert.True(t, errors.Is(folders.Delete(ctx, bob.ID, work.ID), domain.ErrNotFound))

	bobFolders, err := folders.List(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, bobFolders)
	assert.NotNil(t, bobFolders)
}

func TestNotes_PartialUpdateAndFolderDeletion(t *testing.T) {
	pool := openTestDB(t)
	ctx := context.Background()
	users, folders, notes := NewUsers(pool), NewFolders(pool), NewNotes(pool)

	alice, err := users.Create(ctx, "alice", "h")
	require.NoError(t, err)
	work, err := folders.Create(ctx, alice.ID, "Work")
	require.NoError(t, err)
	n, err := notes.Create(ctx, alice.ID, "Plan", "", &work.ID)
	require.NoError(t, err)

	content := "<p>hi</p>"
	updated, err := notes.Update(ctx, alice.ID, n.ID, domain.NoteUpdate{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "Plan", updated.Title)
	assert.Equal(t, content, updated.Content)
	require.NotNil(t, updated.FolderID)
	assert.Equal(t, work.ID, *updated.FolderID)
	assert.False(t, updated.UpdatedAt.Before(n.UpdatedAt))

	_, err = notes.Update(ctx, alice.ID, n.ID, domain.NoteUpdate{})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = notes.Update(ctx, alice.ID, n.ID, domain.NoteUpdate{Folder: domain.SomeID(work.ID + 100)})
	require.Error(t, err)
	assert.Equal(t, "Folder not found", domain.PublicMessage(err))

	require.NoError(t, folders.Delete(ctx, alice.ID, work.ID))
	got, err := notes.Get(ctx, alice.ID, n.ID)
	require.NoError(t, err)
	assert.Nil(t, got.FolderID)
	assert.Equal(t, content, got.Content)

	unfiled, err := notes.Update(ctx, alice.ID, n.ID, domain.NoteUpdate{Folder: domain.NullID()})
	require.NoError(t, err)
	assert.Nil(t, unfiled.FolderID)
}

func TestSessions_RoundTripAndExpiry(t *testing.T) {
	pool := openTestDB(t)
	ctx := context.Background()
	alice, err := NewUsers(pool).Create(ctx, "alice", "h")
	require.NoError(t, err)

	sessions := NewSessions(pool)
	now := time.Now().UTC().Truncate(time.Millisecond)
	s := domain.Session{Token: "tok-1", UserID: alice.ID, Username: "alice", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, sessions.Save(ctx, s))

	got, err := sessions.Load(ctx, "tok-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, alice.ID, got.UserID)

	removed, err := sessions.DeleteExpired(ctx, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	got, err = sessions.Load(ctx, "tok-1")
	require.NoError(t, err)
	assert.Nil(t, got)
	require.NoError(t, sessions.Delete(ctx, "tok-1"))
}
