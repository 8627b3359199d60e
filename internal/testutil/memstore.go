// server/internal/testutil/memstore.go
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ViniZap4/nohtz-server/domain"
)

// MemDB is an in-memory stand-in for the postgres store with the same
// ownership and ON DELETE SET NULL behavior.
type MemDB struct {
	mu      sync.Mutex
	seq     int64
	clock   time.Time
	users   map[int64]domain.User
	folders map[int64]domain.Folder
	notes   map[int64]domain.Note
}

func NewMemDB() *MemDB {
	return &MemDB{
		clock:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		users:   map[int64]domain.User{},
		folders: map[int64]domain.Folder{},
		notes:   map[int64]domain.Note{},
	}
}

// tick hands out strictly increasing timestamps so orderings are stable.
func (db *MemDB) tick() time.Time {
	db.clock = db.clock.Add(time.Second)
	return db.clock
}

func (db *MemDB) nextID() int64 {
	db.seq++
	return db.seq
}

func (db *MemDB) Users() *MemUsers     { return &MemUsers{db} }
func (db *MemDB) Folders() *MemFolders { return &MemFolders{db} }
func (db *MemDB) Notes() *MemNotes     { return &MemNotes{db} }

type MemUsers struct{ db *MemDB }

func (r *MemUsers) Create(_ context.Context, username, passwordHash string) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Username == username {
			return nil, domain.Conflict("Username already exists")
		}
	}
	u := domain.User{ID: r.db.nextID(), Username: username, PasswordHash: passwordHash, CreatedAt: r.db.tick()}
	r.db.users[u.ID] = u
	return &u, nil
}

func (r *MemUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *MemUsers) Count() int {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return len(r.db.users)
}

type MemFolders struct{ db *MemDB }

func (r *MemFolders) List(_ context.Context, userID int64) ([]domain.Folder, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []domain.Folder{}
	for _, f := range r.db.folders {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemFolders) Create(_ context.Context, userID int64, name string) (*domain.Folder, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f := domain.Folder{ID: r.db.nextID(), UserID: userID, Name: name, CreatedAt: r.db.tick()}
	r.db.folders[f.ID] = f
	return &f, nil
}

func (r *MemFolders) Delete(_ context.Context, userID, folderID int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f, ok := r.db.folders[folderID]
	if !ok || f.UserID != userID {
		return domain.NotFound("Folder not found")
	}
	delete(r.db.folders, folderID)
	for id, n := range r.db.notes {
		if n.FolderID != nil && *n.FolderID == folderID {
			n.FolderID = nil
			r.db.notes[id] = n
		}
	}
	return nil
}

type MemNotes struct{ db *MemDB }

func (r *MemNotes) ownsFolder(userID, folderID int64) bool {
	f, ok := r.db.folders[folderID]
	return ok && f.UserID == userID
}

func (r *MemNotes) List(_ context.Context, userID int64, filter domain.FolderFilter) ([]domain.Note, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []domain.Note{}
	for _, n := range r.db.notes {
		if n.UserID != userID {
			continue
		}
		switch filter.Mode {
		case domain.FilterUnfiled:
			if n.FolderID != nil {
				continue
			}
		case domain.FilterFolder:
			if n.FolderID == nil || *n.FolderID != filter.FolderID {
				continue
			}
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *MemNotes) Get(_ context.Context, userID, noteID int64) (*domain.Note, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n, ok := r.db.notes[noteID]
	if !ok || n.UserID != userID {
		return nil, domain.NotFound("Note not found")
	}
	return &n, nil
}

func (r *MemNotes) Create(_ context.Context, userID int64, title, content string, folderID *int64) (*domain.Note, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if folderID != nil && !r.ownsFolder(userID, *folderID) {
		return nil, domain.NotFound("Folder not found")
	}
	now := r.db.tick()
	n := domain.Note{ID: r.db.nextID(), UserID: userID, Title: title, Content: content, CreatedAt: now, UpdatedAt: now}
	if folderID != nil {
		id := *folderID
		n.FolderID = &id
	}
	r.db.notes[n.ID] = n
	return &n, nil
}

func (r *MemNotes) Update(_ context.Context, userID, noteID int64, upd domain.NoteUpdate) (*domain.Note, error) {
	if upd.Empty() {
		return nil, domain.Validation("No fields to update")
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n, ok := r.db.notes[noteID]
	if !ok || n.UserID != userID {
		return nil, domain.NotFound("Note not found")
	}
	if upd.Folder.ID != nil && !r.ownsFolder(userID, *upd.Folder.ID) {
		return nil, domain.NotFound("Folder not found")
	}
	if upd.Title != nil {
		n.Title = *upd.Title
	}
	if upd.Content != nil {
		n.Content = *upd.Content
	}
	if upd.Folder.Set {
		n.FolderID = nil
		if upd.Folder.ID != nil {
			id := *upd.Folder.ID
			n.FolderID = &id
		}
	}
	n.UpdatedAt = r.db.tick()
	r.db.notes[noteID] = n
	return &n, nil
}

func (r *MemNotes) Delete(_ context.Context, userID, noteID int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n, ok := r.db.notes[noteID]
	if !ok || n.UserID != userID {
		return domain.NotFound("Note not found")
	}
	delete(r.db.notes, noteID)
	return nil
}
