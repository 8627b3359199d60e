// server/domain/note.go
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultFolderName = "New Folder"
	DefaultNoteTitle  = "Untitled Note"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Folder struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Note struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	FolderID  *int64    `json:"folder_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Identity is what a live session resolves to.
type Identity struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

type Session struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func (s *Session) Identity() Identity {
	return Identity{UserID: s.UserID, Username: s.Username}
}

// OptionalID distinguishes an omitted JSON field (Set == false) from an
// explicit null (Set == true, ID == nil) and from a concrete id.
type OptionalID struct {
	Set bool
	ID  *int64
}

func SomeID(id int64) OptionalID { return OptionalID{Set: true, ID: &id} }

func NullID() OptionalID { return OptionalID{Set: true} }

func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	o.ID = nil
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		id := int64(v)
		if float64(id) != v {
			return fmt.Errorf("folder id must be an integer")
		}
		o.ID = &id
	case string:
		if v == "" || v == "null" {
			return nil
		}
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("folder id must be an integer")
		}
		o.ID = &id
	default:
		return fmt.Errorf("folder id must be an integer or null")
	}
	return nil
}

// NoteUpdate carries a partial update; nil pointers and an unset Folder
// leave the stored values untouched.
type NoteUpdate struct {
	Title   *string
	Content *string
	Folder  OptionalID
}

func (u NoteUpdate) Empty() bool {
	return u.Title == nil && u.Content == nil && !u.Folder.Set
}

type FilterMode int

const (
	FilterUnfiled FilterMode = iota
	FilterAll
	FilterFolder
)

type FolderFilter struct {
	Mode     FilterMode
	FolderID int64
}

// ParseFolderFilter reads the folderId query value. Empty and "null" select
// notes outside any folder, "all" selects every note.
func ParseFolderFilter(raw string) (FolderFilter, error) {
	raw = strings.TrimSpace(raw)
	switch strings.ToLower(raw) {
	case "", "null":
		return FolderFilter{Mode: FilterUnfiled}, nil
	case "all":
		return FolderFilter{Mode: FilterAll}, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return FolderFilter{}, Validation("invalid folderId")
	}
	return FolderFilter{Mode: FilterFolder, FolderID: id}, nil
}
