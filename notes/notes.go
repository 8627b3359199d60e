// server/notes/notes.go
package notes

import (
	"context"
	"strings"

	"github.com/ViniZap4/nohtz-server/domain"
	"github.com/ViniZap4/nohtz-server/export"
	"github.com/ViniZap4/nohtz-server/ws"
)

func (s *Service) ListNotes(ctx context.Context, userID int64, filter domain.FolderFilter) ([]domain.Note, error) {
	notes, err := s.notes.List(ctx, userID, filter)
	if err != nil {
		return nil, classify(err)
	}
	return notes, nil
}

func (s *Service) GetNote(ctx context.Context, userID, noteID int64) (*domain.Note, error) {
	note, err := s.notes.Get(ctx, userID, noteID)
	if err != nil {
		return nil, classify(err)
	}
	return note, nil
}

func (s *Service) CreateNote(ctx context.Context, userID int64, title string, folderID *int64) (*domain.Note, error) {
	return s.create(ctx, userID, title, "", folderID)
}

func (s *Service) create(ctx context.Context, userID int64, title, content string, folderID *int64) (*domain.Note, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = domain.DefaultNoteTitle
	}
	note, err := s.notes.Create(ctx, userID, title, content, folderID)
	if err != nil {
		return nil, classify(err)
	}
	s.publish(userID, ws.Message{Type: ws.NoteCreated, ID: note.ID, Note: note})
	return note, nil
}

// UpdateNote applies a partial update. An update with no fields is rejected
// before anything is written.
func (s *Service) UpdateNote(ctx context.Context, userID, noteID int64, upd domain.NoteUpdate) (*domain.Note, error) {
	if upd.Empty() {
		return nil, domain.Validation("No fields to update")
	}
	note, err := s.notes.Update(ctx, userID, noteID, upd)
	if err != nil {
		return nil, classify(err)
	}
	s.publish(userID, ws.Message{Type: ws.NoteUpdated, ID: note.ID, Note: note})
	return note, nil
}

func (s *Service) DeleteNote(ctx context.Context, userID, noteID int64) error {
	if err := s.notes.Delete(ctx, userID, noteID); err != nil {
		return classify(err)
	}
	s.publish(userID, ws.Message{Type: ws.NoteDeleted, ID: noteID})
	return nil
}

// ExportNote renders an owned note as a frontmatter document.
func (s *Service) ExportNote(ctx context.Context, userID, noteID int64) (*domain.Note, []byte, error) {
	note, err := s.GetNote(ctx, userID, noteID)
	if err != nil {
		return nil, nil, err
	}

	var folderName string
	if note.FolderID != nil {
		folders, err := s.ListFolders(ctx, userID)
		if err != nil {
			return nil, nil, err
		}
		for _, f := range folders {
			if f.ID == *note.FolderID {
				folderName = f.Name
				break
			}
		}
	}

	data, err := export.Render(note, folderName)
	if err != nil {
		return nil, nil, domain.Internal(err)
	}
	return note, data, nil
}

// ImportNote creates a note from a document produced by ExportNote. The
// document's id and timestamps are not reused.
func (s *Service) ImportNote(ctx context.Context, userID int64, data []byte, folderID *int64) (*domain.Note, error) {
	doc := export.Parse(data)
	return s.create(ctx, userID, doc.Title, doc.Body, folderID)
}
