// server/notes/service.go
package notes

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/ViniZap4/nohtz-server/domain"
	"github.com/ViniZap4/nohtz-server/ws"
)

type FolderRepository interface {
	List(ctx context.Context, userID int64) ([]domain.Folder, error)
	Create(ctx context.Context, userID int64, name string) (*domain.Folder, error)
	Delete(ctx context.Context, userID, folderID int64) error
}

type NoteRepository interface {
	List(ctx context.Context, userID int64, filter domain.FolderFilter) ([]domain.Note, error)
	Get(ctx context.Context, userID, noteID int64) (*domain.Note, error)
	Create(ctx context.Context, userID int64, title, content string, folderID *int64) (*domain.Note, error)
	Update(ctx context.Context, userID, noteID int64, upd domain.NoteUpdate) (*domain.Note, error)
	Delete(ctx context.Context, userID, noteID int64) error
}

type Publisher interface {
	Publish(userID int64, msg ws.Message)
}

// Service owns folder and note operations. Every call is scoped to userID;
// rows owned by someone else are reported as not found.
type Service struct {
	folders FolderRepository
	notes   NoteRepository
	events  Publisher
	logger  zerolog.Logger
}

func NewService(folders FolderRepository, notes NoteRepository, events Publisher, logger zerolog.Logger) *Service {
	return &Service{
		folders: folders,
		notes:   notes,
		events:  events,
		logger:  logger.With().Str("component", "notes").Logger(),
	}
}

// classify passes taxonomy errors through and wraps everything else as
// internal.
func classify(err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.Internal(err)
}

func (s *Service) publish(userID int64, msg ws.Message) {
	if s.events != nil {
		s.events.Publish(userID, msg)
	}
}
