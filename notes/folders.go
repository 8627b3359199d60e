// server/notes/folders.go
package notes

import (
	"context"
	"strings"

	"github.com/ViniZap4/nohtz-server/domain"
	"github.com/ViniZap4/nohtz-server/ws"
)

func (s *Service) ListFolders(ctx context.Context, userID int64) ([]domain.Folder, error) {
	folders, err := s.folders.List(ctx, userID)
	if err != nil {
		return nil, classify(err)
	}
	return folders, nil
}

func (s *Service) CreateFolder(ctx context.Context, userID int64, name string) (*domain.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = domain.DefaultFolderName
	}
	folder, err := s.folders.Create(ctx, userID, name)
	if err != nil {
		return nil, classify(err)
	}
	s.publish(userID, ws.Message{Type: ws.FolderCreated, ID: folder.ID, Folder: folder})
	return folder, nil
}

func (s *Service) DeleteFolder(ctx context.Context, userID, folderID int64) error {
	if err := s.folders.Delete(ctx, userID, folderID); err != nil {
		return classify(err)
	}
	s.logger.Debug().Int64("user_id", userID).Int64("folder_id", folderID).Msg("folder deleted")
	s.publish(userID, ws.Message{Type: ws.FolderDeleted, ID: folderID})
	return nil
}
