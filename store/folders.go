// server/store/folders.go
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ViniZap4/nohtz-server/domain"
)

type Folders struct {
	pool *pgxpool.Pool
}

func NewFolders(pool *pgxpool.Pool) *Folders {
	return &Folders{pool: pool}
}

func (r *Folders) List(ctx context.Context, userID int64) ([]domain.Folder, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, name, created_at FROM folders
		 WHERE user_id = $1 ORDER BY created_at ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	folders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Folder, error) {
		var f domain.Folder
		err := row.Scan(&f.ID, &f.UserID, &f.Name, &f.CreatedAt)
		return f, err
	})
	if err != nil {
		return nil, err
	}
	if folders == nil {
		folders = []domain.Folder{}
	}
	return folders, nil
}

func (r *Folders) Create(ctx context.Context, userID int64, name string) (*domain.Folder, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var f domain.Folder
	err := r.pool.QueryRow(ctx,
		`INSERT INTO folders (user_id, name) VALUES ($1, $2)
		 RETURNING id, user_id, name, created_at`,
		userID, name,
	).Scan(&f.ID, &f.UserID, &f.Name, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Delete removes an owned folder in one statement. Notes inside it are
// unfiled by the ON DELETE SET NULL foreign key.
func (r *Folders) Delete(ctx context.Context, userID, folderID int64) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM folders WHERE id = $1 AND user_id = $2`, folderID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("Folder not found")
	}
	return nil
}
