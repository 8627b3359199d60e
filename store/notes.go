// server/store/notes.go
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ViniZap4/nohtz-server/domain"
)

const noteColumns = `id, user_id, folder_id, title, content, created_at, updated_at`

type Notes struct {
	pool *pgxpool.Pool
}

func NewNotes(pool *pgxpool.Pool) *Notes {
	return &Notes{pool: pool}
}

func scanNote(row pgx.Row) (domain.Note, error) {
	var n domain.Note
	err := row.Scan(&n.ID, &n.UserID, &n.FolderID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}

func (r *Notes) List(ctx context.Context, userID int64, filter domain.FolderFilter) ([]domain.Note, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT ` + noteColumns + ` FROM notes WHERE user_id = $1`
	args := []any{userID}
	switch filter.Mode {
	case domain.FilterUnfiled:
		query += ` AND folder_id IS NULL`
	case domain.FilterFolder:
		query += ` AND folder_id = $2`
		args = append(args, filter.FolderID)
	}
	query += ` ORDER BY updated_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	notes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Note, error) {
		return scanNote(row)
	})
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []domain.Note{}
	}
	return notes, nil
}

func (r *Notes) Get(ctx context.Context, userID, noteID int64) (*domain.Note, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	n, err := scanNote(r.pool.QueryRow(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = $1 AND user_id = $2`, noteID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("Note not found")
		}
		return nil, err
	}
	return &n, nil
}

// Create inserts a note. When folderID is set, the insert only happens if
// that folder belongs to the user, in the same statement.
func (r *Notes) Create(ctx context.Context, userID int64, title, content string, folderID *int64) (*domain.Note, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	n, err := scanNote(r.pool.QueryRow(ctx,
		`INSERT INTO notes (user_id, folder_id, title, content)
		 SELECT $1::bigint, $2::bigint, $3::text, $4::text
		 WHERE $2::bigint IS NULL
		    OR EXISTS (SELECT 1 FROM folders WHERE id = $2::bigint AND user_id = $1::bigint)
		 RETURNING `+noteColumns,
		userID, folderID, title, content,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("Folder not found")
		}
		return nil, err
	}
	return &n, nil
}

// Update applies only the fields present in upd. Ownership of the note and
// of a new target folder is part of the UPDATE's WHERE clause.
func (r *Notes) Update(ctx context.Context, userID, noteID int64, upd domain.NoteUpdate) (*domain.Note, error) {
	if upd.Empty() {
		return nil, domain.Validation("No fields to update")
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	args := []any{noteID, userID}
	sets := make([]string, 0, 4)
	where := []string{"id = $1", "user_id = $2"}
	param := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if upd.Title != nil {
		sets = append(sets, "title = "+param(*upd.Title))
	}
	if upd.Content != nil {
		sets = append(sets, "content = "+param(*upd.Content))
	}
	if upd.Folder.Set {
		if upd.Folder.ID == nil {
			sets = append(sets, "folder_id = NULL")
		} else {
			p := param(*upd.Folder.ID)
			sets = append(sets, "folder_id = "+p)
			where = append(where, "EXISTS (SELECT 1 FROM folders WHERE id = "+p+" AND user_id = $2)")
		}
	}
	sets = append(sets, "updated_at = now()")

	query := `UPDATE notes SET ` + strings.Join(sets, ", ") +
		` WHERE ` + strings.Join(where, " AND ") +
		` RETURNING ` + noteColumns

	n, err := scanNote(r.pool.QueryRow(ctx, query, args...))
	if err == nil {
		return &n, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if upd.Folder.ID != nil {
		// Nothing changed; only the message depends on which check failed.
		if _, getErr := r.Get(ctx, userID, noteID); getErr == nil {
			return nil, domain.NotFound("Folder not found")
		}
	}
	return nil, domain.NotFound("Note not found")
}

func (r *Notes) Delete(ctx context.Context, userID, noteID int64) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM notes WHERE id = $1 AND user_id = $2`, noteID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("Note not found")
	}
	return nil
}
