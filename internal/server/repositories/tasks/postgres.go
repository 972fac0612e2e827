package tasks

import (
	"context"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/dbx"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
)

const taskColumns = `id, user_id, title, description, completed, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListByUser returns the user's tasks, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]models.Task, error) {
	query :=
		`SELECT ` + taskColumns + ` FROM tasks
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, dbx.MapError(err)
	}
	defer rows.Close()

	out := []models.Task{}
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt); err != nil {
			return nil, dbx.MapError(err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.MapError(err)
	}
	return out, nil
}

func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	query :=
		`INSERT INTO tasks (id, user_id, title, description, completed)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		task.ID, task.UserID, task.Title, task.Description, task.Completed).Scan(&task.CreatedAt)
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return task, nil
}

// Update applies the non-nil fields of patch.
func (r *PostgresRepository) Update(ctx context.Context, userID, id string, patch models.TaskPatch) (*models.Task, error) {
	query :=
		`UPDATE tasks SET
		   title = COALESCE($3, title),
		   description = COALESCE($4, description),
		   completed = COALESCE($5, completed)
		 WHERE id = $1 AND user_id = $2
		 RETURNING ` + taskColumns

	return r.scanOne(ctx, query, id, userID, patch.Title, patch.Description, patch.Completed)
}

// Toggle flips completed in a single statement.
func (r *PostgresRepository) Toggle(ctx context.Context, userID, id string) (*models.Task, error) {
	query :=
		`UPDATE tasks SET completed = NOT completed
		 WHERE id = $1 AND user_id = $2
		 RETURNING ` + taskColumns

	return r.scanOne(ctx, query, id, userID)
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	query := `DELETE FROM tasks WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return dbx.MapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return dbx.MapError(err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) scanOne(ctx context.Context, query string, args ...any) (*models.Task, error) {
	t := &models.Task{}
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt)
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return t, nil
}
