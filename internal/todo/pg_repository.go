package todo

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"todoapp/backend/internal/logger"
)

const pgSchema = `
	CREATE TABLE IF NOT EXISTS todos (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		title VARCHAR(200) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL DEFAULT 'todo'
			CHECK (status IN ('todo', 'in_progress', 'done', 'archived')),
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);`

// PGRepository は PostgreSQL (pgxpool) 版の Store 実装です。
type PGRepository struct {
	Pool *pgxpool.Pool
}

// NewPGRepository は新しいPGRepositoryを作成します。
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{Pool: pool}
}

func (r *PGRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.Pool.Exec(ctx, pgSchema); err != nil {
		return fmt.Errorf("could not create todos table: %w", err)
	}
	return nil
}

func (r *PGRepository) Create(ctx context.Context, t *Todo) (*Todo, error) {
	query := `INSERT INTO todos (title, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`

	err := r.Pool.QueryRow(ctx, query, t.Title, t.Description, string(t.Status), t.CreatedAt, t.UpdatedAt).Scan(&t.ID)
	if err != nil {
		logger.Error("failed to insert todo", "error", err)
		return nil, fmt.Errorf("could not insert todo: %w", err)
	}
	return t, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f Filter) ([]*Todo, error) {
	where, args := f.whereClause(func(n int) string { return "$" + strconv.Itoa(n) }, "ILIKE")
	query := selectColumns + where + " ORDER BY id ASC"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("failed to query todos", "error", err)
		return nil, fmt.Errorf("could not query todos: %w", err)
	}
	defer rows.Close()

	todos := []*Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan todo: %w", err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating todos: %w", err)
	}
	return todos, nil
}

func (r *PGRepository) FindByID(ctx context.Context, id int64) (*Todo, error) {
	t, err := scanTodo(r.Pool.QueryRow(ctx, selectColumns+" WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		logger.Error("failed to query todo by ID", "id", id, "error", err)
		return nil, fmt.Errorf("could not query todo: %w", err)
	}
	return t, nil
}

func (r *PGRepository) Update(ctx context.Context, id int64, fn func(*Todo) error) (*Todo, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	t, err := scanTodo(tx.QueryRow(ctx, selectColumns+" WHERE id = $1 FOR UPDATE", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		logger.Error("failed to lock todo", "id", id, "error", err)
		return nil, fmt.Errorf("could not query todo: %w", err)
	}

	if err := fn(t); err != nil {
		return nil, err
	}

	query := "UPDATE todos SET title = $1, description = $2, status = $3, updated_at = $4 WHERE id = $5"
	if _, err := tx.Exec(ctx, query, t.Title, t.Description, string(t.Status), t.UpdatedAt, id); err != nil {
		logger.Error("failed to update todo", "id", id, "error", err)
		return nil, fmt.Errorf("could not update todo: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("could not commit todo update: %w", err)
	}
	return t, nil
}

func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.Pool.Exec(ctx, "DELETE FROM todos WHERE id = $1", id)
	if err != nil {
		logger.Error("failed to delete todo", "id", id, "error", err)
		return fmt.Errorf("could not delete todo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTodoNotFound
	}
	return nil
}

func (r *PGRepository) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := r.Pool.Query(ctx, "SELECT status, COUNT(*) FROM todos GROUP BY status")
	if err != nil {
		logger.Error("failed to count todos", "error", err)
		return nil, fmt.Errorf("could not count todos: %w", err)
	}
	defer rows.Close()

	counts := emptyCounts()
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("could not scan todo count: %w", err)
		}
		counts[Status(status)] = int(n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating todo counts: %w", err)
	}
	return counts, nil
}

func (r *PGRepository) Ping(ctx context.Context) error {
	return r.Pool.Ping(ctx)
}
