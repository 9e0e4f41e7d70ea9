package todo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"todoapp/backend/internal/logger"
)

// mysqlSchema は todos テーブルの定義です。DATETIME(6) でマイクロ秒まで保持します。
const mysqlSchema = `
	CREATE TABLE IF NOT EXISTS todos (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(200) NOT NULL,
		description TEXT NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'todo',
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL
	) DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`

const selectColumns = "SELECT id, title, description, status, created_at, updated_at FROM todos"

// Repository は MySQL に対するデータベース操作を行うための構造体です。
type Repository struct {
	DB *sql.DB
}

// NewRepository は新しいRepositoryインスタンスを作成します。
func NewRepository(db *sql.DB) *Repository {
	return &Repository{DB: db}
}

// EnsureSchema は todos テーブルが無ければ作成します。
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, mysqlSchema); err != nil {
		return fmt.Errorf("could not create todos table: %w", err)
	}
	return nil
}

// Create は新しいTodoタスクをデータベースに挿入します。
// CreatedAt / UpdatedAt は呼び出し側で設定済みであることを前提とします。
func (r *Repository) Create(ctx context.Context, t *Todo) (*Todo, error) {
	query := "INSERT INTO todos (title, description, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)"

	result, err := r.DB.ExecContext(ctx, query, t.Title, t.Description, string(t.Status), t.CreatedAt, t.UpdatedAt)
	if err != nil {
		logger.Error("failed to insert todo", "error", err)
		return nil, fmt.Errorf("could not insert todo: %w", err)
	}

	// 自動採番されたIDを取得
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("could not get last insert ID: %w", err)
	}
	t.ID = id

	return t, nil
}

// FindAll は条件に合うTodoタスクを登録順 (id 昇順) に取得します。
func (r *Repository) FindAll(ctx context.Context, f Filter) ([]*Todo, error) {
	where, args := f.whereClause(func(int) string { return "?" }, "LIKE")
	query := selectColumns + where + " ORDER BY id ASC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error("failed to query todos", "error", err)
		return nil, fmt.Errorf("could not query todos: %w", err)
	}
	defer rows.Close()

	todos := []*Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			logger.Error("failed to scan todo", "error", err)
			return nil, fmt.Errorf("could not scan todo: %w", err)
		}
		todos = append(todos, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating todos: %w", err)
	}

	return todos, nil
}

// FindByID は指定されたIDのTodoタスクをデータベースから取得します。
func (r *Repository) FindByID(ctx context.Context, id int64) (*Todo, error) {
	t, err := scanTodo(r.DB.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		logger.Error("failed to query todo by ID", "id", id, "error", err)
		return nil, fmt.Errorf("could not query todo: %w", err)
	}
	return t, nil
}

// Update は指定されたIDのTodoタスクを行ロック付きで読み出し、fn を適用して保存します。
func (r *Repository) Update(ctx context.Context, id int64, fn func(*Todo) error) (*Todo, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	t, err := scanTodo(tx.QueryRowContext(ctx, selectColumns+" WHERE id = ? FOR UPDATE", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		logger.Error("failed to lock todo", "id", id, "error", err)
		return nil, fmt.Errorf("could not query todo: %w", err)
	}

	if err := fn(t); err != nil {
		return nil, err
	}

	query := "UPDATE todos SET title = ?, description = ?, status = ?, updated_at = ? WHERE id = ?"
	if _, err := tx.ExecContext(ctx, query, t.Title, t.Description, string(t.Status), t.UpdatedAt, id); err != nil {
		logger.Error("failed to update todo", "id", id, "error", err)
		return nil, fmt.Errorf("could not update todo: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit todo update: %w", err)
	}
	return t, nil
}

// Delete は指定されたIDのTodoタスクを削除します。
func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM todos WHERE id = ?", id)
	if err != nil {
		logger.Error("failed to delete todo", "id", id, "error", err)
		return fmt.Errorf("could not delete todo: %w", err)
	}

	// 削除された行数を確認
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrTodoNotFound
	}

	return nil
}

// CountByStatus は状態ごとの件数を返します。件数 0 の状態も含みます。
func (r *Repository) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT status, COUNT(*) FROM todos GROUP BY status")
	if err != nil {
		logger.Error("failed to count todos", "error", err)
		return nil, fmt.Errorf("could not count todos: %w", err)
	}
	defer rows.Close()

	counts := emptyCounts()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("could not scan todo count: %w", err)
		}
		counts[Status(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating todo counts: %w", err)
	}
	return counts, nil
}

// Ping はデータベースへの接続を確認します。
func (r *Repository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

// rowScanner は *sql.Row / *sql.Rows / pgx.Row の共通部分です。
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (*Todo, error) {
	var t Todo
	var status string
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Status = Status(status)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return &t, nil
}

func emptyCounts() map[Status]int {
	counts := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		counts[s] = 0
	}
	return counts
}
