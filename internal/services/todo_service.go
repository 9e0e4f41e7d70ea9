package services

import (
	"context"
	"time"

	"todoapp/backend/internal/models"
	"todoapp/backend/internal/todo"
)

// TodoService はTodo関連のビジネスロジックを扱います。
type TodoService struct {
	store todo.Store
	now   func() time.Time
}

// NewTodoService は新しいTodoServiceを作成します。
func NewTodoService(store todo.Store) *TodoService {
	return &TodoService{store: store, now: time.Now}
}

// WithClock は時刻の取得元を差し替えたサービスを返します (テスト用)。
func (s *TodoService) WithClock(now func() time.Time) *TodoService {
	return &TodoService{store: s.store, now: now}
}

// timestamp はデータベースの精度 (マイクロ秒) に揃えた現在時刻を返します。
func (s *TodoService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// CreateTodo は入力を検証して新しいTodoを作成します。
// status 省略時は "todo"、description 省略時は空文字になり、created_at と updated_at は同じ時刻です。
func (s *TodoService) CreateTodo(ctx context.Context, in *models.TodoInput) (*todo.Todo, error) {
	in.Normalize()
	if err := in.Validate(false); err != nil {
		return nil, err
	}

	now := s.timestamp()
	t := &todo.Todo{
		Status:    todo.StatusTodo,
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.ApplyTo(t)
	return s.store.Create(ctx, t)
}

// GetTodos は条件に合うTodoを登録順に取得します。
func (s *TodoService) GetTodos(ctx context.Context, f todo.Filter) ([]*todo.Todo, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, models.NewFieldError("status", models.InvalidChoiceMessage(string(f.Status)))
	}
	return s.store.FindAll(ctx, f)
}

// GetTodoByID は指定IDのTodoを取得します。
func (s *TodoService) GetTodoByID(ctx context.Context, id int64) (*todo.Todo, error) {
	return s.store.FindByID(ctx, id)
}

// UpdateTodo はTodoを更新します。partial が true の場合は PATCH (部分更新) として扱います。
// updated_at は必ず前回の値より後になり、created_at は変更されません。
func (s *TodoService) UpdateTodo(ctx context.Context, id int64, in *models.TodoInput, partial bool) (*todo.Todo, error) {
	in.Normalize()
	if err := in.Validate(partial); err != nil {
		// 存在しないIDへの更新は検証より先に not found を返す
		if _, findErr := s.store.FindByID(ctx, id); findErr != nil {
			return nil, findErr
		}
		return nil, err
	}

	return s.store.Update(ctx, id, func(t *todo.Todo) error {
		in.ApplyTo(t)
		t.UpdatedAt = s.nextUpdatedAt(t.UpdatedAt)
		return nil
	})
}

func (s *TodoService) nextUpdatedAt(prev time.Time) time.Time {
	next := s.timestamp()
	if !next.After(prev) {
		next = prev.Add(time.Microsecond)
	}
	return next
}

// DeleteTodo はTodoを削除します。
func (s *TodoService) DeleteTodo(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}

// GetStats は状態ごとの件数を返します。
func (s *TodoService) GetStats(ctx context.Context) (map[todo.Status]int, error) {
	return s.store.CountByStatus(ctx)
}
