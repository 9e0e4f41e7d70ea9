package testutil

import (
	"context"
	"sync"

	"todoapp/backend/internal/todo"
)

// MemoryStore はテスト用のメモリ上の todo.Store 実装です。
// ID は単調増加し、削除後も再利用されません。
type MemoryStore struct {
	mu      sync.Mutex
	nextID  int64
	todos   map[int64]todo.Todo
	order   []int64
	PingErr error
}

// NewMemoryStore は空のMemoryStoreを作成します。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, todos: map[int64]todo.Todo{}}
}

func (s *MemoryStore) Create(ctx context.Context, t *todo.Todo) (*todo.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = s.nextID
	s.nextID++
	s.todos[t.ID] = *t
	s.order = append(s.order, t.ID)
	return t, nil
}

func (s *MemoryStore) FindAll(ctx context.Context, f todo.Filter) ([]*todo.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*todo.Todo{}
	for _, id := range s.order {
		t, ok := s.todos[id]
		if !ok || !f.Matches(&t) {
			continue
		}
		out = append(out, &t)
	}
	return out, nil
}

func (s *MemoryStore) FindByID(ctx context.Context, id int64) (*todo.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.todos[id]
	if !ok {
		return nil, todo.ErrTodoNotFound
	}
	return &t, nil
}

func (s *MemoryStore) Update(ctx context.Context, id int64, fn func(*todo.Todo) error) (*todo.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.todos[id]
	if !ok {
		return nil, todo.ErrTodoNotFound
	}
	if err := fn(&t); err != nil {
		return nil, err
	}
	s.todos[id] = t
	return &t, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.todos[id]; !ok {
		return todo.ErrTodoNotFound
	}
	delete(s.todos, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) CountByStatus(ctx context.Context) (map[todo.Status]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := map[todo.Status]int{}
	for _, st := range todo.Statuses {
		counts[st] = 0
	}
	for _, t := range s.todos {
		counts[t.Status]++
	}
	return counts, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return s.PingErr
}
