package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todoapp/backend/internal/models"
	"todoapp/backend/internal/services"
	"todoapp/backend/internal/todo"
	"todoapp/backend/testutil"
)

func ptr[T any](v T) *T { return &v }

// fixedClock は常に同じ時刻を返します。updated_at の単調増加を確認するために使います。
func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func newService(t *testing.T, now func() time.Time) (*services.TodoService, *testutil.MemoryStore) {
	t.Helper()
	store := testutil.NewMemoryStore()
	return services.NewTodoService(store).WithClock(now), store
}

func TestCreateTodo_Defaults(t *testing.T) {
	at := time.Date(2026, 10, 17, 12, 0, 0, 123456789, time.UTC)
	svc, _ := newService(t, fixedClock(at))

	created, err := svc.CreateTodo(context.Background(), &models.TodoInput{Title: ptr("  Buy milk  ")})
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.Equal(t, "Buy milk", created.Title)
	assert.Equal(t, "", created.Description)
	assert.Equal(t, todo.StatusTodo, created.Status)
	assert.Equal(t, at.Truncate(time.Microsecond), created.CreatedAt)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
}

func TestCreateTodo_StatusOverride(t *testing.T) {
	svc, _ := newService(t, time.Now)

	created, err := svc.CreateTodo(context.Background(), &models.TodoInput{
		Title:       ptr("Ship release"),
		Description: ptr("v1.2"),
		Status:      ptr(todo.StatusInProgress),
	})
	require.NoError(t, err)
	assert.Equal(t, todo.StatusInProgress, created.Status)
	assert.Equal(t, "v1.2", created.Description)
}

func TestCreateTodo_ValidationErrorDoesNotPersist(t *testing.T) {
	svc, store := newService(t, time.Now)

	_, err := svc.CreateTodo(context.Background(), &models.TodoInput{Status: ptr(todo.Status("bogus"))})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)

	all, err := store.FindAll(context.Background(), todo.Filter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpdateTodo_TimestampsStrictlyIncrease(t *testing.T) {
	at := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	svc, _ := newService(t, fixedClock(at))
	ctx := context.Background()

	created, err := svc.CreateTodo(ctx, &models.TodoInput{Title: ptr("Buy milk")})
	require.NoError(t, err)
	createdAt := created.CreatedAt

	prev := created.UpdatedAt
	for i := 0; i < 3; i++ {
		updated, err := svc.UpdateTodo(ctx, created.ID, &models.TodoInput{Status: ptr(todo.StatusDone)}, true)
		require.NoError(t, err)
		assert.True(t, updated.UpdatedAt.After(prev), "updated_at must strictly increase")
		assert.Equal(t, createdAt, updated.CreatedAt)
		prev = updated.UpdatedAt
	}
}

func TestUpdateTodo_UsesClockWhenAhead(t *testing.T) {
	current := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	svc, _ := newService(t, func() time.Time { return current })
	ctx := context.Background()

	created, err := svc.CreateTodo(ctx, &models.TodoInput{Title: ptr("Buy milk")})
	require.NoError(t, err)

	current = current.Add(time.Hour)
	updated, err := svc.UpdateTodo(ctx, created.ID, &models.TodoInput{Title: ptr("Buy oat milk")}, false)
	require.NoError(t, err)
	assert.Equal(t, current, updated.UpdatedAt)
	assert.Equal(t, "Buy oat milk", updated.Title)
}

func TestUpdateTodo_FullVersusPartial(t *testing.T) {
	svc, _ := newService(t, time.Now)
	ctx := context.Background()

	created, err := svc.CreateTodo(ctx, &models.TodoInput{Title: ptr("Buy milk"), Description: ptr("2 litres")})
	require.NoError(t, err)

	_, err = svc.UpdateTodo(ctx, created.ID, &models.TodoInput{Status: ptr(todo.StatusDone)}, false)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr, "PUT without title must fail")
	assert.Contains(t, verr.Fields, "title")

	patched, err := svc.UpdateTodo(ctx, created.ID, &models.TodoInput{Status: ptr(todo.StatusArchived)}, true)
	require.NoError(t, err)
	assert.Equal(t, todo.StatusArchived, patched.Status)
	assert.Equal(t, "Buy milk", patched.Title)
	assert.Equal(t, "2 litres", patched.Description)

	// どの状態からどの状態へも遷移できる
	back, err := svc.UpdateTodo(ctx, created.ID, &models.TodoInput{Status: ptr(todo.StatusTodo)}, true)
	require.NoError(t, err)
	assert.Equal(t, todo.StatusTodo, back.Status)
}

func TestUpdateTodo_NotFound(t *testing.T) {
	svc, _ := newService(t, time.Now)

	_, err := svc.UpdateTodo(context.Background(), 42, &models.TodoInput{Title: ptr("x")}, false)
	require.ErrorIs(t, err, todo.ErrTodoNotFound)

	_, err = svc.UpdateTodo(context.Background(), 42, &models.TodoInput{}, false)
	require.ErrorIs(t, err, todo.ErrTodoNotFound, "unknown id wins over validation")
}

func TestDeleteTodo_Twice(t *testing.T) {
	svc, _ := newService(t, time.Now)
	ctx := context.Background()

	created, err := svc.CreateTodo(ctx, &models.TodoInput{Title: ptr("Buy milk")})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTodo(ctx, created.ID))
	require.ErrorIs(t, svc.DeleteTodo(ctx, created.ID), todo.ErrTodoNotFound)

	_, err = svc.GetTodoByID(ctx, created.ID)
	require.ErrorIs(t, err, todo.ErrTodoNotFound)
}

func TestGetTodos_InvalidStatusFilter(t *testing.T) {
	svc, _ := newService(t, time.Now)

	_, err := svc.GetTodos(context.Background(), todo.Filter{Status: "bogus"})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "status")
}

func TestGetStats(t *testing.T) {
	svc, _ := newService(t, time.Now)
	ctx := context.Background()

	for _, s := range []todo.Status{todo.StatusTodo, todo.StatusTodo, todo.StatusDone} {
		_, err := svc.CreateTodo(ctx, &models.TodoInput{Title: ptr("t"), Status: ptr(s)})
		require.NoError(t, err)
	}

	counts, err := svc.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[todo.StatusTodo])
	assert.Equal(t, 1, counts[todo.StatusDone])
	assert.Equal(t, 0, counts[todo.StatusArchived])
}
