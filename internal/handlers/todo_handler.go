package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"todoapp/backend/internal/logger"
	"todoapp/backend/internal/models"
	"todoapp/backend/internal/services"
	"todoapp/backend/internal/todo"
)

// TodoHandler はTodo関連のハンドラーを管理します。
type TodoHandler struct {
	todoService *services.TodoService
}

// NewTodoHandler は新しいTodoHandlerを作成します。
func NewTodoHandler(todoService *services.TodoService) *TodoHandler {
	return &TodoHandler{todoService: todoService}
}

// parseID はパスの :id を取り出します。数値でない・1未満の ID は存在しないものとして扱います。
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
		return 0, false
	}
	return id, true
}

// respondError はサービス層のエラーをHTTPレスポンスに変換します。
func respondError(c *gin.Context, err error, action string) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "fields": verr.Fields})
	case errors.Is(err, todo.ErrTodoNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
	default:
		logger.Error("failed to "+action, "error", err, "request_id", c.GetString("request_id"))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}

// GetTodosHandler はTodoリストを取得します。?status= と ?search= で絞り込めます。
func (h *TodoHandler) GetTodosHandler(c *gin.Context) {
	filter := todo.Filter{
		Status: todo.Status(c.Query("status")),
		Search: c.Query("search"),
	}

	todos, err := h.todoService.GetTodos(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "fetch todos")
		return
	}
	c.JSON(http.StatusOK, models.NewTodoResponses(todos))
}

// CreateTodoHandler は新しいTodoを作成します。
func (h *TodoHandler) CreateTodoHandler(c *gin.Context) {
	var in models.TodoInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	created, err := h.todoService.CreateTodo(c.Request.Context(), &in)
	if err != nil {
		respondError(c, err, "save todo to database")
		return
	}
	c.JSON(http.StatusCreated, models.NewTodoResponse(created))
}

// GetTodoByIDHandler は指定IDのTodoを取得します。
func (h *TodoHandler) GetTodoByIDHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	t, err := h.todoService.GetTodoByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "fetch todo")
		return
	}
	c.JSON(http.StatusOK, models.NewTodoResponse(t))
}

// UpdateTodoHandler はTodoを更新します (PUT)。
func (h *TodoHandler) UpdateTodoHandler(c *gin.Context) {
	h.update(c, false)
}

// PatchTodoHandler はTodoを部分更新します (PATCH)。
func (h *TodoHandler) PatchTodoHandler(c *gin.Context) {
	h.update(c, true)
}

func (h *TodoHandler) update(c *gin.Context, partial bool) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var in models.TodoInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	updated, err := h.todoService.UpdateTodo(c.Request.Context(), id, &in, partial)
	if err != nil {
		respondError(c, err, "update todo")
		return
	}
	c.JSON(http.StatusOK, models.NewTodoResponse(updated))
}

// DeleteTodoHandler はTodoを削除します。
func (h *TodoHandler) DeleteTodoHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.todoService.DeleteTodo(c.Request.Context(), id); err != nil {
		respondError(c, err, "delete todo")
		return
	}
	c.Status(http.StatusNoContent)
}

// GetTodoStatsHandler は状態ごとの件数を返します。
func (h *TodoHandler) GetTodoStatsHandler(c *gin.Context) {
	counts, err := h.todoService.GetStats(c.Request.Context())
	if err != nil {
		respondError(c, err, "fetch todo stats")
		return
	}
	c.JSON(http.StatusOK, models.NewTodoStatsResponse(counts))
}
