package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"todoapp/backend/internal/todo"
)

// HealthHandler はヘルスチェック用のハンドラーです。
type HealthHandler struct {
	store     todo.Store
	startTime time.Time
}

// NewHealthHandler は新しいHealthHandlerを作成します。
func NewHealthHandler(store todo.Store) *HealthHandler {
	return &HealthHandler{store: store, startTime: time.Now()}
}

// Liveness はプロセスが生きていることだけを返します。
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness はデータベースに接続できるかを確認します。
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "Database connection failed",
			"error":    err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "Database connection is healthy",
		"uptime":   time.Since(h.startTime).Round(time.Second).String(),
	})
}
