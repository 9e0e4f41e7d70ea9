// Package routesはroutingを行います。
package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"todoapp/backend/internal/config"
	"todoapp/backend/internal/handlers"
	"todoapp/backend/internal/services"
	"todoapp/backend/internal/todo"
)

// SetupRouter はGinルーターをセットアップし、すべてのエンドポイントを登録します。
// limiter が nil の場合レート制限は行いません。
func SetupRouter(store todo.Store, cfg *config.Config, limiter *RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware(), AccessLogMiddleware())

	// CORS対策
	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSAllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSAllowOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", RequestIDHeader}
	corsConfig.ExposeHeaders = []string{RequestIDHeader}
	r.Use(cors.New(corsConfig))

	// サービス
	todoService := services.NewTodoService(store)

	// ハンドラー
	todoHandler := handlers.NewTodoHandler(todoService)
	healthHandler := handlers.NewHealthHandler(store)

	// ルーティング
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/todos")
	api.Use(limiter.Middleware())
	{
		api.GET("/", todoHandler.GetTodosHandler)
		api.POST("/", todoHandler.CreateTodoHandler)
		api.GET("/stats/", todoHandler.GetTodoStatsHandler)
		api.GET("/:id/", todoHandler.GetTodoByIDHandler)
		api.PUT("/:id/", todoHandler.UpdateTodoHandler)
		api.PATCH("/:id/", todoHandler.PatchTodoHandler)
		api.DELETE("/:id/", todoHandler.DeleteTodoHandler)
	}

	return r
}
