package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	"todoapp/backend/internal/config"
	"todoapp/backend/internal/database"
	"todoapp/backend/internal/logger"
	"todoapp/backend/internal/models"
	"todoapp/backend/internal/routes"
	"todoapp/backend/internal/todo"
)

// SetupTestRouter はメモリ上のストアを使うテスト用のGinルーターを返します。
func SetupTestRouter(t *testing.T) (*gin.Engine, *MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.InitWithWriter(io.Discard, "error", "text")

	store := NewMemoryStore()
	r := routes.SetupRouter(store, config.Default(), nil)
	return r, store
}

// SetupTestDB はテスト用の MySQL に接続し、todos テーブルを空の状態で用意します。
// TEST_DB_HOST が設定されていない場合はテストをスキップします。
func SetupTestDB(t *testing.T) (*sql.DB, *todo.Repository) {
	t.Helper()
	_ = godotenv.Load("../../.env")

	if os.Getenv("TEST_DB_HOST") == "" {
		t.Skip("TEST_DB_HOST not set; skipping MySQL integration test")
	}

	cfg := config.Default()
	cfg.DBUser = os.Getenv("TEST_DB_USER")
	cfg.DBPass = os.Getenv("TEST_DB_PASS")
	cfg.DBHost = os.Getenv("TEST_DB_HOST")
	if port := os.Getenv("TEST_DB_PORT"); port != "" {
		cfg.DBPort = port
	}
	cfg.DBName = os.Getenv("TEST_DB_NAME")

	db, err := sql.Open("mysql", database.GetDSN(cfg))
	require.NoError(t, err, "Failed to open database connection")
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Ping(), "Failed to ping database")

	repo := todo.NewRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.EnsureSchema(ctx))
	// テストのたびにクリーンな状態にする (AUTO_INCREMENT もリセットされる)
	_, err = db.ExecContext(ctx, "TRUNCATE TABLE todos")
	require.NoError(t, err)

	return db, repo
}

// SetupTestPool はテスト用の PostgreSQL に接続し、todos テーブルを空の状態で用意します。
// TEST_DATABASE_URL が設定されていない場合はテストをスキップします。
func SetupTestPool(t *testing.T) (*pgxpool.Pool, *todo.PGRepository) {
	t.Helper()
	_ = godotenv.Load("../../.env")

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping PostgreSQL integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, pool.Ping(ctx))

	repo := todo.NewPGRepository(pool)
	require.NoError(t, repo.EnsureSchema(ctx))
	_, err = pool.Exec(ctx, "TRUNCATE TABLE todos RESTART IDENTITY")
	require.NoError(t, err)

	return pool, repo
}

// DoJSON は body を JSON にしてリクエストを送り、レスポンスを返します。body が nil の場合は送りません。
func DoJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			payload, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewBuffer(payload)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

// CreateTestTodo はAPI経由でTODOを作成し、レスポンスを返します。
func CreateTestTodo(t *testing.T, router http.Handler, payload map[string]any) models.TodoResponse {
	t.Helper()

	resp := DoJSON(t, router, http.MethodPost, "/api/todos/", payload)
	require.Equal(t, http.StatusCreated, resp.Code, "TODO作成に失敗しました: %s", resp.Body.String())

	var created models.TodoResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	return created
}
