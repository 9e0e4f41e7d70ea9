package database

import (
	"context"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todoapp/backend/internal/config"
)

func TestGetDSN(t *testing.T) {
	cfg := config.Default()
	cfg.DBUser = "todo"
	cfg.DBPass = "secret"
	cfg.DBHost = "db"
	cfg.DBPort = "3307"
	cfg.DBName = "todos_test"

	dsn := GetDSN(cfg)

	parsed, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "todo", parsed.User)
	assert.Equal(t, "secret", parsed.Passwd)
	assert.Equal(t, "tcp", parsed.Net)
	assert.Equal(t, "db:3307", parsed.Addr)
	assert.Equal(t, "todos_test", parsed.DBName)
	assert.True(t, parsed.ParseTime)
	assert.Equal(t, time.UTC, parsed.Loc)
}

func TestOpenRedis_DisabledWithoutAddr(t *testing.T) {
	cfg := config.Default()
	assert.Nil(t, OpenRedis(context.Background(), cfg))
}
