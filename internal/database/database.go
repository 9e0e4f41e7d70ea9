package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"todoapp/backend/internal/config"
	"todoapp/backend/internal/logger"
	"todoapp/backend/internal/todo"
)

// GetDSN は設定からMySQL接続文字列 (DSN) を構築します。
func GetDSN(cfg *config.Config) string {
	mc := mysql.NewConfig()
	mc.User = cfg.DBUser
	mc.Passwd = cfg.DBPass
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.DBHost, cfg.DBPort)
	mc.DBName = cfg.DBName
	mc.ParseTime = true
	mc.Loc = time.UTC
	return mc.FormatDSN()
}

// InitDB はMySQLへの接続を初期化します。
func InitDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("mysql", GetDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logger.Info("connected to MySQL", "addr", net.JoinHostPort(cfg.DBHost, cfg.DBPort), "db", cfg.DBName)
	return db, nil
}

// InitPool はPostgreSQLの接続プールを初期化します。
func InitPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logger.Info("connected to PostgreSQL")
	return pool, nil
}

// OpenStore は DB_DRIVER に応じた todo.Store を開き、テーブルを用意します。
// 戻り値の close で接続を閉じます。
func OpenStore(ctx context.Context, cfg *config.Config) (todo.Store, func(), error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		pool, err := InitPool(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		repo := todo.NewPGRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repo, pool.Close, nil
	default:
		db, err := InitDB(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		repo := todo.NewRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return repo, func() { db.Close() }, nil
	}
}

// OpenRedis はレート制限用のRedisクライアントを作成します。
// REDIS_ADDR 未設定、または接続できない場合は nil を返します (レート制限なしで起動)。
func OpenRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, rate limiting disabled", "addr", cfg.RedisAddr, "error", err)
		client.Close()
		return nil
	}
	logger.Info("connected to Redis", "addr", cfg.RedisAddr)
	return client
}
