package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

type Config struct {
	Driver          string
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	MaxConns        int
	ConnMaxLifetime time.Duration
}

const (
	maxRetries = 10
	retryDelay = 2 * time.Second
)

func DSN(cfg Config) (string, error) {
	switch cfg.Driver {
	case "postgres":
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName), nil
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName), nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Open connects to the configured database, retrying while it comes up.
func Open(cfg Config, log *zap.Logger) (*sql.DB, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	for i := 1; i <= maxRetries; i++ {
		log.Info("connecting to database",
			zap.String("driver", cfg.Driver),
			zap.String("host", cfg.Host),
			zap.Int("attempt", i),
			zap.Int("max_attempts", maxRetries),
		)

		db, err = sql.Open(cfg.Driver, dsn)
		if err == nil {
			err = db.Ping()
		}

		if err == nil {
			configurePool(db, cfg)
			log.Info("database connected")
			return db, nil
		}

		if db != nil {
			_ = db.Close()
		}
		log.Warn("database not ready yet", zap.Duration("retry_in", retryDelay), zap.Error(err))
		time.Sleep(retryDelay)
	}

	return nil, fmt.Errorf("failed to connect to database: %w", err)
}

func configurePool(db *sql.DB, cfg Config) {
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
		db.SetMaxIdleConns(cfg.MaxConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
}
