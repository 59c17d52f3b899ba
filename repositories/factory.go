package repositories

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
}

// OpenSQLite opens (or creates) a SQLite database. A single connection keeps
// writers from tripping over SQLITE_BUSY.
func OpenSQLite(dsn string) (*GormRepository, error) {
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return NewGormRepository(db)
}

func OpenPostgres(dsn string) (*GormRepository, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres database: %w", err)
	}
	return NewGormRepository(db)
}

// Open picks a backend from the URL scheme: sqlite://path, postgres://...,
// postgresql://... or memory://.
func Open(ctx context.Context, databaseURL string) (Repository, error) {
	// SQLite DSNs ("file:x?mode=memory") are not valid URLs, so only the
	// scheme is split off here.
	scheme, rest, ok := strings.Cut(databaseURL, "://")
	if !ok {
		return nil, fmt.Errorf("database url %q has no scheme", databaseURL)
	}

	switch scheme {
	case "memory":
		return NewInMemoryRepository(), nil
	case "sqlite":
		if rest == "" {
			return nil, fmt.Errorf("sqlite database url %q has no path", databaseURL)
		}
		repo, err := OpenSQLite(rest)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case "postgres", "postgresql":
		if _, err := url.Parse(databaseURL); err != nil {
			return nil, fmt.Errorf("failed to parse database url: %w", err)
		}
		repo, err := OpenPostgres(databaseURL)
		if err != nil {
			return nil, err
		}
		if err := repo.DB.WithContext(ctx).Exec("SELECT 1").Error; err != nil {
			repo.Close()
			return nil, fmt.Errorf("failed to reach postgres: %w", err)
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown database type %q", scheme)
	}
}
