package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"

	"profile-service/pkg/logger"
)

const connectAttempts = 30

// DB wraps a pgx connection pool.
type DB struct {
	Pool *pgxpool.Pool
	dsn  string
	log  logger.ILogger
}

// Connect opens a connection pool with retry logic.
func Connect(ctx context.Context, dsn string, maxConns int32, log logger.ILogger) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	var pool *pgxpool.Pool
	for i := 0; i < connectAttempts; i++ {
		pool, err = pgxpool.NewWithConfig(ctx, cfg.Copy())
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				log.Info("connected to PostgreSQL")
				return &DB{Pool: pool, dsn: dsn, log: log}, nil
			}
			pool.Close()
		}
		log.Warning("waiting for PostgreSQL",
			logger.Int("attempt", i+1), logger.Int("of", connectAttempts), logger.Error(err))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	return nil, fmt.Errorf("postgres: failed after %d attempts: %w", connectAttempts, err)
}

// RunMigrations applies every pending up migration found in migrationFS.
func (d *DB) RunMigrations(migrationFS fs.FS) error {
	src, err := iofs.New(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("migrations source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(d.dsn))
	if err != nil {
		return fmt.Errorf("migrations init: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			d.log.Info("no migrations to apply")
			return nil
		}
		return fmt.Errorf("migrations up: %w", err)
	}

	version, _, _ := m.Version()
	d.log.Info("migrations applied", logger.Int64("version", int64(version)))
	return nil
}

// migrateURL switches a postgres:// DSN to the scheme of the pgx/v5 driver.
func migrateURL(dsn string) string {
	for _, scheme := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(dsn, scheme) {
			return "pgx5://" + strings.TrimPrefix(dsn, scheme)
		}
	}
	return dsn
}

// Close shuts down the pool.
func (d *DB) Close() { d.Pool.Close() }
