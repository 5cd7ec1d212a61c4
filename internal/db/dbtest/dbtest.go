// Package dbtest wires repository tests to a disposable Postgres database.
// Only _test.go files import it.
package dbtest

import (
	"context"
	"os"
	"time"

	"github.com/vasiliy-maslov/delivery-api/internal/config"
	"github.com/vasiliy-maslov/delivery-api/internal/db"
)

// ConfigFromEnv returns the Postgres settings read from the *_TEST
// variables. ok is false when DB_HOST_TEST is unset so callers can skip
// database-backed tests.
func ConfigFromEnv(migrationsPath string) (cfg config.PostgresConfig, ok bool) {
	host := os.Getenv("DB_HOST_TEST")
	if host == "" {
		return config.PostgresConfig{}, false
	}

	return config.PostgresConfig{
		Host:            host,
		Port:            envOr("DB_PORT_TEST", "5432"),
		User:            envOr("DB_USER_TEST", "postgres"),
		Password:        envOr("DB_PASSWORD_TEST", "123456"),
		DBName:          envOr("DB_NAME_TEST", "delivery_test"),
		SSLMode:         envOr("DB_SSLMODE_TEST", "disable"),
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
		MigrationsPath:  migrationsPath,
	}, true
}

// Open connects and migrates the test database. It returns nil when no
// test database is configured.
func Open(migrationsPath string) (*db.Postgres, error) {
	cfg, ok := ConfigFromEnv(migrationsPath)
	if !ok {
		return nil, nil
	}

	if err := db.MigrateUp(cfg); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return db.New(ctx, cfg)
}

// TruncateAll empties every application table.
func TruncateAll(ctx context.Context, q db.Querier) error {
	_, err := q.Exec(ctx, "TRUNCATE TABLE order_items, orders, products, addresses, accounts RESTART IDENTITY CASCADE")
	return err
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
