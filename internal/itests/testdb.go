package itests

import (
	"YrestCriteria/internal"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const testDBName = "criteria_test"

// DeriveTestDSN меняет имя БД на тестовую и готовит admin-DSN к "postgres"
func DeriveTestDSN(baseDSN string) (testDSN, adminDSN string, err error) {
	u, err := url.Parse(baseDSN)
	if err != nil {
		return "", "", fmt.Errorf("parse DSN: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", "", errors.New("only URL DSN supported: postgres://...")
	}
	// не позволяем удалённые хосты для тестов
	if host := u.Hostname(); host != "localhost" && host != "127.0.0.1" {
		return "", "", fmt.Errorf("refuse non-local host for tests: %s", host)
	}

	u.Path = "/" + testDBName
	testDSN = u.String()
	u.Path = "/postgres"
	adminDSN = u.String()
	return testDSN, adminDSN, nil
}

func withAdmin(adminDSN string, timeout time.Duration, fn func(ctx context.Context, db *sql.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	db, err := sql.Open("pgx", adminDSN)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(ctx, db)
}

func createTestDatabase(adminDSN string) error {
	return withAdmin(adminDSN, 10*time.Second, func(ctx context.Context, db *sql.DB) error {
		var exists bool
		if err := db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname=$1)`, testDBName,
		).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return nil
		}
		_, err := db.ExecContext(ctx, `CREATE DATABASE `+pqIdent(testDBName))
		return err
	})
}

func dropTestDatabase(adminDSN string) error {
	return withAdmin(adminDSN, 15*time.Second, func(ctx context.Context, db *sql.DB) error {
		// убиваем активные коннекты к тестовой БД
		_, _ = db.ExecContext(ctx, `
			SELECT pg_terminate_backend(pid)
			FROM pg_stat_activity
			WHERE datname = $1 AND pid <> pg_backend_pid()
		`, testDBName)
		_, err := db.ExecContext(ctx, `DROP DATABASE IF EXISTS `+pqIdent(testDBName))
		return err
	})
}

func pqIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func applyMigrations(testDSN string) error {
	root, err := internal.FindRepoRoot()
	if err != nil {
		return fmt.Errorf("repo root not found: %w", err)
	}
	abs, err := filepath.Abs(filepath.Join(root, "migrations"))
	if err != nil {
		return fmt.Errorf("abs migrations: %w", err)
	}
	// golang-migrate с file:// требует абсолютный путь и прямые слэши
	m, err := migrate.New("file://"+filepath.ToSlash(abs), testDSN)
	if err != nil {
		return fmt.Errorf("migrate.New: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// SetupTestDB создаёт тестовую БД, применяет миграции и возвращает её DSN
// вместе с функцией удаления.
func SetupTestDB(baseDSN string) (testDSN string, teardown func() error, err error) {
	testDSN, adminDSN, err := DeriveTestDSN(baseDSN)
	if err != nil {
		return "", nil, err
	}
	if os.Getenv("APP_ENV") == "production" {
		return "", nil, errors.New("APP_ENV=production, aborting tests")
	}

	if err := createTestDatabase(adminDSN); err != nil {
		return "", nil, fmt.Errorf("create DB %q: %w (POSTGRES_DSN -> %s)", testDBName, err, redactDSN(baseDSN))
	}
	log.Printf("test DB %q created", testDBName)
	if err := applyMigrations(testDSN); err != nil {
		_ = dropTestDatabase(adminDSN)
		return "", nil, err
	}
	log.Printf("migrations applied to test DB")

	return testDSN, func() error { return dropTestDatabase(adminDSN) }, nil
}

func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	username := u.User.Username()
	if username == "" {
		return dsn
	}
	u.User = url.UserPassword(username, "******")
	return u.String()
}
