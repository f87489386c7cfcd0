package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"bakery-be/internal/logger"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	logger.Init(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))
	defer logger.Sync()
	log := logger.L()

	mode := flag.String("mode", "up", "migration mode: up, down or status")
	dir := flag.String("dir", "./migrations", "directory holding the migration files")
	flag.Parse()

	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		log.Fatal("DB_URL not set in environment")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatal("failed to open db", zap.Error(err))
	}
	defer db.Close()

	m := &migrator{db: db, log: log}
	if err := m.run(context.Background(), *mode, *dir); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
}

type migrator struct {
	db  *sql.DB
	log *zap.Logger
}

func (m *migrator) run(ctx context.Context, mode, dir string) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	slices.Sort(files)

	switch mode {
	case "up":
		return m.up(ctx, files)
	case "down":
		return m.down(ctx, files)
	case "status":
		return m.status(ctx, files)
	default:
		return fmt.Errorf("unknown mode %q (use up, down or status)", mode)
	}
}

func (m *migrator) applied(ctx context.Context, version string) (bool, error) {
	var exists bool
	err := m.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check %s: %w", version, err)
	}
	return exists, nil
}

// up applies every pending file in name order. Each file runs in its own
// transaction together with its schema_migrations row.
func (m *migrator) up(ctx context.Context, files []string) error {
	count := 0
	for _, file := range files {
		version := filepath.Base(file)

		done, err := m.applied(ctx, version)
		if err != nil {
			return err
		}
		if done {
			continue
		}

		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}

		m.log.Info("applying migration", zap.String("version", version))
		err = m.inTx(ctx, extractMigrationPart(string(content), "Up"),
			`INSERT INTO schema_migrations (version) VALUES ($1)`, version)
		if err != nil {
			return fmt.Errorf("apply %s: %w", version, err)
		}
		count++
	}
	m.log.Info("migrations up to date", zap.Int("applied", count))
	return nil
}

// down rolls back the most recently applied migration.
func (m *migrator) down(ctx context.Context, files []string) error {
	var last string
	err := m.db.QueryRowContext(ctx,
		`SELECT version FROM schema_migrations ORDER BY applied_at DESC, version DESC LIMIT 1`,
	).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		m.log.Info("no migrations to roll back")
		return nil
	}
	if err != nil {
		return fmt.Errorf("find last migration: %w", err)
	}

	i := slices.IndexFunc(files, func(f string) bool { return filepath.Base(f) == last })
	if i < 0 {
		return fmt.Errorf("migration file not found for version %s", last)
	}
	content, err := os.ReadFile(files[i])
	if err != nil {
		return fmt.Errorf("read %s: %w", files[i], err)
	}

	m.log.Info("rolling back migration", zap.String("version", last))
	err = m.inTx(ctx, extractMigrationPart(string(content), "Down"),
		`DELETE FROM schema_migrations WHERE version = $1`, last)
	if err != nil {
		return fmt.Errorf("roll back %s: %w", last, err)
	}
	return nil
}

func (m *migrator) status(ctx context.Context, files []string) error {
	for _, file := range files {
		version := filepath.Base(file)
		done, err := m.applied(ctx, version)
		if err != nil {
			return err
		}
		m.log.Info("migration", zap.String("version", version), zap.Bool("applied", done))
	}
	return nil
}

func (m *migrator) inTx(ctx context.Context, script, record, version string) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if strings.TrimSpace(script) != "" {
		if _, err := tx.ExecContext(ctx, script); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, record, version); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// extractMigrationPart returns the lines between "-- +migrate <section>" and
// the next marker.
func extractMigrationPart(content, section string) string {
	var part strings.Builder
	in := false
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "-- +migrate") {
			if in {
				break
			}
			in = strings.Contains(line, "-- +migrate "+section)
			continue
		}
		if in {
			part.WriteString(line)
			part.WriteByte('\n')
		}
	}
	return part.String()
}
