package migrate

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
)

const downMarker = "-- +migrate Down"

// Apply runs every migrations/*.sql file in dir that is not yet recorded in
// schema_migrations, in filename order. It returns the applied filenames.
func Apply(ctx context.Context, db *sqlx.DB, dir string) ([]string, error) {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (filename text primary key, applied_at timestamptz default now())`); err != nil {
		return nil, fmt.Errorf("ensure schema_migrations: %w", err)
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	sort.Strings(files)

	var applied []string
	for _, file := range files {
		filename := filepath.Base(file)
		var exists bool
		if err := db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE filename = $1)`, filename); err != nil {
			return applied, fmt.Errorf("read migration state: %w", err)
		}
		if exists {
			continue
		}
		content, err := os.ReadFile(file)
		if err != nil {
			return applied, err
		}
		if err := applyOne(ctx, db, filename, string(content)); err != nil {
			return applied, fmt.Errorf("apply %s: %w", filename, err)
		}
		applied = append(applied, filename)
	}
	return applied, nil
}

// applyOne runs the up section and records it in one transaction, so a
// failing statement leaves the file unapplied.
func applyOne(ctx context.Context, db *sqlx.DB, filename, content string) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, stmt := range Statements(UpSection(content)) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (filename) VALUES ($1)`, filename); err != nil {
		return err
	}
	return tx.Commit()
}

// UpSection returns the part of a migration file before the down marker.
func UpSection(content string) string {
	up, _, _ := strings.Cut(content, downMarker)
	return up
}

// Statements splits SQL text on lines ending a statement. Comment lines
// are dropped.
func Statements(sqlText string) []string {
	var statements []string
	var current strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(sqlText))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		current.WriteString(line)
		current.WriteRune('\n')
		if strings.HasSuffix(strings.TrimSpace(line), ";") {
			statements = append(statements, current.String())
			current.Reset()
		}
	}
	if strings.TrimSpace(current.String()) != "" {
		statements = append(statements, current.String())
	}
	return statements
}
