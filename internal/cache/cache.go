package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
)

func (c *implCache) Hit(ctx context.Context, stage, outputPath, key string) (bool, error) {
	info, err := os.Stat(outputPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", outputPath, err)
	}
	if info.IsDir() {
		return false, nil
	}

	if c.mode == ModeExists {
		return true, nil
	}

	var recorded string
	err = c.conn.QueryRowContext(ctx,
		"SELECT content_key FROM stage_cache WHERE output_path = ?", outputPath,
	).Scan(&recorded)
	if errors.Is(err, sql.ErrNoRows) {
		if c.logger != nil {
			c.logger.Debug(ctx, "[%s] %s exists but has no cache record", stage, outputPath)
		}
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup cache record: %w", err)
	}

	if recorded != key {
		if c.logger != nil {
			c.logger.Info(ctx, "[%s] input changed, recomputing %s", stage, outputPath)
		}
		return false, nil
	}
	return true, nil
}

func (c *implCache) Store(ctx context.Context, stage, outputPath, key string) error {
	_, err := c.conn.ExecContext(ctx, `
		INSERT INTO stage_cache (output_path, stage, content_key, created_at)
		VALUES (?, ?, ?, datetime('now'))
		ON CONFLICT(output_path) DO UPDATE SET
			stage = excluded.stage,
			content_key = excluded.content_key,
			created_at = excluded.created_at`,
		outputPath, stage, key)
	if err != nil {
		return fmt.Errorf("store cache record: %w", err)
	}
	return nil
}

func (c *implCache) Close() error {
	return c.conn.Close()
}

func (c *implCache) migrate() error {
	migrations, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	for _, m := range migrations {
		if m.IsDir() {
			continue
		}
		name := m.Name()
		if c.isMigrationApplied(name) {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := c.conn.Exec(string(content)); err != nil {
			return fmt.Errorf("execute migration %s: %w", name, err)
		}
		if _, err := c.conn.Exec("INSERT INTO _migrations (name) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}
	return nil
}

func (c *implCache) isMigrationApplied(name string) bool {
	var exists int
	if err := c.conn.QueryRow("SELECT 1 FROM sqlite_master WHERE type='table' AND name='_migrations'").Scan(&exists); err != nil {
		return false
	}
	var applied int
	err := c.conn.QueryRow("SELECT 1 FROM _migrations WHERE name = ?", name).Scan(&applied)
	return err == nil && applied == 1
}
