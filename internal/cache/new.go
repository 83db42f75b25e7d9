package cache

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nguyentantai21042004/lecture-flow/internal/logger"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type implCache struct {
	conn   *sql.DB
	mode   Mode
	logger logger.Logger
}

// New opens (or creates) the cache index at dbPath.
func New(dbPath string, mode Mode, log logger.Logger) (Cache, error) {
	if mode != ModeHash && mode != ModeExists {
		return nil, fmt.Errorf("unknown cache mode %q", mode)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping cache db: %w", err)
	}

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	c := &implCache{conn: conn, mode: mode, logger: log}
	if err := c.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("run cache migrations: %w", err)
	}
	return c, nil
}
