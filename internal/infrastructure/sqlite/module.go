package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Config — настройки встроенного хранилища. Переменные: CALCULATOR_SQLITE_*.
type Config struct {
	Path string `envconfig:"PATH" default:"kidcalc.db"`
}

// DB обёртка над *sql.DB с драйвером modernc (без CGO).
type DB struct {
	*sql.DB
}

const createCalculationsTable = `
CREATE TABLE IF NOT EXISTS calculations (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	first_number  REAL NOT NULL,
	second_number REAL NOT NULL,
	operation     TEXT NOT NULL CHECK (operation IN ('add', 'subtract', 'multiply', 'divide')),
	result        REAL NOT NULL,
	created_at    INTEGER NOT NULL,
	CHECK (NOT (operation = 'divide' AND second_number = 0))
);
CREATE INDEX IF NOT EXISTS calculations_created_at_idx ON calculations (created_at DESC, id DESC);
`

// New открывает (или создаёт) файл БД и накатывает схему. После использования вызови Close().
func New(ctx context.Context, cfg *Config) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", cfg.Path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// Один писатель: SQLite всё равно сериализует записи.
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}
	if _, err := conn.ExecContext(ctx, createCalculationsTable); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("sqlite migrate: %w", err)
	}
	return &DB{conn}, nil
}
