package pg

import (
	"context"
	"fmt"
)

const createCalculationsTable = `
CREATE TABLE IF NOT EXISTS calculations (
	id            BIGSERIAL PRIMARY KEY,
	first_number  DOUBLE PRECISION NOT NULL,
	second_number DOUBLE PRECISION NOT NULL,
	operation     VARCHAR(16) NOT NULL CHECK (operation IN ('add', 'subtract', 'multiply', 'divide')),
	result        DOUBLE PRECISION NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT calculations_no_division_by_zero CHECK (NOT (operation = 'divide' AND second_number = 0))
);
CREATE INDEX IF NOT EXISTS calculations_created_at_idx ON calculations (created_at DESC, id DESC);
`

// Migrate создаёт таблицу calculations, если её ещё нет.
func Migrate(ctx context.Context, db *DB) error {
	if _, err := db.ExecContext(ctx, createCalculationsTable); err != nil {
		return fmt.Errorf("create calculations table: %w", err)
	}
	return nil
}
