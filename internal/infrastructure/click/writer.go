package click

import (
	"context"
	"fmt"

	"kidcalc/internal/domain"
	"kidcalc/internal/ports"
)

const calculationsAnalyticsTable = "calculations_analytics"

var _ ports.ICalculationAnalytics = (*CalculationWriter)(nil)

// CalculationWriter записывает расчёты в ClickHouse в формате, удобном для аналитики (GROUP BY operation, по времени и т.д.).
type CalculationWriter struct {
	db *Client
}

// NewCalculationWriter создаёт писатель расчётов для аналитики.
func NewCalculationWriter(db *Client) *CalculationWriter {
	return &CalculationWriter{db: db}
}

// EnsureTable создаёт таблицу аналитики, если её ещё нет. ReplacingMergeTree по id схлопывает
// повторно доставленные события. Вызови один раз при старте приложения.
func (w *CalculationWriter) EnsureTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id Int64,
			first_number Float64,
			second_number Float64,
			operation LowCardinality(String),
			result Float64,
			created_at DateTime64(6, 'UTC')
		) ENGINE = ReplacingMergeTree()
		PARTITION BY toYYYYMM(created_at)
		ORDER BY (operation, created_at, id)`,
		calculationsAnalyticsTable,
	)
	_, err := w.db.DB().ExecContext(ctx, query)
	return err
}

// WriteCalculation реализует ports.ICalculationAnalytics: пишет один расчёт в ClickHouse.
func (w *CalculationWriter) WriteCalculation(ctx context.Context, c domain.Calculation) error {
	query := fmt.Sprintf(
		"INSERT INTO %s (id, first_number, second_number, operation, result, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		calculationsAnalyticsTable,
	)
	_, err := w.db.DB().ExecContext(ctx, query,
		c.ID, c.FirstNumber, c.SecondNumber, c.Operation.String(), c.Result, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert calculation: %w", err)
	}
	return nil
}

// CountByOperation возвращает число расчётов по каждой операции.
func (w *CalculationWriter) CountByOperation(ctx context.Context) (map[string]uint64, error) {
	rows, err := w.db.DB().QueryContext(ctx, fmt.Sprintf(
		"SELECT operation, count() FROM %s FINAL GROUP BY operation", calculationsAnalyticsTable))
	if err != nil {
		return nil, fmt.Errorf("count by operation: %w", err)
	}
	defer rows.Close()

	out := make(map[string]uint64)
	for rows.Next() {
		var (
			op string
			n  uint64
		)
		if err := rows.Scan(&op, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		out[op] = n
	}
	return out, rows.Err()
}
