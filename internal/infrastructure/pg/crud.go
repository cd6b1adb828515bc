package pg

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"kidcalc/internal/domain"
	"kidcalc/internal/ports"
)

var _ ports.ICalculationRepository = (*CalculationRepo)(nil)

// CalculationRepo реализует ports.ICalculationRepository для PostgreSQL.
type CalculationRepo struct {
	db  *DB
	log *zap.Logger
}

// NewCalculationRepo возвращает репозиторий расчётов.
func NewCalculationRepo(db *DB, log *zap.Logger) *CalculationRepo {
	return &CalculationRepo{db: db, log: log}
}

// SaveCalculation сохраняет расчёт одной вставкой; ID и created_at назначает БД.
func (r *CalculationRepo) SaveCalculation(ctx context.Context, expr domain.Expression, result float64) (domain.Calculation, error) {
	c := domain.Calculation{
		FirstNumber:  expr.FirstNumber,
		SecondNumber: expr.SecondNumber,
		Operation:    expr.Operation,
		Result:       result,
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO calculations (first_number, second_number, operation, result)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		c.FirstNumber, c.SecondNumber, c.Operation.String(), c.Result,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		r.log.Debug("SaveCalculation failed", zap.Error(err))
		return domain.Calculation{}, domain.NewStorageError("save calculation", err)
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}

// GetHistory возвращает историю расчётов из БД (последние сначала).
func (r *CalculationRepo) GetHistory(ctx context.Context) ([]domain.Calculation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, first_number, second_number, operation, result, created_at
		 FROM calculations ORDER BY created_at DESC, id DESC`)
	if err != nil {
		r.log.Debug("GetHistory failed", zap.Error(err))
		return nil, domain.NewStorageError("get history", err)
	}
	defer rows.Close()

	list := make([]domain.Calculation, 0)
	for rows.Next() {
		var (
			c  domain.Calculation
			op string
		)
		if err := rows.Scan(&c.ID, &c.FirstNumber, &c.SecondNumber, &op, &c.Result, &c.CreatedAt); err != nil {
			return nil, domain.NewStorageError("scan calculation", err)
		}
		if c.Operation, err = domain.ParseOperation(op); err != nil {
			return nil, domain.NewStorageError("scan calculation", fmt.Errorf("row %d: %w", c.ID, err))
		}
		c.CreatedAt = c.CreatedAt.UTC()
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("get history", err)
	}
	return list, nil
}

// ClearHistory удаляет все записи. Счётчик ID не сбрасывается.
func (r *CalculationRepo) ClearHistory(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM calculations`); err != nil {
		r.log.Debug("ClearHistory failed", zap.Error(err))
		return domain.NewStorageError("clear history", err)
	}
	return nil
}

// Ping проверяет доступность БД (readiness).
func (r *CalculationRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
