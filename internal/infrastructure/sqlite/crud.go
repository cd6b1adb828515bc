package sqlite

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"kidcalc/internal/domain"
	"kidcalc/internal/ports"
)

var _ ports.ICalculationRepository = (*CalculationRepo)(nil)

// CalculationRepo реализует ports.ICalculationRepository поверх SQLite.
// created_at хранится как unix-микросекунды в UTC.
type CalculationRepo struct {
	db  *DB
	log *zap.Logger
	now func() time.Time
}

// NewCalculationRepo возвращает репозиторий расчётов.
func NewCalculationRepo(db *DB, log *zap.Logger) *CalculationRepo {
	return &CalculationRepo{db: db, log: log, now: time.Now}
}

// SaveCalculation сохраняет расчёт одной вставкой и возвращает его с ID и временем создания.
func (r *CalculationRepo) SaveCalculation(ctx context.Context, expr domain.Expression, result float64) (domain.Calculation, error) {
	c := domain.Calculation{
		FirstNumber:  expr.FirstNumber,
		SecondNumber: expr.SecondNumber,
		Operation:    expr.Operation,
		Result:       result,
		CreatedAt:    r.now().UTC().Truncate(time.Microsecond),
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO calculations (first_number, second_number, operation, result, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING id`,
		c.FirstNumber, c.SecondNumber, c.Operation.String(), c.Result, c.CreatedAt.UnixMicro(),
	).Scan(&c.ID)
	if err != nil {
		r.log.Debug("SaveCalculation failed", zap.Error(err))
		return domain.Calculation{}, domain.NewStorageError("save calculation", err)
	}
	return c, nil
}

// GetHistory возвращает все расчёты, последние сначала.
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
			c       domain.Calculation
			op      string
			created int64
		)
		if err := rows.Scan(&c.ID, &c.FirstNumber, &c.SecondNumber, &op, &c.Result, &created); err != nil {
			return nil, domain.NewStorageError("scan calculation", err)
		}
		if c.Operation, err = domain.ParseOperation(op); err != nil {
			return nil, domain.NewStorageError("scan calculation", fmt.Errorf("row %d: %w", c.ID, err))
		}
		c.CreatedAt = time.UnixMicro(created).UTC()
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("get history", err)
	}
	return list, nil
}

// ClearHistory удаляет все записи.
func (r *CalculationRepo) ClearHistory(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM calculations`); err != nil {
		r.log.Debug("ClearHistory failed", zap.Error(err))
		return domain.NewStorageError("clear history", err)
	}
	return nil
}

// Ping проверяет доступность БД.
func (r *CalculationRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
