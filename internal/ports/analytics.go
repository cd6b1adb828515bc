package ports

//go:generate mockgen -source=analytics.go -destination=../mocks/analytics_mock.go -package=mocks

import (
	"context"

	"kidcalc/internal/domain"
)

// ICalculationAnalytics — запись расчётов в хранилище для аналитики (ClickHouse).
type ICalculationAnalytics interface {
	WriteCalculation(ctx context.Context, c domain.Calculation) error
	CountByOperation(ctx context.Context) (map[string]uint64, error)
}
