package ports

//go:generate mockgen -source=usecase.go -destination=../mocks/usecase_mock.go -package=mocks

import (
	"context"

	"kidcalc/internal/domain"
)

// ICalculatorUseCase — контракт бизнес-логики калькулятора: расчёт, история, очистка, обработка событий из Kafka, статистика по операциям.
type ICalculatorUseCase interface {
	PerformCalculation(ctx context.Context, first, second float64, op domain.Operation) (*domain.CalculationResult, error)
	History(ctx context.Context) ([]domain.Calculation, error)
	ClearHistory(ctx context.Context) (domain.ClearOutcome, error)
	HandleCalculationEvent(ctx context.Context, c domain.Calculation) error
	OperationStats(ctx context.Context) (map[string]uint64, error)
}
