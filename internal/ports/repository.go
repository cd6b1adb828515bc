package ports

//go:generate mockgen -source=repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"kidcalc/internal/domain"
)

// ICalculationRepository — контракт хранилища истории расчётов.
// Хранилище само назначает ID и время создания. Ошибки оборачиваются в domain.ErrStorage, ретраев внутри нет.
type ICalculationRepository interface {
	// SaveCalculation сохраняет запись целиком и возвращает её с ID и CreatedAt.
	SaveCalculation(ctx context.Context, expr domain.Expression, result float64) (domain.Calculation, error)
	// GetHistory возвращает все записи, новые сначала. Пустое хранилище — пустой слайс без ошибки.
	GetHistory(ctx context.Context) ([]domain.Calculation, error)
	// ClearHistory удаляет все записи. Повторный вызов на пустом хранилище — не ошибка.
	ClearHistory(ctx context.Context) error
	Ping(ctx context.Context) error
}
