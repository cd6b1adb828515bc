package calculator

import (
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"kidcalc/internal/ports"
)

var tracer = otel.Tracer("kidcalc/usecase/calculator")

var _ ports.ICalculatorUseCase = (*UseCase)(nil)

// clearedMessage — текст ответа на очистку истории.
const clearedMessage = "Calculation history cleared successfully!"

// UseCase — бизнес-логика калькулятора. Состояния между вызовами не хранит.
type UseCase struct {
	repo      ports.ICalculationRepository
	broker    ports.IProducer
	analytics ports.ICalculationAnalytics
	log       *zap.Logger
}

// New создаёт юзкейс калькулятора. broker и analytics могут быть nil: тогда события не публикуются
// и не пишутся в аналитику.
func New(repo ports.ICalculationRepository, broker ports.IProducer, analytics ports.ICalculationAnalytics, log *zap.Logger) *UseCase {
	if log == nil {
		log = zap.NewNop()
	}
	return &UseCase{repo: repo, broker: broker, analytics: analytics, log: log}
}
