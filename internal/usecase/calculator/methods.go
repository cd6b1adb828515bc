package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"kidcalc/internal/domain"
)

// PerformCalculation — проверяет операцию, считает, сохраняет запись в историю и возвращает результат
// вместе с сохранённой записью. При делении на ноль в хранилище ничего не пишется.
func (u *UseCase) PerformCalculation(ctx context.Context, first, second float64, op domain.Operation) (*domain.CalculationResult, error) {
	ctx, span := tracer.Start(ctx, "calculator.perform",
		trace.WithAttributes(
			attribute.String("calculator.operation", op.String()),
			attribute.Float64("calculator.first_number", first),
			attribute.Float64("calculator.second_number", second),
		),
	)
	defer span.End()

	if !op.Valid() {
		err := fmt.Errorf("%w: %s", domain.ErrInvalidOperation, op)
		u.fail(span, op, outcomeInvalidOperation, err)
		return nil, err
	}

	expr := domain.Expression{FirstNumber: first, SecondNumber: second, Operation: op}
	result, err := expr.Evaluate()
	if err != nil {
		outcome := outcomeInvalidOperation
		switch {
		case errors.Is(err, domain.ErrDivisionByZero):
			outcome = outcomeDivisionByZero
		case errors.Is(err, domain.ErrResultOutOfRange):
			outcome = outcomeOutOfRange
		}
		u.fail(span, op, outcome, err)
		return nil, err
	}

	calc, err := u.repo.SaveCalculation(ctx, expr, result)
	if err != nil {
		u.fail(span, op, outcomeStorageFailure, err)
		return nil, err
	}
	u.log.Info("calculation saved",
		zap.Int64("id", calc.ID),
		zap.Float64("first_number", first),
		zap.Stringer("operation", op),
		zap.Float64("second_number", second),
		zap.Float64("result", result),
	)

	calculationsTotal.WithLabelValues(op.String(), outcomeSuccess).Inc()
	span.SetAttributes(attribute.Int64("calculator.id", calc.ID), attribute.Float64("calculator.result", result))
	span.SetStatus(codes.Ok, "")

	u.publish(ctx, calc)

	return &domain.CalculationResult{Result: result, Calculation: calc}, nil
}

// History — история расчётов, новые сначала (обвязка над репозиторием).
func (u *UseCase) History(ctx context.Context) ([]domain.Calculation, error) {
	ctx, span := tracer.Start(ctx, "calculator.history")
	defer span.End()

	list, err := u.repo.GetHistory(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		u.log.Error("history load failed", zap.Error(err))
		return nil, err
	}
	if list == nil {
		list = []domain.Calculation{}
	}
	span.SetAttributes(attribute.Int("calculator.history.count", len(list)))
	return list, nil
}

// ClearHistory удаляет всю историю. На пустом хранилище тоже успех.
func (u *UseCase) ClearHistory(ctx context.Context) (domain.ClearOutcome, error) {
	ctx, span := tracer.Start(ctx, "calculator.clear_history")
	defer span.End()

	if err := u.repo.ClearHistory(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		u.log.Error("history clear failed", zap.Error(err))
		return domain.ClearOutcome{}, err
	}
	historyClearsTotal.Inc()
	u.log.Info("history cleared")
	return domain.ClearOutcome{Success: true, Message: clearedMessage}, nil
}

// HandleCalculationEvent вызывается консьюмером при получении события из топика расчётов (часть ICalculatorUseCase).
func (u *UseCase) HandleCalculationEvent(ctx context.Context, c domain.Calculation) error {
	if u.analytics == nil {
		return nil
	}
	if err := u.analytics.WriteCalculation(ctx, c); err != nil {
		u.log.Warn("analytics write", zap.Int64("id", c.ID), zap.Error(err))
		return err
	}
	u.log.Info("calculation stored to click",
		zap.Int64("id", c.ID),
		zap.Float64("first_number", c.FirstNumber),
		zap.Stringer("operation", c.Operation),
		zap.Float64("second_number", c.SecondNumber),
		zap.Float64("result", c.Result),
	)
	return nil
}

// OperationStats — число расчётов по каждой операции из аналитического хранилища.
func (u *UseCase) OperationStats(ctx context.Context) (map[string]uint64, error) {
	if u.analytics == nil {
		return nil, domain.ErrAnalyticsDisabled
	}
	ctx, span := tracer.Start(ctx, "calculator.operation_stats")
	defer span.End()

	counts, err := u.analytics.CountByOperation(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		u.log.Error("operation stats failed", zap.Error(err))
		return nil, domain.NewStorageError("count by operation", err)
	}
	// операции без расчётов тоже попадают в ответ с нулём
	out := make(map[string]uint64, len(domain.Operations()))
	for _, op := range domain.Operations() {
		out[op.String()] = counts[op.String()]
	}
	return out, nil
}

// publish отправляет сохранённый расчёт в брокер. Ошибка брокера только логируется: запись уже в истории.
func (u *UseCase) publish(ctx context.Context, c domain.Calculation) {
	if u.broker == nil {
		return
	}
	key := strconv.FormatInt(c.ID, 10)
	value, err := json.Marshal(c)
	if err != nil {
		u.log.Warn("calculation event marshal", zap.Int64("id", c.ID), zap.Error(err))
		return
	}
	if err := u.broker.Send(ctx, []byte(key), value); err != nil {
		u.log.Warn("broker send", zap.String("key", key), zap.Error(err))
		return
	}
	u.log.Debug("calculation published", zap.String("key", key))
}

func (u *UseCase) fail(span trace.Span, op domain.Operation, outcome string, err error) {
	calculationsTotal.WithLabelValues(op.String(), outcome).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	u.log.Warn("calculation rejected", zap.Stringer("operation", op), zap.String("outcome", outcome), zap.Error(err))
}
