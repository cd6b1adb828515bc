package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"kidcalc/internal/domain"
	"kidcalc/internal/mocks"
)

type deps struct {
	repo      *mocks.MockICalculationRepository
	broker    *mocks.MockIProducer
	analytics *mocks.MockICalculationAnalytics
}

func newTestUseCase(t *testing.T) (*UseCase, deps) {
	t.Helper()
	ctrl := gomock.NewController(t)
	d := deps{
		repo:      mocks.NewMockICalculationRepository(ctrl),
		broker:    mocks.NewMockIProducer(ctrl),
		analytics: mocks.NewMockICalculationAnalytics(ctrl),
	}
	return New(d.repo, d.broker, d.analytics, zap.NewNop()), d
}

// stored имитирует запись, которую вернуло хранилище.
func stored(id int64, expr domain.Expression, result float64) domain.Calculation {
	return domain.Calculation{
		ID:           id,
		FirstNumber:  expr.FirstNumber,
		SecondNumber: expr.SecondNumber,
		Operation:    expr.Operation,
		Result:       result,
		CreatedAt:    time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC),
	}
}

// Тест 1: полный флоу — расчёт → БД → брокер, в ответе ровно та запись, что вернуло хранилище.
func TestPerformCalculation_Add(t *testing.T) {
	uc, d := newTestUseCase(t)
	expr := domain.Expression{FirstNumber: 10, SecondNumber: 5, Operation: domain.OpAdd}
	want := stored(1, expr, 15)

	gomock.InOrder(
		d.repo.EXPECT().SaveCalculation(gomock.Any(), expr, 15.0).Return(want, nil),
		d.broker.EXPECT().Send(gomock.Any(), []byte("1"), gomock.Any()).
			DoAndReturn(func(_ context.Context, _, value []byte) error {
				var got domain.Calculation
				require.NoError(t, json.Unmarshal(value, &got))
				assert.Equal(t, want, got, "в событии должна быть сохранённая запись")
				return nil
			}),
	)

	res, err := uc.PerformCalculation(context.Background(), 10, 5, domain.OpAdd)

	require.NoError(t, err)
	assert.Equal(t, 15.0, res.Result)
	assert.Equal(t, want, res.Calculation)
}

// Тест 2: все четыре операции считаются по правилам движка.
func TestPerformCalculation_Operations(t *testing.T) {
	tests := []struct {
		name   string
		first  float64
		second float64
		op     domain.Operation
		want   float64
	}{
		{name: "вычитание", first: 10, second: 3, op: domain.OpSubtract, want: 7},
		{name: "умножение дробных", first: 2.5, second: 1.5, op: domain.OpMultiply, want: 3.75},
		{name: "деление", first: 20, second: 4, op: domain.OpDivide, want: 5},
		{name: "отрицательные", first: -10, second: 5, op: domain.OpAdd, want: -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, d := newTestUseCase(t)
			expr := domain.Expression{FirstNumber: tt.first, SecondNumber: tt.second, Operation: tt.op}

			d.repo.EXPECT().SaveCalculation(gomock.Any(), expr, tt.want).Return(stored(3, expr, tt.want), nil)
			d.broker.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

			res, err := uc.PerformCalculation(context.Background(), tt.first, tt.second, tt.op)

			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Result)
			assert.Equal(t, tt.want, res.Calculation.Result)
		})
	}
}

// Тест 3: деление на ноль — ошибка, хранилище и брокер не вызываются.
func TestPerformCalculation_DivisionByZero(t *testing.T) {
	uc, _ := newTestUseCase(t)

	res, err := uc.PerformCalculation(context.Background(), 10, 0, domain.OpDivide)

	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrDivisionByZero)
}

// Переполнение float64 не попадает ни в хранилище, ни в брокер (моки без ожиданий упадут на вызове).
func TestPerformCalculation_ResultOutOfRange(t *testing.T) {
	tests := []struct {
		name          string
		first, second float64
		op            domain.Operation
	}{
		{"умножение", 1e308, 10, domain.OpMultiply},
		{"сложение", 1e308, 1e308, domain.OpAdd},
		{"деление", 1e308, 1e-308, domain.OpDivide},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, _ := newTestUseCase(t)

			res, err := uc.PerformCalculation(context.Background(), tt.first, tt.second, tt.op)

			assert.Nil(t, res)
			assert.ErrorIs(t, err, domain.ErrResultOutOfRange)
		})
	}
}

// Тест 4: операция вне набора отклоняется до расчёта.
func TestPerformCalculation_InvalidOperation(t *testing.T) {
	uc, _ := newTestUseCase(t)

	res, err := uc.PerformCalculation(context.Background(), 1, 2, domain.Operation(99))

	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
}

// Тест 5: сбой хранилища пробрасывается как есть, событие не публикуется.
func TestPerformCalculation_StorageFailure(t *testing.T) {
	uc, d := newTestUseCase(t)
	storageErr := domain.NewStorageError("save calculation", errors.New("connection refused"))

	d.repo.EXPECT().SaveCalculation(gomock.Any(), gomock.Any(), gomock.Any()).Return(domain.Calculation{}, storageErr)

	res, err := uc.PerformCalculation(context.Background(), 1, 2, domain.OpAdd)

	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrStorage)
}

// Тест 6: ошибка брокера не ломает расчёт — запись уже сохранена.
func TestPerformCalculation_BrokerFailureIgnored(t *testing.T) {
	uc, d := newTestUseCase(t)
	expr := domain.Expression{FirstNumber: 6, SecondNumber: 4, Operation: domain.OpMultiply}

	d.repo.EXPECT().SaveCalculation(gomock.Any(), expr, 24.0).Return(stored(5, expr, 24), nil)
	d.broker.EXPECT().Send(gomock.Any(), []byte("5"), gomock.Any()).Return(errors.New("kafka down"))

	res, err := uc.PerformCalculation(context.Background(), 6, 4, domain.OpMultiply)

	require.NoError(t, err)
	assert.Equal(t, 24.0, res.Result)
}

// Тест 7: без брокера (nil) расчёт работает.
func TestPerformCalculation_NoBroker(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockICalculationRepository(ctrl)
	expr := domain.Expression{FirstNumber: 1, SecondNumber: 1, Operation: domain.OpAdd}
	repo.EXPECT().SaveCalculation(gomock.Any(), expr, 2.0).Return(stored(1, expr, 2), nil)

	uc := New(repo, nil, nil, nil)
	res, err := uc.PerformCalculation(context.Background(), 1, 1, domain.OpAdd)

	require.NoError(t, err)
	assert.Equal(t, 2.0, res.Result)
}

func TestHistory(t *testing.T) {
	uc, d := newTestUseCase(t)

	expected := []domain.Calculation{
		stored(2, domain.Expression{FirstNumber: 20, SecondNumber: 4, Operation: domain.OpDivide}, 5),
		stored(1, domain.Expression{FirstNumber: 10, SecondNumber: 5, Operation: domain.OpAdd}, 15),
	}
	d.repo.EXPECT().GetHistory(gomock.Any()).Return(expected, nil)

	result, err := uc.History(context.Background())

	require.NoError(t, err)
	assert.Equal(t, expected, result)
}

func TestHistory_EmptyIsNotNil(t *testing.T) {
	uc, d := newTestUseCase(t)
	d.repo.EXPECT().GetHistory(gomock.Any()).Return(nil, nil)

	result, err := uc.History(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Empty(t, result)
}

func TestHistory_StorageFailure(t *testing.T) {
	uc, d := newTestUseCase(t)
	d.repo.EXPECT().GetHistory(gomock.Any()).Return(nil, domain.NewStorageError("get history", errors.New("timeout")))

	_, err := uc.History(context.Background())

	assert.ErrorIs(t, err, domain.ErrStorage)
}

// Очистка идемпотентна: два вызова подряд — оба успешны.
func TestClearHistory_Twice(t *testing.T) {
	uc, d := newTestUseCase(t)
	d.repo.EXPECT().ClearHistory(gomock.Any()).Return(nil).Times(2)

	for i := 0; i < 2; i++ {
		out, err := uc.ClearHistory(context.Background())
		require.NoError(t, err)
		assert.True(t, out.Success)
		assert.Equal(t, "Calculation history cleared successfully!", out.Message)
	}
}

func TestClearHistory_StorageFailure(t *testing.T) {
	uc, d := newTestUseCase(t)
	d.repo.EXPECT().ClearHistory(gomock.Any()).Return(domain.NewStorageError("clear history", errors.New("read-only")))

	out, err := uc.ClearHistory(context.Background())

	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.False(t, out.Success)
}

func TestHandleCalculationEvent(t *testing.T) {
	uc, d := newTestUseCase(t)
	c := stored(9, domain.Expression{FirstNumber: 3, SecondNumber: 3, Operation: domain.OpMultiply}, 9)

	d.analytics.EXPECT().WriteCalculation(gomock.Any(), c).Return(nil)
	require.NoError(t, uc.HandleCalculationEvent(context.Background(), c))

	d.analytics.EXPECT().WriteCalculation(gomock.Any(), c).Return(errors.New("clickhouse down"))
	assert.Error(t, uc.HandleCalculationEvent(context.Background(), c))
}

func TestOperationStats(t *testing.T) {
	uc, d := newTestUseCase(t)
	d.analytics.EXPECT().CountByOperation(gomock.Any()).Return(map[string]uint64{"add": 3, "divide": 1}, nil)

	got, err := uc.OperationStats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, map[string]uint64{"add": 3, "subtract": 0, "multiply": 0, "divide": 1}, got)
}

func TestOperationStats_Failure(t *testing.T) {
	uc, d := newTestUseCase(t)
	d.analytics.EXPECT().CountByOperation(gomock.Any()).Return(nil, errors.New("clickhouse down"))

	_, err := uc.OperationStats(context.Background())

	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestOperationStats_Disabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc := New(mocks.NewMockICalculationRepository(ctrl), nil, nil, zap.NewNop())

	_, err := uc.OperationStats(context.Background())

	assert.ErrorIs(t, err, domain.ErrAnalyticsDisabled)
}
