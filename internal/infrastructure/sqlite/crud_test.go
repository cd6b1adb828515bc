package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kidcalc/internal/domain"
	"kidcalc/internal/pkg/testutil"
	"kidcalc/internal/ports"
)

// setupRepo создаёт репозиторий поверх временного файла БД.
func setupRepo(t *testing.T) *CalculationRepo {
	t.Helper()

	db, err := New(context.Background(), &Config{Path: filepath.Join(t.TempDir(), "calc.db")})
	require.NoError(t, err, "не удалось открыть sqlite")
	t.Cleanup(func() { db.Close() })

	return NewCalculationRepo(db, zap.NewNop())
}

// clock отдаёт заранее заданные моменты времени по очереди.
func clock(times ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		t := times[i]
		if i < len(times)-1 {
			i++
		}
		return t
	}
}

func TestCalculationRepo_GetHistory_Empty(t *testing.T) {
	repo := setupRepo(t)

	history, err := repo.GetHistory(context.Background())

	require.NoError(t, err, "GetHistory на пустой таблице не должен возвращать ошибку")
	assert.NotNil(t, history)
	assert.Empty(t, history, "история должна быть пустой")
}

func TestCalculationRepo_SaveAndRoundTrip(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	saved, err := repo.SaveCalculation(ctx, domain.Expression{FirstNumber: 10, SecondNumber: 5, Operation: domain.OpAdd}, 15)
	require.NoError(t, err)
	assert.NotZero(t, saved.ID, "ID должен быть назначен")
	assert.False(t, saved.CreatedAt.IsZero(), "время должно быть назначено")
	assert.Equal(t, domain.OpAdd, saved.Operation)

	history, err := repo.GetHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, saved, history[0], "запись из истории должна совпадать с возвращённой при сохранении")
}

func TestCalculationRepo_GetHistory_Order(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	repo.now = clock(base, base.Add(time.Second), base.Add(2*time.Second))

	var ids []int64
	for i, n := range []float64{1, 2, 3} {
		c, err := repo.SaveCalculation(ctx, domain.Expression{FirstNumber: n, SecondNumber: n, Operation: domain.OpAdd}, 2*n)
		require.NoError(t, err, "вставка %d", i)
		ids = append(ids, c.ID)
	}

	history, err := repo.GetHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, []int64{ids[2], ids[1], ids[0]}, []int64{history[0].ID, history[1].ID, history[2].ID}, "новые сначала")
	assert.Equal(t, 6.0, history[0].Result, "первая запись — самая новая")
}

// Одинаковое время: порядок стабилен (по убыванию ID).
func TestCalculationRepo_GetHistory_TiesStable(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	same := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	repo.now = clock(same)

	for i := 0; i < 3; i++ {
		_, err := repo.SaveCalculation(ctx, domain.Expression{FirstNumber: float64(i), SecondNumber: 1, Operation: domain.OpMultiply}, float64(i))
		require.NoError(t, err)
	}

	first, err := repo.GetHistory(ctx)
	require.NoError(t, err)
	second, err := repo.GetHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Greater(t, first[0].ID, first[1].ID)
	assert.Greater(t, first[1].ID, first[2].ID)
}

func TestCalculationRepo_ClearHistory_Idempotent(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.SaveCalculation(ctx, domain.Expression{FirstNumber: 1, SecondNumber: 1, Operation: domain.OpSubtract}, 0)
		require.NoError(t, err)
	}

	require.NoError(t, repo.ClearHistory(ctx))
	history, err := repo.GetHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)

	require.NoError(t, repo.ClearHistory(ctx), "повторная очистка — не ошибка")
	history, err = repo.GetHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)
}

// Хранилище само не даёт записать деление на ноль.
func TestCalculationRepo_RejectsDivisionByZeroRow(t *testing.T) {
	repo := setupRepo(t)

	_, err := repo.SaveCalculation(context.Background(), domain.Expression{FirstNumber: 1, SecondNumber: 0, Operation: domain.OpDivide}, 0)

	assert.ErrorIs(t, err, domain.ErrStorage)
	history, err := repo.GetHistory(context.Background())
	require.NoError(t, err)
	assert.Empty(t, history, "частичных записей быть не должно")
}

func TestCalculationRepo_ConcurrentSave(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	const n = 20

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.SaveCalculation(ctx, domain.Expression{FirstNumber: float64(i), SecondNumber: 2, Operation: domain.OpDivide}, float64(i)/2)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	history, err := repo.GetHistory(ctx)
	require.NoError(t, err)
	assert.Len(t, history, n)

	seen := make(map[int64]bool, n)
	for _, c := range history {
		assert.False(t, seen[c.ID], "ID %d повторяется", c.ID)
		seen[c.ID] = true
	}
}

func TestCalculationRepo_Ping(t *testing.T) {
	repo := setupRepo(t)
	assert.NoError(t, repo.Ping(context.Background()))
}

func TestCalculationRepo_ClosedDB(t *testing.T) {
	repo := setupRepo(t)
	require.NoError(t, repo.db.Close())

	_, err := repo.GetHistory(context.Background())
	assert.ErrorIs(t, err, domain.ErrStorage)

	_, err = repo.SaveCalculation(context.Background(), domain.Expression{FirstNumber: 1, SecondNumber: 1, Operation: domain.OpAdd}, 2)
	assert.ErrorIs(t, err, domain.ErrStorage)

	assert.ErrorIs(t, repo.ClearHistory(context.Background()), domain.ErrStorage)
}

func TestCalculationRepo_Contract(t *testing.T) {
	testutil.RunRepositoryContract(t, func(t *testing.T) ports.ICalculationRepository {
		return setupRepo(t)
	})
}
