package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kidcalc/internal/domain"
	"kidcalc/internal/ports"
)

// RunRepositoryContract проверяет общее поведение любого хранилища истории.
// newRepo должен возвращать пустое хранилище.
func RunRepositoryContract(t *testing.T, newRepo func(t *testing.T) ports.ICalculationRepository) {
	t.Run("пустая история", func(t *testing.T) {
		repo := newRepo(t)
		history, err := repo.GetHistory(context.Background())
		require.NoError(t, err, "GetHistory на пустом хранилище не должен возвращать ошибку")
		assert.NotNil(t, history)
		assert.Empty(t, history)
	})

	t.Run("сохранение и чтение", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		saved, err := repo.SaveCalculation(ctx, domain.Expression{FirstNumber: 10, SecondNumber: 5, Operation: domain.OpAdd}, 15)
		require.NoError(t, err)
		assert.NotZero(t, saved.ID, "ID должен быть назначен")
		assert.False(t, saved.CreatedAt.IsZero(), "время должно быть назначено")

		history, err := repo.GetHistory(ctx)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, saved, history[0], "запись из истории совпадает с возвращённой при сохранении")
	})

	t.Run("новые сначала", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		var ids []int64
		for _, n := range []float64{1, 2, 3} {
			c, err := repo.SaveCalculation(ctx, domain.Expression{FirstNumber: n, SecondNumber: n, Operation: domain.OpMultiply}, n*n)
			require.NoError(t, err)
			ids = append(ids, c.ID)
		}

		history, err := repo.GetHistory(ctx)
		require.NoError(t, err)
		require.Len(t, history, 3)
		got := []int64{history[0].ID, history[1].ID, history[2].ID}
		assert.Equal(t, []int64{ids[2], ids[1], ids[0]}, got)
		assert.False(t, history[0].CreatedAt.Before(history[1].CreatedAt))
		assert.False(t, history[1].CreatedAt.Before(history[2].CreatedAt))
	})

	t.Run("очистка идемпотентна", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			_, err := repo.SaveCalculation(ctx, domain.Expression{FirstNumber: 8, SecondNumber: 2, Operation: domain.OpDivide}, 4)
			require.NoError(t, err)
		}
		for i := 0; i < 2; i++ {
			require.NoError(t, repo.ClearHistory(ctx), "очистка %d", i+1)
			history, err := repo.GetHistory(ctx)
			require.NoError(t, err)
			assert.Empty(t, history)
		}
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, newRepo(t).Ping(context.Background()))
	})
}
