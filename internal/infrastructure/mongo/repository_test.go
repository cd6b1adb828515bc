package mongo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kidcalc/internal/pkg/testutil"
	"kidcalc/internal/ports"
)

func TestCalculationRepo_Contract(t *testing.T) {
	uri := testutil.StartMongo(t)
	ctx := context.Background()

	client, err := New(ctx, &Config{URI: uri, Database: "testdb", Collection: "calculations"})
	require.NoError(t, err, "не удалось подключиться к MongoDB")
	t.Cleanup(func() { client.Disconnect(context.Background()) })

	testutil.RunRepositoryContract(t, func(t *testing.T) ports.ICalculationRepository {
		if err := client.Coll().Drop(ctx); err != nil {
			t.Logf("drop collection: %v (игнорируем)", err)
		}
		return NewCalculationRepo(client, zap.NewNop())
	})
}
