package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"kidcalc/internal/infrastructure/mongo"
	"kidcalc/internal/infrastructure/pg"
	"kidcalc/internal/infrastructure/redis"
	"kidcalc/internal/infrastructure/sqlite"
	"kidcalc/internal/ports"
)

// openStore подключает хранилище истории по Storage.Driver. closeFn освобождает соединение.
func openStore(ctx context.Context, cfg Config, log *zap.Logger) (repo ports.ICalculationRepository, closeFn func(), err error) {
	switch cfg.Storage.Driver {
	case DriverPostgres:
		db, err := pg.New(ctx, &cfg.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("db: %w", err)
		}
		if err := pg.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		return pg.NewCalculationRepo(db, log), func() { _ = db.Close() }, nil

	case DriverSQLite:
		db, err := sqlite.New(ctx, &cfg.SQLite)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite: %w", err)
		}
		return sqlite.NewCalculationRepo(db, log), func() { _ = db.Close() }, nil

	case DriverMongo:
		cli, err := mongo.New(ctx, &cfg.Mongo)
		if err != nil {
			return nil, nil, fmt.Errorf("mongo: %w", err)
		}
		return mongo.NewCalculationRepo(cli, log), func() { _ = cli.Disconnect(context.Background()) }, nil

	case DriverRedis:
		cli, err := redis.New(ctx, &cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		return redis.NewHistoryStore(cli, cfg.Redis.Key, log), func() { _ = cli.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
