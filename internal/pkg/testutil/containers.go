// Package testutil поднимает Docker-контейнеры для интеграционных тестов хранилищ (testcontainers).
// Все хелперы пропускают тест в режиме -short.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/clickhouse"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Endpoint — адрес проброшенного порта контейнера.
type Endpoint struct {
	Host string
	Port string
}

// Addr возвращает "host:port".
func (e Endpoint) Addr() string {
	return fmt.Sprintf("%s:%s", e.Host, e.Port)
}

func skipShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("пропускаем интеграционный тест в short режиме")
	}
}

func endpoint(ctx context.Context, t *testing.T, c testcontainers.Container, port nat.Port) Endpoint {
	t.Helper()
	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	mapped, err := c.MappedPort(ctx, port)
	if err != nil {
		t.Fatalf("container port %s: %v", port, err)
	}
	return Endpoint{Host: host, Port: mapped.Port()}
}

// Postgres — параметры подключения к тестовому PostgreSQL.
type Postgres struct {
	Endpoint
	User     string
	Password string
	DBName   string
}

// StartPostgres поднимает PostgreSQL и останавливает его по завершении теста.
func StartPostgres(t *testing.T) Postgres {
	t.Helper()
	skipShort(t)
	ctx := context.Background()

	pg := Postgres{User: "test", Password: "test", DBName: "testdb"}
	c, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase(pg.DBName),
		postgres.WithUsername(pg.User),
		postgres.WithPassword(pg.Password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	testcontainers.CleanupContainer(t, c)
	if err != nil {
		t.Fatalf("postgres container: %v", err)
	}
	pg.Endpoint = endpoint(ctx, t, c, "5432/tcp")
	return pg
}

// StartRedis поднимает Redis и останавливает его по завершении теста.
func StartRedis(t *testing.T) Endpoint {
	t.Helper()
	skipShort(t)
	ctx := context.Background()

	c, err := redis.Run(ctx,
		"redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").WithStartupTimeout(30*time.Second),
		),
	)
	testcontainers.CleanupContainer(t, c)
	if err != nil {
		t.Fatalf("redis container: %v", err)
	}
	return endpoint(ctx, t, c, "6379/tcp")
}

// StartMongo поднимает MongoDB и возвращает URI для mongo-driver.
func StartMongo(t *testing.T) string {
	t.Helper()
	skipShort(t)
	ctx := context.Background()

	c, err := mongodb.Run(ctx,
		"mongo:7",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Waiting for connections").WithStartupTimeout(60*time.Second),
		),
	)
	testcontainers.CleanupContainer(t, c)
	if err != nil {
		t.Fatalf("mongo container: %v", err)
	}
	ep := endpoint(ctx, t, c, "27017/tcp")
	return fmt.Sprintf("mongodb://%s", ep.Addr())
}

// ClickHouse — параметры подключения к тестовому ClickHouse (нативный порт).
type ClickHouse struct {
	Endpoint
	User     string
	Password string
	Database string
}

// StartClickHouse поднимает ClickHouse и останавливает его по завершении теста.
func StartClickHouse(t *testing.T) ClickHouse {
	t.Helper()
	skipShort(t)
	ctx := context.Background()

	ch := ClickHouse{User: "default", Password: "", Database: "default"}
	c, err := clickhouse.Run(ctx,
		"clickhouse/clickhouse-server:24-alpine",
		clickhouse.WithUsername(ch.User),
		clickhouse.WithPassword(ch.Password),
		clickhouse.WithDatabase(ch.Database),
	)
	testcontainers.CleanupContainer(t, c)
	if err != nil {
		t.Fatalf("clickhouse container: %v", err)
	}
	ch.Endpoint = endpoint(ctx, t, c, "9000/tcp")
	return ch
}
