package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	apigrpc "kidcalc/internal/api/grpc"
	"kidcalc/internal/api/http"
	"kidcalc/internal/infrastructure/click"
	"kidcalc/internal/infrastructure/kafka"
	"kidcalc/internal/infrastructure/mongo"
	"kidcalc/internal/infrastructure/pg"
	"kidcalc/internal/infrastructure/redis"
	"kidcalc/internal/infrastructure/sqlite"
	"kidcalc/internal/pkg/tracing"
)

const AppName = "CALCULATOR"

// envFileVar — путь к .env, по умолчанию .env в рабочей директории.
const envFileVar = AppName + "_ENV_FILE"

// Драйверы хранилища истории.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
	DriverRedis    = "redis"
)

// StorageConfig — выбор хранилища. Переменная: CALCULATOR_STORAGE_DRIVER.
type StorageConfig struct {
	Driver string `envconfig:"DRIVER" default:"postgres"`
}

// Config — конфиг приложения. Заполняется через envconfig с префиксом CALCULATOR.
type Config struct {
	LogLevel   string            `envconfig:"LOG_LEVEL" default:"info"`
	Server     http.ServerConfig `envconfig:"SERVER"`
	Grpc       apigrpc.Config    `envconfig:"GRPC"`
	Storage    StorageConfig     `envconfig:"STORAGE"`
	DB         pg.Config         `envconfig:"DB"`
	SQLite     sqlite.Config     `envconfig:"SQLITE"`
	Mongo      mongo.Config      `envconfig:"MONGO"`
	Redis      redis.Config      `envconfig:"REDIS"`
	Kafka      kafka.Config      `envconfig:"KAFKA"`
	ClickHouse click.Config      `envconfig:"CLICKHOUSE"`
	Tracing    tracing.Config    `envconfig:"TRACING"`
}

// Validate проверяет значения, которые envconfig не умеет проверить сам.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case DriverPostgres, DriverSQLite, DriverMongo, DriverRedis:
		return nil
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
}

// LoadCfg загружает конфиг: подтягивает .env (godotenv), затем заполняет структуру из окружения (envconfig).
// Отсутствующий .env не ошибка. Переменные окружения важнее значений из файла.
func LoadCfg() (Config, error) {
	path := os.Getenv(envFileVar)
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", path, err)
	}

	var cfg Config
	if err := envconfig.Process(AppName, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
