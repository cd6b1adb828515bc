package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	apigrpc "kidcalc/internal/api/grpc"
	apihttp "kidcalc/internal/api/http"
	"kidcalc/internal/api/http/controllers/calculator"
	"kidcalc/internal/api/http/controllers/system"
	"kidcalc/internal/infrastructure/click"
	"kidcalc/internal/infrastructure/kafka"
	"kidcalc/internal/pkg/logger"
	"kidcalc/internal/pkg/tracing"
	"kidcalc/internal/ports"
	calcUsecase "kidcalc/internal/usecase/calculator"
)

const shutdownTimeout = 10 * time.Second

// App — приложение, хранит только конфиг.
type App struct {
	cfg Config
}

// New создаёт приложение с конфигом (хранилище подключается в Run).
func New(cfg Config) *App {
	return &App{cfg: cfg}
}

// Run подключает хранилище, Kafka и ClickHouse (если включены), запускает gRPC и HTTP и
// блокируется до SIGINT/SIGTERM или падения одного из серверов.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.NewWithLevel(a.cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	shutdownTracing, err := tracing.Init(ctx, a.cfg.Tracing)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing shutdown", zap.Error(err))
		}
	}()

	repo, closeStore, err := openStore(ctx, a.cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	// интерфейсы остаются nil, если интеграция выключена: typed nil внутри интерфейса use case не распознает
	var broker ports.IProducer
	if a.cfg.Kafka.Enabled {
		producer := kafka.NewProducer(&a.cfg.Kafka)
		defer producer.Close()
		broker = producer
	}

	var analytics ports.ICalculationAnalytics
	if a.cfg.ClickHouse.Enabled {
		ch, err := click.New(ctx, &a.cfg.ClickHouse)
		if err != nil {
			return fmt.Errorf("clickhouse: %w", err)
		}
		defer ch.Close()
		writer := click.NewCalculationWriter(ch)
		if err := writer.EnsureTable(ctx); err != nil {
			return fmt.Errorf("clickhouse table: %w", err)
		}
		analytics = writer
	}

	uc := calcUsecase.New(repo, broker, analytics, log)

	grpcSrv := apigrpc.NewServer(a.cfg.Grpc.Addr(), uc, log)

	srv := apihttp.NewServer(a.cfg.Server, log)
	srv.AddController(
		system.New(repo, log),
		calculator.New(uc, log))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(gctx) })
	g.Go(grpcSrv.Start)
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return grpcSrv.Stop(sctx)
	})

	// консьюмер имеет смысл, только если есть куда писать
	if a.cfg.Kafka.Enabled && analytics != nil {
		consumer := kafka.NewConsumer(&a.cfg.Kafka, uc, log)
		defer consumer.Close()
		g.Go(func() error {
			if err := consumer.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("kafka consumer: %w", err)
			}
			return nil
		})
	}

	log.Info("application started",
		zap.String("http", a.cfg.Server.Host+":"+a.cfg.Server.Port),
		zap.String("grpc", a.cfg.Grpc.Addr()),
		zap.String("storage", a.cfg.Storage.Driver),
		zap.Bool("kafka", a.cfg.Kafka.Enabled),
		zap.Bool("clickhouse", a.cfg.ClickHouse.Enabled),
	)

	err = g.Wait()
	log.Info("application stopped", zap.Error(err))
	return err
}
