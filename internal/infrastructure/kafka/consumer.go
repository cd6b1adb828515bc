package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"kidcalc/internal/domain"
)

// EventHandler — обработчик события о сохранённом расчёте (реализует use case).
type EventHandler interface {
	HandleCalculationEvent(ctx context.Context, c domain.Calculation) error
}

// reader — то, что консьюмеру нужно от kafka.Reader.
type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer — обёртка над kafka.Reader, декодирует сообщения в domain.Calculation и вызывает обработчик.
type Consumer struct {
	r   reader
	h   EventHandler
	log *zap.Logger

	// Пауза перед повтором упавшего обработчика: от retryBase, удваивается до retryMax.
	retryBase time.Duration
	retryMax  time.Duration
}

const (
	defaultRetryBase = 200 * time.Millisecond
	defaultRetryMax  = 30 * time.Second
)

// NewConsumer создаёт консьюмера по конфигу, обработчику и логгеру. После использования вызови Close().
func NewConsumer(cfg *Config, h EventHandler, log *zap.Logger) *Consumer {
	c := New(cfg).Consumer()
	c.h = h
	c.log = log
	return c
}

// Run в цикле читает сообщения, декодирует JSON в domain.Calculation, вызывает обработчик и коммитит при успехе.
// Битые сообщения коммитятся и пропускаются. При ошибке обработчика то же сообщение повторяется
// с нарастающей паузой, пока обработчик не отработает: следующий коммит сдвинул бы offset за него.
// Выход по отмене ctx или при ошибке чтения.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msg, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Error("kafka consumer stopped", zap.Error(err))
			return err
		}

		var calc domain.Calculation
		if err := json.Unmarshal(msg.Value, &calc); err != nil {
			c.log.Warn("kafka unmarshal error, skip", zap.Error(err),
				zap.String("topic", msg.Topic), zap.Int("partition", msg.Partition), zap.Int64("offset", msg.Offset))
			_ = c.r.CommitMessages(ctx, msg)
			continue
		}

		if err := c.handle(ctx, msg, calc); err != nil {
			return err
		}

		if err := c.r.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Error("kafka consumer stopped (commit)", zap.Error(err))
			return err
		}
	}
}

// handle вызывает обработчик до успеха. Ошибку возвращает только при отмене ctx.
func (c *Consumer) handle(ctx context.Context, msg kafka.Message, calc domain.Calculation) error {
	base, maxDelay := c.retryBase, c.retryMax
	if base <= 0 {
		base = defaultRetryBase
	}
	if maxDelay <= 0 {
		maxDelay = defaultRetryMax
	}

	delay := base
	for attempt := 1; ; attempt++ {
		err := c.h.HandleCalculationEvent(ctx, calc)
		if err == nil {
			return nil
		}
		c.log.Warn("kafka handle error, retrying", zap.Error(err), zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.String("topic", msg.Topic), zap.Int("partition", msg.Partition), zap.Int64("offset", msg.Offset))

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay = min(delay*2, maxDelay)
	}
}

// Close закрывает консьюмера.
func (c *Consumer) Close() error {
	return c.r.Close()
}
