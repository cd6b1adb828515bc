package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"kidcalc/internal/domain"
	"kidcalc/internal/ports"
)

var _ ports.ICalculationRepository = (*HistoryStore)(nil)

// HistoryStore реализует ports.ICalculationRepository через Redis.
// История — sorted set: score = created_at в unix-микросекундах, member = "<id с нулями>|<JSON записи>".
// При равном score Redis сортирует member лексикографически, поэтому ID дополнен нулями до 20 знаков.
// ID выдаёт INCR по ключу "<key>:seq".
type HistoryStore struct {
	cli *Client
	key string
	log *zap.Logger
	now func() time.Time
}

// NewHistoryStore возвращает хранилище истории по ключу key.
func NewHistoryStore(cli *Client, key string, log *zap.Logger) *HistoryStore {
	return &HistoryStore{cli: cli, key: key, log: log, now: time.Now}
}

func (s *HistoryStore) seqKey() string {
	return s.key + ":seq"
}

// SaveCalculation назначает ID и время и добавляет запись одним ZADD.
func (s *HistoryStore) SaveCalculation(ctx context.Context, expr domain.Expression, result float64) (domain.Calculation, error) {
	id, err := s.cli.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		s.log.Debug("history seq failed", zap.Error(err))
		return domain.Calculation{}, domain.NewStorageError("next id", err)
	}

	c := domain.Calculation{
		ID:           id,
		FirstNumber:  expr.FirstNumber,
		SecondNumber: expr.SecondNumber,
		Operation:    expr.Operation,
		Result:       result,
		CreatedAt:    s.now().UTC().Truncate(time.Microsecond),
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return domain.Calculation{}, domain.NewStorageError("encode calculation", err)
	}

	z := redis.Z{Score: float64(c.CreatedAt.UnixMicro()), Member: encodeMember(id, raw)}
	if err := s.cli.ZAdd(ctx, s.key, z).Err(); err != nil {
		s.log.Debug("history add failed", zap.Int64("id", id), zap.Error(err))
		return domain.Calculation{}, domain.NewStorageError("save calculation", err)
	}
	return c, nil
}

// GetHistory возвращает все записи по убыванию времени создания.
func (s *HistoryStore) GetHistory(ctx context.Context) ([]domain.Calculation, error) {
	members, err := s.cli.ZRevRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		s.log.Debug("history range failed", zap.Error(err))
		return nil, domain.NewStorageError("get history", err)
	}
	list := make([]domain.Calculation, 0, len(members))
	for _, m := range members {
		var c domain.Calculation
		if err := decodeMember(m, &c); err != nil {
			return nil, domain.NewStorageError("decode calculation", err)
		}
		list = append(list, c)
	}
	return list, nil
}

// ClearHistory удаляет sorted set целиком. Счётчик ID остаётся.
func (s *HistoryStore) ClearHistory(ctx context.Context) error {
	if err := s.cli.Del(ctx, s.key).Err(); err != nil {
		s.log.Debug("history clear failed", zap.Error(err))
		return domain.NewStorageError("clear history", err)
	}
	return nil
}

// Ping проверяет соединение (для readiness).
func (s *HistoryStore) Ping(ctx context.Context) error {
	return s.cli.Ping(ctx).Err()
}

func encodeMember(id int64, raw []byte) string {
	return fmt.Sprintf("%020d|%s", id, raw)
}

func decodeMember(member string, c *domain.Calculation) error {
	_, raw, ok := strings.Cut(member, "|")
	if !ok {
		return fmt.Errorf("malformed member %q", member)
	}
	return json.Unmarshal([]byte(raw), c)
}
