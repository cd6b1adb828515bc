package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"kidcalc/internal/domain"
	"kidcalc/internal/ports"
)

var _ ports.ICalculationRepository = (*CalculationRepo)(nil)

// calculationDoc — документ в коллекции calculations. _id — числовой ID из коллекции counters.
type calculationDoc struct {
	ID           int64     `bson:"_id"`
	FirstNumber  float64   `bson:"first_number"`
	SecondNumber float64   `bson:"second_number"`
	Operation    string    `bson:"operation"`
	Result       float64   `bson:"result"`
	CreatedAt    time.Time `bson:"created_at"`
}

type counterDoc struct {
	Seq int64 `bson:"seq"`
}

// CalculationRepo реализует ports.ICalculationRepository для MongoDB.
type CalculationRepo struct {
	client *Client
	log    *zap.Logger
	now    func() time.Time
}

// NewCalculationRepo возвращает репозиторий расчётов.
func NewCalculationRepo(client *Client, log *zap.Logger) *CalculationRepo {
	return &CalculationRepo{client: client, log: log, now: time.Now}
}

func (r *CalculationRepo) nextID(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var counter counterDoc
	err := r.client.Counters().FindOneAndUpdate(ctx,
		bson.M{"_id": r.client.CollectionName()},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Seq, nil
}

// SaveCalculation сохраняет расчёт одним документом. Время — с точностью BSON (миллисекунды).
func (r *CalculationRepo) SaveCalculation(ctx context.Context, expr domain.Expression, result float64) (domain.Calculation, error) {
	id, err := r.nextID(ctx)
	if err != nil {
		r.log.Debug("SaveCalculation next id failed", zap.Error(err))
		return domain.Calculation{}, domain.NewStorageError("next id", err)
	}
	doc := calculationDoc{
		ID:           id,
		FirstNumber:  expr.FirstNumber,
		SecondNumber: expr.SecondNumber,
		Operation:    expr.Operation.String(),
		Result:       result,
		CreatedAt:    r.now().UTC().Truncate(time.Millisecond),
	}
	if _, err := r.client.Coll().InsertOne(ctx, doc); err != nil {
		r.log.Debug("SaveCalculation failed", zap.Error(err))
		return domain.Calculation{}, domain.NewStorageError("save calculation", err)
	}
	return toDomain(doc, expr.Operation), nil
}

// GetHistory возвращает историю расчётов (последние сначала, при равном времени — больший ID первым).
func (r *CalculationRepo) GetHistory(ctx context.Context) ([]domain.Calculation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.client.Coll().Find(ctx, bson.M{}, opts)
	if err != nil {
		r.log.Debug("GetHistory failed", zap.Error(err))
		return nil, domain.NewStorageError("get history", err)
	}
	defer cursor.Close(ctx)

	var docs []calculationDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, domain.NewStorageError("get history", err)
	}
	list := make([]domain.Calculation, 0, len(docs))
	for _, d := range docs {
		op, err := domain.ParseOperation(d.Operation)
		if err != nil {
			return nil, domain.NewStorageError("decode calculation", fmt.Errorf("doc %d: %w", d.ID, err))
		}
		list = append(list, toDomain(d, op))
	}
	return list, nil
}

// ClearHistory удаляет все документы коллекции. Счётчик ID не сбрасывается.
func (r *CalculationRepo) ClearHistory(ctx context.Context) error {
	if _, err := r.client.Coll().DeleteMany(ctx, bson.M{}); err != nil {
		r.log.Debug("ClearHistory failed", zap.Error(err))
		return domain.NewStorageError("clear history", err)
	}
	return nil
}

// Ping проверяет доступность БД.
func (r *CalculationRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

func toDomain(d calculationDoc, op domain.Operation) domain.Calculation {
	return domain.Calculation{
		ID:           d.ID,
		FirstNumber:  d.FirstNumber,
		SecondNumber: d.SecondNumber,
		Operation:    op,
		Result:       d.Result,
		CreatedAt:    d.CreatedAt.UTC(),
	}
}
