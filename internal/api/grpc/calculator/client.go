package calculator

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"kidcalc/internal/domain"
)

// Client — типизированный клиент CalculatorService. Ошибки сервера возвращаются как доменные
// (errors.Is(err, domain.ErrDivisionByZero) и т.д.).
type Client struct {
	cc   grpc.ClientConnInterface
	conn *grpc.ClientConn
}

// NewClient оборачивает готовое соединение. Закрывать его остаётся вызывающему.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Dial открывает соединение с сервисом по адресу host:port без TLS.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc client %s: %w", target, err)
	}
	return &Client{cc: conn, conn: conn}, nil
}

// Close закрывает соединение, открытое через Dial.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// PerformCalculation отправляет выражение на расчёт.
func (c *Client) PerformCalculation(ctx context.Context, expr domain.Expression) (*domain.CalculationResult, error) {
	req := &PerformCalculationRequest{
		FirstNumber:  &expr.FirstNumber,
		SecondNumber: &expr.SecondNumber,
		Operation:    expr.Operation.String(),
	}
	var resp PerformCalculationResponse
	if err := c.invoke(ctx, PerformCalculationMethod, req, &resp); err != nil {
		return nil, err
	}
	return &domain.CalculationResult{Result: resp.Result, Calculation: resp.Calculation}, nil
}

// History возвращает историю расчётов, новые первыми.
func (c *Client) History(ctx context.Context) ([]domain.Calculation, error) {
	var resp GetCalculationHistoryResponse
	if err := c.invoke(ctx, GetCalculationHistoryMethod, &GetCalculationHistoryRequest{}, &resp); err != nil {
		return nil, err
	}
	if resp.Calculations == nil {
		return []domain.Calculation{}, nil
	}
	return resp.Calculations, nil
}

// ClearHistory очищает историю.
func (c *Client) ClearHistory(ctx context.Context) (domain.ClearOutcome, error) {
	var resp ClearCalculationHistoryResponse
	if err := c.invoke(ctx, ClearCalculationHistoryMethod, &ClearCalculationHistoryRequest{}, &resp); err != nil {
		return domain.ClearOutcome{}, err
	}
	return domain.ClearOutcome{Success: resp.Success, Message: resp.Message}, nil
}

func (c *Client) Healthcheck(ctx context.Context) (*HealthcheckResponse, error) {
	var resp HealthcheckResponse
	if err := c.invoke(ctx, HealthcheckMethod, &HealthcheckRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) invoke(ctx context.Context, method string, in, out any) error {
	if err := c.cc.Invoke(ctx, method, in, out, grpc.ForceCodec(Codec{})); err != nil {
		return fromStatus(err)
	}
	return nil
}

// fromStatus — обратное к Server.toStatus.
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	// Unavailable бывает и у транспорта (сервер не поднят), поэтому смотрим и на код в сообщении.
	msg := st.Message()
	switch {
	case st.Code() == codes.InvalidArgument && strings.HasPrefix(msg, codeInvalidOperation):
		return fmt.Errorf("%w: %s", domain.ErrInvalidOperation, msg)
	case st.Code() == codes.InvalidArgument && strings.HasPrefix(msg, codeResultOutOfRange):
		return fmt.Errorf("%w: %s", domain.ErrResultOutOfRange, msg)
	case st.Code() == codes.FailedPrecondition && strings.HasPrefix(msg, codeDivisionByZero):
		return domain.ErrDivisionByZero
	case st.Code() == codes.Unavailable && strings.HasPrefix(msg, codeStorageFailure):
		return domain.NewStorageError("rpc", err)
	default:
		return err
	}
}
