package calculator

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"kidcalc/internal/domain"
	"kidcalc/internal/ports"
)

// Коды ошибок в тексте статуса: те же строки, что и в HTTP API.
const (
	codeInvalidRequest   = "INVALID_REQUEST"
	codeInvalidOperation = "INVALID_OPERATION"
	codeDivisionByZero   = "DIVISION_BY_ZERO"
	codeResultOutOfRange = "RESULT_OUT_OF_RANGE"
	codeStorageFailure   = "STORAGE_FAILURE"
)

// Server реализует CalculatorService поверх use case калькулятора.
type Server struct {
	uc  ports.ICalculatorUseCase
	log *zap.Logger
	now func() time.Time
}

var _ CalculatorServiceServer = (*Server)(nil)

// New создаёт gRPC-сервер калькулятора.
func New(uc ports.ICalculatorUseCase, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{uc: uc, log: log, now: time.Now}
}

// PerformCalculation проверяет операцию, считает и сохраняет запись.
func (s *Server) PerformCalculation(ctx context.Context, req *PerformCalculationRequest) (*PerformCalculationResponse, error) {
	if req.FirstNumber == nil || req.SecondNumber == nil {
		return nil, status.Errorf(codes.InvalidArgument, "%s: first_number and second_number are required", codeInvalidRequest)
	}
	op, err := domain.ParseOperation(req.Operation)
	if err != nil {
		return nil, s.toStatus(err)
	}
	res, err := s.uc.PerformCalculation(ctx, *req.FirstNumber, *req.SecondNumber, op)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return &PerformCalculationResponse{Result: res.Result, Calculation: res.Calculation}, nil
}

// GetCalculationHistory возвращает историю, новые записи первыми.
func (s *Server) GetCalculationHistory(ctx context.Context, _ *GetCalculationHistoryRequest) (*GetCalculationHistoryResponse, error) {
	list, err := s.uc.History(ctx)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return &GetCalculationHistoryResponse{Calculations: list}, nil
}

// ClearCalculationHistory удаляет всю историю.
func (s *Server) ClearCalculationHistory(ctx context.Context, _ *ClearCalculationHistoryRequest) (*ClearCalculationHistoryResponse, error) {
	out, err := s.uc.ClearHistory(ctx)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return &ClearCalculationHistoryResponse{Success: out.Success, Message: out.Message}, nil
}

func (s *Server) Healthcheck(context.Context, *HealthcheckRequest) (*HealthcheckResponse, error) {
	return &HealthcheckResponse{Status: "ok", Timestamp: s.now().UTC()}, nil
}

// toStatus переводит доменную ошибку в gRPC-статус. Код ошибки API идёт первым словом сообщения.
func (s *Server) toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidOperation):
		return status.Errorf(codes.InvalidArgument, "%s: %v", codeInvalidOperation, err)
	case errors.Is(err, domain.ErrDivisionByZero):
		return status.Errorf(codes.FailedPrecondition, "%s: %v", codeDivisionByZero, err)
	case errors.Is(err, domain.ErrResultOutOfRange):
		return status.Errorf(codes.InvalidArgument, "%s: %v", codeResultOutOfRange, err)
	case errors.Is(err, domain.ErrStorage):
		s.log.Error("storage failed", zap.Error(err))
		return status.Errorf(codes.Unavailable, "%s: %v", codeStorageFailure, err)
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		s.log.Error("rpc failed", zap.Error(err))
		return status.Errorf(codes.Internal, "%v", err)
	}
}
