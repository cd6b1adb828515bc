package calculator

import (
	"context"
	"time"

	"google.golang.org/grpc"

	"kidcalc/internal/domain"
)

// ServiceName — полное имя gRPC-сервиса.
const ServiceName = "kidcalc.v1.CalculatorService"

// Полные имена методов, как их видят интерцепторы и клиент.
const (
	PerformCalculationMethod      = "/" + ServiceName + "/PerformCalculation"
	GetCalculationHistoryMethod   = "/" + ServiceName + "/GetCalculationHistory"
	ClearCalculationHistoryMethod = "/" + ServiceName + "/ClearCalculationHistory"
	HealthcheckMethod             = "/" + ServiceName + "/Healthcheck"
)

// PerformCalculationRequest — операнды указателями: отсутствующее поле не должно превращаться в 0.
type PerformCalculationRequest struct {
	FirstNumber  *float64 `json:"first_number"`
	SecondNumber *float64 `json:"second_number"`
	Operation    string   `json:"operation"`
}

type PerformCalculationResponse struct {
	Result      float64            `json:"result"`
	Calculation domain.Calculation `json:"calculation"`
}

type GetCalculationHistoryRequest struct{}

type GetCalculationHistoryResponse struct {
	Calculations []domain.Calculation `json:"calculations"`
}

type ClearCalculationHistoryRequest struct{}

type ClearCalculationHistoryResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type HealthcheckRequest struct{}

type HealthcheckResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// CalculatorServiceServer — серверная сторона CalculatorService.
type CalculatorServiceServer interface {
	PerformCalculation(context.Context, *PerformCalculationRequest) (*PerformCalculationResponse, error)
	GetCalculationHistory(context.Context, *GetCalculationHistoryRequest) (*GetCalculationHistoryResponse, error)
	ClearCalculationHistory(context.Context, *ClearCalculationHistoryRequest) (*ClearCalculationHistoryResponse, error)
	Healthcheck(context.Context, *HealthcheckRequest) (*HealthcheckResponse, error)
}

// ServiceDesc описывает CalculatorService для grpc.Server. Пишется руками вместо protoc-генерации:
// сообщения — обычные Go-структуры, которые кодирует Codec.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CalculatorServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "PerformCalculation",
			Handler:    unaryHandler(PerformCalculationMethod, CalculatorServiceServer.PerformCalculation),
		},
		{
			MethodName: "GetCalculationHistory",
			Handler:    unaryHandler(GetCalculationHistoryMethod, CalculatorServiceServer.GetCalculationHistory),
		},
		{
			MethodName: "ClearCalculationHistory",
			Handler:    unaryHandler(ClearCalculationHistoryMethod, CalculatorServiceServer.ClearCalculationHistory),
		},
		{
			MethodName: "Healthcheck",
			Handler:    unaryHandler(HealthcheckMethod, CalculatorServiceServer.Healthcheck),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "kidcalc/v1/calculator",
}

// RegisterCalculatorServiceServer регистрирует реализацию сервиса на gRPC-сервере.
func RegisterCalculatorServiceServer(s grpc.ServiceRegistrar, srv CalculatorServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unaryHandler повторяет то, что protoc-gen-go-grpc генерирует для каждого unary-метода:
// декодирует запрос и пропускает вызов через цепочку интерцепторов.
func unaryHandler[Req, Resp any](
	fullMethod string,
	call func(CalculatorServiceServer, context.Context, *Req) (*Resp, error),
) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CalculatorServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CalculatorServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
