package interceptors

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// LoggingUnaryInterceptor логирует каждый unary RPC: метод, длительность, код/ошибка (аналог HTTP request logger).
func LoggingUnaryInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	if log == nil {
		log = zap.NewNop()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		st := status.Convert(err)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			zap.String("grpc_code", st.Code().String()),
		}
		if err != nil {
			log.Warn("grpc request", append(fields, zap.String("error", st.Message()))...)
			return resp, err
		}
		log.Info("grpc request", fields...)
		return resp, nil
	}
}

// RecoveryUnaryInterceptor превращает панику в хэндлере в codes.Internal, процесс продолжает работать.
func RecoveryUnaryInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	if log == nil {
		log = zap.NewNop()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("grpc panic", zap.String("method", info.FullMethod), zap.Any("panic", r))
				err = status.Errorf(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}
