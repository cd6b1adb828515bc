package grpc

import (
	"context"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"kidcalc/internal/api/grpc/calculator"
	"kidcalc/internal/api/grpc/interceptors"
	"kidcalc/internal/ports"
)

// Config — настройки gRPC-сервера. Переменные: CALCULATOR_GRPC_HOST, CALCULATOR_GRPC_PORT.
type Config struct {
	Host string `envconfig:"HOST" default:"0.0.0.0"`
	Port string `envconfig:"PORT" default:"9090"`
}

// Addr — адрес для net.Listen.
func (c Config) Addr() string { return net.JoinHostPort(c.Host, c.Port) }

// Server — gRPC-сервер: регистрирует сервисы и слушает порт.
type Server struct {
	grpc *grpc.Server
	addr string
	log  *zap.Logger
}

// NewServer создаёт gRPC-сервер и регистрирует CalculatorService. Сообщения кодируются JSON-кодеком,
// логирующий интерцептор пишет метод, latency_ms и grpc_code (аналог HTTP middleware).
func NewServer(addr string, uc ports.ICalculatorUseCase, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := grpc.NewServer(
		grpc.ForceServerCodec(calculator.Codec{}),
		grpc.ChainUnaryInterceptor(
			interceptors.RecoveryUnaryInterceptor(log),
			interceptors.LoggingUnaryInterceptor(log),
		),
	)
	calculator.RegisterCalculatorServiceServer(s, calculator.New(uc, log))
	return &Server{grpc: s, addr: addr, log: log}
}

// Start слушает addr и принимает соединения (блокируется). Остановка через Stop().
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(lis)
}

// Serve принимает соединения на готовом listener (bufconn в тестах).
func (s *Server) Serve(lis net.Listener) error {
	s.log.Info("grpc server listening", zap.String("addr", lis.Addr().String()))
	return s.grpc.Serve(lis)
}

// Stop останавливает сервер (graceful). Если ctx истёк раньше — обрывает соединения.
func (s *Server) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.grpc.Stop()
		return ctx.Err()
	}
}
