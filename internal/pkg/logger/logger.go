package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const logFileName = "app.log"

// logSyncer открывает файл app.log и возвращает writer в файл + stderr (и в файл, и в консоль).
// При ошибке открытия файла возвращает только stderr.
func logSyncer() zapcore.WriteSyncer {
	f, err := os.OpenFile(logFileName, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zapcore.Lock(os.Stderr)
	}
	return zapcore.NewMultiWriteSyncer(zapcore.AddSync(f), zapcore.Lock(os.Stderr))
}

// ParseLevel переводит строку уровня (debug, info, warn, error) в zapcore.Level. Неизвестное — info.
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New возвращает JSON-логгер с выводом в app.log и stderr и уровнем Info.
func New() *zap.Logger {
	return NewWithLevel("info")
}

// NewWithLevel возвращает логгер с заданным уровнем (debug, info, warn, error).
func NewWithLevel(level string) *zap.Logger {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "time"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), logSyncer(), ParseLevel(level))
	return zap.New(core, zap.AddCaller())
}
