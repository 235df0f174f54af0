package logger

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	Log   *zap.Logger
	Sugar *zap.SugaredLogger
)

const defaultLogFile = "logs/swarm-sim.log"

func init() {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format("2006/01/02 15:04:05"))
	}
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	level := zapcore.InfoLevel
	levelStr := strings.TrimSpace(os.Getenv("SIM_LOG_LEVEL"))
	if levelStr == "" {
		levelStr = strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	}
	if levelStr != "" {
		_ = level.UnmarshalText([]byte(strings.ToLower(levelStr)))
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		openSink(),
		level,
	)

	Log = zap.New(core, zap.AddCaller())
	Sugar = Log.Sugar()
}

// openSink returns the log file writer, or stderr when the file can't be
// created (read-only working directory, tests run from a package dir).
func openSink() zapcore.WriteSyncer {
	path := strings.TrimSpace(os.Getenv("SIM_LOG_FILE"))
	if path == "" {
		path = defaultLogFile
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return zapcore.Lock(os.Stderr)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return zapcore.Lock(os.Stderr)
	}
	return zapcore.AddSync(file)
}
