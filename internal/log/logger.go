package log

import (
	"encoding/json"
	//nolint:depguard
	"log"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// Fatal is for early init failures only, before a Logger exists.
func Fatal(v ...any) {
	log.Fatal(v...)
}

// Logger wraps zap with hierarchical module naming. Sub-loggers created
// with Module inherit the parent's name chain and resolve their own
// level from the environment (see config.go).
type Logger struct {
	*zap.Logger
	names []string
	build func(names []string) *zap.Logger
}

func (l *Logger) Module(name string) *Logger {
	names := append(append([]string{}, l.names...), name)
	return &Logger{
		names:  names,
		Logger: l.build(names),
		build:  l.build,
	}
}

// NewLogger builds a logger from a zap JSON config file, or the default
// console logger when configFile is empty.
func NewLogger(configFile string) (*Logger, error) {
	if configFile == "" {
		return newConsoleLogger(), nil
	}

	bs, err := os.ReadFile(configFile)
	if err != nil {
		return nil, err
	}

	cfg := zap.Config{}
	if err := json.Unmarshal(bs, &cfg); err != nil {
		return nil, err
	}
	zl, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{
		Logger: zl.Named("main"),
		build: func(names []string) *zap.Logger {
			return zl.Named(strings.Join(names, "."))
		},
	}, nil
}

func newConsoleLogger() *Logger {
	encCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeName: func(name string, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString("[" + name + "]")
		},
	}

	encoder := zapcore.NewConsoleEncoder(encCfg)
	writer := zapcore.AddSync(os.Stdout)

	newCore := func(lv zapcore.Level) zapcore.Core {
		return zapcore.NewCore(encoder, writer, zap.NewAtomicLevelAt(lv))
	}

	rootLevel := zapcore.InfoLevel
	if lv, ok := parseLevelFromEnv("LOG_LEVEL"); ok {
		rootLevel = lv
	}

	return &Logger{
		Logger: zap.New(
			newCore(rootLevel),
			zap.AddStacktrace(zapcore.FatalLevel),
		).Named("main"),
		build: func(names []string) *zap.Logger {
			return zap.New(
				newCore(moduleLevel(names)),
				zap.AddStacktrace(zapcore.FatalLevel),
			).Named(strings.Join(names, "."))
		},
	}
}

func NewTest(t *testing.T) *Logger {
	zl := zaptest.NewLogger(t)
	return &Logger{
		Logger: zl,
		build: func(names []string) *zap.Logger {
			return zl.Named(strings.Join(names, "."))
		},
	}
}

func NewNop() *Logger {
	zl := zap.NewNop()
	return &Logger{
		Logger: zl,
		build: func(_ []string) *zap.Logger {
			return zl
		},
	}
}
