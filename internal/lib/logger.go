package lib

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const timeLayout = "2006-01-02T15:04:05"

// ILogger is the logging surface every long-lived component (Client,
// PoolManager, ...) is constructed with. It is satisfied by *Logger; tests
// use the *Logger that NewTestLogger builds.
type ILogger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Named(name string) ILogger
	With(args ...interface{}) ILogger
}

// Logger wraps a zap.SugaredLogger so packages depend on the small ILogger
// interface above instead of zap directly.
type Logger struct {
	*zap.SugaredLogger
}

// NewLogger builds a console-only (or console+file, when logDir != "")
// leveled logger. color/isJSON/isProd mirror the knobs operators expect
// from a CLI tool: colorized console output for an interactive terminal,
// JSON for log aggregation, a development encoder when isProd is false.
func NewLogger(level string, color, isProd, isJSON bool, logDir string) (*Logger, error) {
	log, err := newLogger(level, color, isProd, isJSON, logDir)
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: log.Sugar()}, nil
}

// NewTestLogger logs only to stdout at debug level, for use in tests.
func NewTestLogger() *Logger {
	log, _ := newLogger("debug", false, false, false, "")
	return &Logger{SugaredLogger: log.Sugar()}
}

func newLogger(levelStr string, color, isProd, isJSON bool, logDir string) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(levelStr)
	if err != nil {
		return nil, err
	}

	var core zapcore.Core
	if logDir != "" {
		fileCore, err := newFileCore(zapcore.DebugLevel, isProd, isJSON, logDir)
		if err != nil {
			return nil, err
		}
		core = zapcore.NewTee(fileCore, newConsoleCore(level, color, isProd, isJSON))
	} else {
		core = newConsoleCore(level, color, isProd, isJSON)
	}

	opts := []zap.Option{zap.AddStacktrace(zap.ErrorLevel)}
	if !isProd {
		opts = append(opts, zap.Development())
	}

	return zap.New(core, opts...), nil
}

func newConsoleCore(level zapcore.Level, color, isProd, isJSON bool) zapcore.Core {
	encoderCfg := newEncoderCfg(isProd, color, isJSON)

	var encoder zapcore.Encoder
	if isJSON {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}
	return zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level)
}

func newEncoderCfg(isProd, color, isJSON bool) zapcore.EncoderConfig {
	var encoderCfg zapcore.EncoderConfig
	if isProd {
		encoderCfg = zap.NewProductionEncoderConfig()
	} else {
		encoderCfg = zap.NewDevelopmentEncoderConfig()
		encoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
	}

	if color && !isJSON {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return encoderCfg
}

func newFileCore(level zapcore.Level, isProd, isJSON bool, dir string) (zapcore.Core, error) {
	encoderCfg := newEncoderCfg(isProd, false, isJSON)
	if !isJSON {
		encoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
	}

	var encoder zapcore.Encoder
	if isJSON {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	newDir := filepath.Join(".", SanitizeFilename(dir))
	if err := os.MkdirAll(newDir, os.ModePerm); err != nil {
		return nil, err
	}
	fpath := filepath.Join(newDir, fmt.Sprintf("%s.log", time.Now().Format(timeLayout)))
	file, err := os.OpenFile(fpath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0666)
	if err != nil {
		return nil, err
	}

	return zapcore.NewCore(encoder, zapcore.AddSync(file), level), nil
}

func (l *Logger) Named(name string) ILogger {
	return &Logger{l.SugaredLogger.Named(name)}
}

func (l *Logger) With(args ...interface{}) ILogger {
	return &Logger{l.SugaredLogger.With(args...)}
}
