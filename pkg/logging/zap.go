package logging

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kasuganosora/daqnet/pkg/config"
)

// ZapLogger 基于 zap 的 Logger 实现
type ZapLogger struct {
	sugar *zap.SugaredLogger
	level zap.AtomicLevel
}

// NewZapLogger 创建写入 w 的 zap 日志
func NewZapLogger(level LogLevel, format string, w io.Writer) *ZapLogger {
	atom := zap.NewAtomicLevelAt(toZapLevel(level))

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if strings.EqualFold(format, "json") {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), atom)
	return &ZapLogger{
		sugar: zap.New(core).Sugar(),
		level: atom,
	}
}

// New 按配置创建日志
// 指定文件时经 lumberjack 轮转写入，否则写标准输出
func New(cfg config.LogConfig) Logger {
	level := ParseLevel(cfg.Level)
	if cfg.File == "" {
		if strings.EqualFold(cfg.Format, "json") {
			return NewZapLogger(level, "json", os.Stdout)
		}
		return NewDefaultLogger(level)
	}

	w := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	return NewZapLogger(level, cfg.Format, w)
}

func toZapLevel(l LogLevel) zapcore.Level {
	switch l {
	case LogError:
		return zapcore.ErrorLevel
	case LogWarn:
		return zapcore.WarnLevel
	case LogDebug:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

func fromZapLevel(l zapcore.Level) LogLevel {
	switch {
	case l >= zapcore.ErrorLevel:
		return LogError
	case l == zapcore.WarnLevel:
		return LogWarn
	case l == zapcore.DebugLevel:
		return LogDebug
	default:
		return LogInfo
	}
}

// Debug 输出 DEBUG 级别日志
func (l *ZapLogger) Debug(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }

// Info 输出 INFO 级别日志
func (l *ZapLogger) Info(format string, args ...interface{}) { l.sugar.Infof(format, args...) }

// Warn 输出 WARN 级别日志
func (l *ZapLogger) Warn(format string, args ...interface{}) { l.sugar.Warnf(format, args...) }

// Error 输出 ERROR 级别日志
func (l *ZapLogger) Error(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// SetLevel 设置日志级别
func (l *ZapLogger) SetLevel(level LogLevel) { l.level.SetLevel(toZapLevel(level)) }

// GetLevel 获取日志级别
func (l *ZapLogger) GetLevel() LogLevel { return fromZapLevel(l.level.Level()) }

// Sync 刷新缓冲
func (l *ZapLogger) Sync() error { return l.sugar.Sync() }
