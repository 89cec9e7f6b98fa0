package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// LogLevel 日志级别，数值越大输出越详细
type LogLevel int32

const (
	LogError LogLevel = iota
	LogWarn
	LogInfo
	LogDebug
)

var levelNames = map[string]LogLevel{
	"error":   LogError,
	"warn":    LogWarn,
	"warning": LogWarn,
	"info":    LogInfo,
	"debug":   LogDebug,
}

// String 返回日志级别字符串
func (l LogLevel) String() string {
	switch l {
	case LogError:
		return "ERROR"
	case LogWarn:
		return "WARN"
	case LogInfo:
		return "INFO"
	case LogDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// MarshalText 实现 encoding.TextMarshaler
func (l LogLevel) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(l.String())), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler，拒绝未知名称
func (l *LogLevel) UnmarshalText(text []byte) error {
	v, ok := levelNames[strings.ToLower(strings.TrimSpace(string(text)))]
	if !ok {
		return fmt.Errorf("logging: unknown level %q", text)
	}
	*l = v
	return nil
}

// ParseLevel 解析日志级别名称，未知名称返回 LogInfo
func ParseLevel(s string) LogLevel {
	var l LogLevel
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return LogInfo
	}
	return l
}

// Logger 日志接口
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
	SetLevel(level LogLevel)
	GetLevel() LogLevel
}

// DefaultLogger 按行输出 "[LEVEL] message" 的文本日志
// 级别可并发修改，写入由互斥锁串行化
type DefaultLogger struct {
	level  atomic.Int32
	mu     sync.Mutex
	output io.Writer
	// now 非 nil 时每行前加 RFC3339 时间戳
	now func() time.Time
}

// NewDefaultLogger 创建写标准输出、带时间戳的日志
func NewDefaultLogger(level LogLevel) *DefaultLogger {
	l := &DefaultLogger{output: os.Stdout, now: time.Now}
	l.SetLevel(level)
	return l
}

// NewDefaultLoggerWithOutput 创建写入 output 的日志，不带时间戳
func NewDefaultLoggerWithOutput(level LogLevel, output io.Writer) *DefaultLogger {
	l := &DefaultLogger{output: output}
	l.SetLevel(level)
	return l
}

// SetLevel 设置日志级别
func (l *DefaultLogger) SetLevel(level LogLevel) { l.level.Store(int32(level)) }

// GetLevel 获取日志级别
func (l *DefaultLogger) GetLevel() LogLevel { return LogLevel(l.level.Load()) }

func (l *DefaultLogger) Debug(format string, args ...interface{}) { l.logf(LogDebug, format, args) }
func (l *DefaultLogger) Info(format string, args ...interface{})  { l.logf(LogInfo, format, args) }
func (l *DefaultLogger) Warn(format string, args ...interface{})  { l.logf(LogWarn, format, args) }
func (l *DefaultLogger) Error(format string, args ...interface{}) { l.logf(LogError, format, args) }

func (l *DefaultLogger) logf(level LogLevel, format string, args []interface{}) {
	if level > l.GetLevel() {
		return
	}

	var b strings.Builder
	if l.now != nil {
		b.WriteString(l.now().Format(time.RFC3339))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "[%s] ", level)
	fmt.Fprintf(&b, format, args...)
	b.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.output, b.String())
}

// NoOpLogger 空日志实现（用于禁用日志）
type NoOpLogger struct{}

// NewNoOpLogger 创建空日志
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (l *NoOpLogger) Debug(format string, args ...interface{}) {}
func (l *NoOpLogger) Info(format string, args ...interface{})  {}
func (l *NoOpLogger) Warn(format string, args ...interface{})  {}
func (l *NoOpLogger) Error(format string, args ...interface{}) {}
func (l *NoOpLogger) SetLevel(level LogLevel)                  {}
func (l *NoOpLogger) GetLevel() LogLevel                       { return LogInfo }
