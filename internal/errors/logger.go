package errors

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger 结构化日志接口
type Logger interface {
	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})

	WithContext(ctx context.Context) Logger
	WithField(key string, value interface{}) Logger
	WithFields(fields Fields) Logger
	WithError(err error) Logger
	WithRequestID(requestID string) Logger
	WithOperation(operation string) Logger

	LogOperation(operation string, startTime time.Time, err error)
	LogError(err error, keysAndValues ...interface{})
	LogAppError(appErr *AppError, keysAndValues ...interface{})

	SetLevel(level string) error
	SetFormatter(format string) error

	// GetUnderlying 获取底层 logrus 实例
	GetUnderlying() *logrus.Logger
}

// Fields 日志字段
type Fields map[string]interface{}

// StructuredLogger 基于 logrus 的结构化日志器
type StructuredLogger struct {
	logger    *logrus.Logger
	requestID string
	operation string
	fields    Fields
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        string `json:"level" yaml:"level"`
	Format       string `json:"format" yaml:"format"`
	Output       string `json:"output" yaml:"output"`
	EnableCaller bool   `json:"enable_caller" yaml:"enable_caller"`
}

// DefaultLoggerConfig 默认日志配置
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}
}

// NewLogger 创建新的结构化日志器
func NewLogger(config *LoggerConfig) (Logger, error) {
	if config == nil {
		config = DefaultLoggerConfig()
	}

	logger := logrus.New()

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %s: %w", config.Level, err)
	}
	logger.SetLevel(level)

	formatter, err := createFormatter(config.Format)
	if err != nil {
		return nil, err
	}
	logger.SetFormatter(formatter)
	logger.SetReportCaller(config.EnableCaller)

	output, err := createOutput(config.Output)
	if err != nil {
		return nil, err
	}
	logger.SetOutput(output)

	return FromLogrus(logger), nil
}

// FromLogrus 用已有的 logrus 实例构建结构化日志器
func FromLogrus(logger *logrus.Logger) Logger {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &StructuredLogger{
		logger: logger,
		fields: make(Fields),
	}
}

func createFormatter(format string) (logrus.Formatter, error) {
	switch strings.ToLower(format) {
	case "", "json":
		return &logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			CallerPrettyfier: func(f *runtime.Frame) (string, string) {
				filename := f.File
				if idx := strings.LastIndex(filename, "/"); idx >= 0 {
					filename = filename[idx+1:]
				}
				return f.Function, fmt.Sprintf("%s:%d", filename, f.Line)
			},
		}, nil
	case "text":
		return &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}
}

func createOutput(output string) (io.Writer, error) {
	switch strings.ToLower(output) {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		// #nosec G304 - 日志文件路径来自配置
		file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", output, err)
		}
		return file, nil
	}
}

func (l *StructuredLogger) entry(keysAndValues ...interface{}) *logrus.Entry {
	fields := make(logrus.Fields, len(l.fields)+len(keysAndValues)/2+2)
	for k, v := range l.fields {
		fields[k] = v
	}
	if l.requestID != "" {
		fields["request_id"] = l.requestID
	}
	if l.operation != "" {
		fields["operation"] = l.operation
	}
	// 奇数个参数时忽略最后一个
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
	return l.logger.WithFields(fields)
}

func (l *StructuredLogger) Debugw(msg string, keysAndValues ...interface{}) {
	l.entry(keysAndValues...).Debug(msg)
}

func (l *StructuredLogger) Infow(msg string, keysAndValues ...interface{}) {
	l.entry(keysAndValues...).Info(msg)
}

func (l *StructuredLogger) Warnw(msg string, keysAndValues ...interface{}) {
	l.entry(keysAndValues...).Warn(msg)
}

func (l *StructuredLogger) Errorw(msg string, keysAndValues ...interface{}) {
	l.entry(keysAndValues...).Error(msg)
}

// WithContext 从 context 中读取请求ID和操作名称
func (l *StructuredLogger) WithContext(ctx context.Context) Logger {
	newLogger := l.clone()
	if requestID := GetRequestID(ctx); requestID != "" {
		newLogger.requestID = requestID
	}
	if operation := GetOperation(ctx); operation != "" {
		newLogger.operation = operation
	}
	return newLogger
}

func (l *StructuredLogger) WithField(key string, value interface{}) Logger {
	newLogger := l.clone()
	newLogger.fields[key] = value
	return newLogger
}

func (l *StructuredLogger) WithFields(fields Fields) Logger {
	newLogger := l.clone()
	for k, v := range fields {
		newLogger.fields[k] = v
	}
	return newLogger
}

func (l *StructuredLogger) WithError(err error) Logger {
	newLogger := l.clone()
	if appErr, ok := err.(*AppError); ok {
		newLogger.fields["error_type"] = string(appErr.Type)
		newLogger.fields["error_code"] = appErr.Code
		if appErr.Details != "" {
			newLogger.fields["error_details"] = appErr.Details
		}
	} else if err != nil {
		newLogger.fields["error"] = err.Error()
	}
	return newLogger
}

func (l *StructuredLogger) WithRequestID(requestID string) Logger {
	newLogger := l.clone()
	newLogger.requestID = requestID
	return newLogger
}

func (l *StructuredLogger) WithOperation(operation string) Logger {
	newLogger := l.clone()
	newLogger.operation = operation
	return newLogger
}

// LogOperation 记录操作耗时和结果
func (l *StructuredLogger) LogOperation(operation string, startTime time.Time, err error) {
	duration := time.Since(startTime)
	if err != nil {
		l.Errorw("Operation failed",
			"operation", operation,
			"duration_ms", duration.Milliseconds(),
			"error", err.Error(),
		)
		return
	}
	l.Debugw("Operation completed",
		"operation", operation,
		"duration_ms", duration.Milliseconds(),
	)
}

// LogError 记录普通错误，AppError 交给 LogAppError
func (l *StructuredLogger) LogError(err error, keysAndValues ...interface{}) {
	if appErr, ok := err.(*AppError); ok {
		l.LogAppError(appErr, keysAndValues...)
		return
	}
	l.Errorw("Application error occurred", append([]interface{}{"error", err.Error()}, keysAndValues...)...)
}

// LogAppError 记录 AppError 的类型、错误码和上下文
func (l *StructuredLogger) LogAppError(appErr *AppError, keysAndValues ...interface{}) {
	fields := []interface{}{
		"error_type", string(appErr.Type),
		"error_code", appErr.Code,
		"error_message", appErr.Message,
	}
	if appErr.Details != "" {
		fields = append(fields, "error_details", appErr.Details)
	}
	for k, v := range appErr.Context {
		fields = append(fields, "context_"+k, v)
	}
	fields = append(fields, keysAndValues...)

	// 客户端错误只记录警告
	if IsClientError(appErr) {
		l.Warnw("Request rejected", fields...)
		return
	}
	l.Errorw("Application error with context", fields...)
}

func (l *StructuredLogger) SetLevel(level string) error {
	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %s: %w", level, err)
	}
	l.logger.SetLevel(logLevel)
	return nil
}

func (l *StructuredLogger) SetFormatter(format string) error {
	formatter, err := createFormatter(format)
	if err != nil {
		return err
	}
	l.logger.SetFormatter(formatter)
	return nil
}

func (l *StructuredLogger) GetUnderlying() *logrus.Logger {
	return l.logger
}

func (l *StructuredLogger) clone() *StructuredLogger {
	newFields := make(Fields, len(l.fields))
	for k, v := range l.fields {
		newFields[k] = v
	}
	return &StructuredLogger{
		logger:    l.logger,
		requestID: l.requestID,
		operation: l.operation,
		fields:    newFields,
	}
}
