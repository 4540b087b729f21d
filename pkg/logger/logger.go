package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Logger levels
const (
	LevelTrace = "trace"
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
	LevelFatal = "fatal"
)

// Context keys
type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	UserIDKey    contextKey = "user_id"
	TraceIDKey   contextKey = "trace_id"
)

// Logger represents the application logger
type Logger struct {
	*logrus.Logger
	component string
}

// Fields represents log fields
type Fields map[string]interface{}

var (
	defaultLogger *Logger
	logLevel      logrus.Level = logrus.InfoLevel
	logFormat     string       = "json" // "json" or "text"
)

// Config represents logger configuration
type Config struct {
	Level     string `json:"level"`
	Format    string `json:"format"`
	Output    string `json:"output"`
	Component string `json:"component"`
}

// Init initializes the default logger
func Init() {
	config := &Config{
		Level:     getEnv("LOG_LEVEL", LevelInfo),
		Format:    getEnv("LOG_FORMAT", "json"),
		Output:    getEnv("LOG_OUTPUT", "stdout"),
		Component: getEnv("LOG_COMPONENT", "civicwatch"),
	}

	defaultLogger = NewLogger(config)
}

// NewLogger creates a new logger instance
func NewLogger(config *Config) *Logger {
	logger := logrus.New()

	// Set log level
	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	logLevel = level

	// Set log format
	if config.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
			CallerPrettyfier: func(f *runtime.Frame) (string, string) {
				filename := strings.Split(f.File, "/")
				return f.Function, fmt.Sprintf("%s:%d", filename[len(filename)-1], f.Line)
			},
		})
		logFormat = "text"
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			CallerPrettyfier: func(f *runtime.Frame) (string, string) {
				filename := strings.Split(f.File, "/")
				return f.Function, fmt.Sprintf("%s:%d", filename[len(filename)-1], f.Line)
			},
		})
		logFormat = "json"
	}

	// Set output
	switch config.Output {
	case "stdout":
		logger.SetOutput(os.Stdout)
	case "stderr":
		logger.SetOutput(os.Stderr)
	default:
		// File output
		file, err := os.OpenFile(config.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			logger.SetOutput(os.Stdout)
			logger.Warnf("Failed to open log file %s, using stdout", config.Output)
		} else {
			logger.SetOutput(io.MultiWriter(os.Stdout, file))
		}
	}

	return &Logger{
		Logger:    logger,
		component: config.Component,
	}
}

// NewComponentLogger creates a logger scoped to a component, sharing the
// default logger's configuration.
func NewComponentLogger(component string) *Logger {
	base := GetLogger()
	return &Logger{
		Logger:    base.Logger,
		component: component,
	}
}

// WithContext creates a logger with context values
func (l *Logger) WithContext(ctx context.Context) *logrus.Entry {
	entry := l.Logger.WithFields(logrus.Fields{})

	if requestID := getStringFromContext(ctx, RequestIDKey); requestID != "" {
		entry = entry.WithField("request_id", requestID)
	}

	if userID := getStringFromContext(ctx, UserIDKey); userID != "" {
		entry = entry.WithField("user_id", userID)
	}

	if traceID := getStringFromContext(ctx, TraceIDKey); traceID != "" {
		entry = entry.WithField("trace_id", traceID)
	}

	if l.component != "" {
		entry = entry.WithField("component", l.component)
	}

	return entry
}

// WithFields creates a logger with additional fields
func (l *Logger) WithFields(fields Fields) *logrus.Entry {
	return l.entry().WithFields(logrus.Fields(fields))
}

// WithField creates a logger with a single additional field
func (l *Logger) WithField(key string, value interface{}) *logrus.Entry {
	return l.entry().WithField(key, value)
}

// WithError creates a logger with an error field
func (l *Logger) WithError(err error) *logrus.Entry {
	return l.entry().WithError(err)
}

// WithUserID creates a logger with a user ID field
func (l *Logger) WithUserID(userID primitive.ObjectID) *logrus.Entry {
	return l.entry().WithField("user_id", userID.Hex())
}

// WithRequestID creates a logger with a request ID field
func (l *Logger) WithRequestID(requestID string) *logrus.Entry {
	return l.entry().WithField("request_id", requestID)
}

func (l *Logger) entry() *logrus.Entry {
	if l.component != "" {
		return l.Logger.WithField("component", l.component)
	}
	return logrus.NewEntry(l.Logger)
}

// Package-level functions using the default logger
func WithContext(ctx context.Context) *logrus.Entry {
	return GetLogger().WithContext(ctx)
}

func WithFields(fields Fields) *logrus.Entry {
	return GetLogger().WithFields(fields)
}

func WithField(key string, value interface{}) *logrus.Entry {
	return GetLogger().WithField(key, value)
}

func WithError(err error) *logrus.Entry {
	return GetLogger().WithError(err)
}

func WithUserID(userID primitive.ObjectID) *logrus.Entry {
	return GetLogger().WithUserID(userID)
}

func WithRequestID(requestID string) *logrus.Entry {
	return GetLogger().WithRequestID(requestID)
}

func Debug(args ...interface{}) {
	GetLogger().Logger.Debug(args...)
}

func Debugf(format string, args ...interface{}) {
	GetLogger().Logger.Debugf(format, args...)
}

func Info(args ...interface{}) {
	GetLogger().Logger.Info(args...)
}

func Infof(format string, args ...interface{}) {
	GetLogger().Logger.Infof(format, args...)
}

func Warn(args ...interface{}) {
	GetLogger().Logger.Warn(args...)
}

func Warnf(format string, args ...interface{}) {
	GetLogger().Logger.Warnf(format, args...)
}

func Error(args ...interface{}) {
	GetLogger().Logger.Error(args...)
}

func Errorf(format string, args ...interface{}) {
	GetLogger().Logger.Errorf(format, args...)
}

func Fatal(args ...interface{}) {
	GetLogger().Logger.Fatal(args...)
}

func Fatalf(format string, args ...interface{}) {
	GetLogger().Logger.Fatalf(format, args...)
}

// Utility functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getStringFromContext(ctx context.Context, key contextKey) string {
	if value := ctx.Value(key); value != nil {
		if str, ok := value.(string); ok {
			return str
		}
	}
	return ""
}

// LogLevel returns the current log level
func LogLevel() string {
	return logLevel.String()
}

// LogFormat returns the current log format
func LogFormat() string {
	return logFormat
}

// SetLevel sets the log level
func SetLevel(level string) error {
	parsedLevel, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}

	if defaultLogger != nil {
		defaultLogger.SetLevel(parsedLevel)
	}
	logLevel = parsedLevel
	return nil
}

// GetLogger returns the default logger
func GetLogger() *Logger {
	if defaultLogger == nil {
		Init()
	}
	return defaultLogger
}

// NewContextWithRequestID creates a new context with request ID
func NewContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// NewContextWithUserID creates a new context with user ID
func NewContextWithUserID(ctx context.Context, userID primitive.ObjectID) context.Context {
	return context.WithValue(ctx, UserIDKey, userID.Hex())
}

