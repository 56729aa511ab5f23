package logger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

type ctxKey struct{}

var logger = log.New()

func init() {
	env := os.Getenv("ENV")
	logger.Out = os.Stdout
	// Prefer stdout (systemd/docker); LOG_TO_FILE=true writes to logs/<date><env>.log instead.
	if os.Getenv("LOG_TO_FILE") == "true" {
		if f, err := openLogFile(env); err != nil {
			log.Warnf("Failed to open log file: %v, falling back to stdout", err)
		} else {
			logger.Out = f
		}
	}

	logger.Formatter = &log.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
	}
	logger.SetLevel(levelFor(env, os.Getenv("LOG_LEVEL")))
}

func openLogFile(env string) (*os.File, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	logsDir := filepath.Join(cwd, "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, err
	}
	filePath := filepath.Join(logsDir, fmt.Sprintf("%s%s.log", time.Now().Format("2006-01-02"), env))
	return os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
}

func levelFor(env, configured string) log.Level {
	if configured != "" {
		if lvl, err := log.ParseLevel(strings.ToLower(configured)); err == nil {
			return lvl
		}
	}
	if env == "prod" || env == "production" {
		return log.InfoLevel
	}
	return log.DebugLevel
}

// GetLogger returns an entry annotated with the calling function and line.
func GetLogger() *log.Entry {
	function, file, line, _ := runtime.Caller(1)
	functionObject := runtime.FuncForPC(function)
	name := ""
	if functionObject != nil {
		name = functionObject.Name()
	}
	return logger.WithFields(log.Fields{
		"service":  "token-platform",
		"function": name,
		"file":     file,
		"line":     line,
	})
}

// WithRequestID stores id so WithRequest can attach it to log lines.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// WithRequest is GetLogger plus the request id carried by ctx, if any.
func WithRequest(ctx context.Context) *log.Entry {
	function, file, line, _ := runtime.Caller(1)
	entry := logger.WithFields(log.Fields{
		"service": "token-platform",
		"file":    file,
		"line":    line,
	})
	if fn := runtime.FuncForPC(function); fn != nil {
		entry = entry.WithField("function", fn.Name())
	}
	if ctx != nil {
		if id, ok := ctx.Value(ctxKey{}).(string); ok && id != "" {
			entry = entry.WithField("requestId", id)
		}
	}
	return entry
}

// SetLevel overrides the level picked from the environment.
func SetLevel(level log.Level) { logger.SetLevel(level) }
