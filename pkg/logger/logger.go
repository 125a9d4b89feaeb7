package logger

import (
	"context"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation settings for file output.
const (
	rotateMaxSizeMB  = 100
	rotateMaxBackups = 5
	rotateMaxAgeDays = 14
)

// Config selects the level, encoding and destination of the service log.
type Config struct {
	Level       string // debug, info, warn, error
	Format      string // json or console
	OutputPath  string // stdout, stderr, or a file rotated by lumberjack
	Sampling    bool
	Service     string
	Version     string
	Environment string
}

// New builds the service logger. Every entry carries the service, version
// and environment so lines from several deployments can share a sink.
func New(cfg Config) (*zap.Logger, error) {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.MessageKey = "msg"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeDuration = zapcore.MillisDurationEncoder

	var encoder zapcore.Encoder
	switch {
	case cfg.Format == "json":
		encoder = zapcore.NewJSONEncoder(enc)
	case cfg.Environment != "production":
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(enc)
	default:
		encoder = zapcore.NewConsoleEncoder(enc)
	}

	core := zapcore.NewCore(encoder, sink(cfg.OutputPath), levelOf(cfg.Level))
	if cfg.Sampling {
		// per second: the first 100 identical entries, then every 10th
		core = zapcore.NewSamplerWithOptions(core, time.Second, 100, 10)
	}

	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).With(
		zap.String("service", cfg.Service),
		zap.String("version", cfg.Version),
		zap.String("env", cfg.Environment),
	), nil
}

// levelOf parses a level name, falling back to info.
func levelOf(name string) zapcore.Level {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "warning" {
		name = "warn"
	}
	level, err := zapcore.ParseLevel(name)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

func sink(path string) zapcore.WriteSyncer {
	switch path {
	case "", "stdout":
		return zapcore.Lock(os.Stdout)
	case "stderr":
		return zapcore.Lock(os.Stderr)
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    rotateMaxSizeMB,
		MaxBackups: rotateMaxBackups,
		MaxAge:     rotateMaxAgeDays,
		Compress:   true,
	})
}

type ctxKey int

const (
	requestIDKey ctxKey = iota
	principalKey
)

// principal is the authenticated caller of a request.
type principal struct {
	userID    int64
	sessionID string
}

// WithRequestID stores the request ID in ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFrom returns the request ID stored in ctx, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithUser stores the authenticated user and the session (token jti) in ctx.
func WithUser(ctx context.Context, userID int64, sessionID string) context.Context {
	return context.WithValue(ctx, principalKey, principal{userID: userID, sessionID: sessionID})
}

// Principal returns the user and session stored by WithUser.
func Principal(ctx context.Context) (userID int64, sessionID string, ok bool) {
	p, ok := ctx.Value(principalKey).(principal)
	return p.userID, p.sessionID, ok
}

// Fields returns the request_id, user_id and session_id fields known for ctx.
func Fields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if id := RequestIDFrom(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if userID, sessionID, ok := Principal(ctx); ok {
		fields = append(fields, zap.Int64("user_id", userID), zap.String("session_id", sessionID))
	}
	return fields
}

// WithContext scopes l to the request and caller in ctx.
func WithContext(ctx context.Context, l *zap.Logger) *zap.Logger {
	if fields := Fields(ctx); len(fields) > 0 {
		return l.With(fields...)
	}
	return l
}
