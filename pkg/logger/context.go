package logger

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ctxKey int

const (
	loggerCtxKey ctxKey = iota
	requestIDCtxKey
)

// EchoKey is the echo context key holding the request-scoped logger.
const EchoKey = "logger"

// FromContext returns the request-scoped logger, or the global one.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerCtxKey).(*zap.Logger); ok {
		return l
	}
	return GetLogger()
}

// WithContext stores l in ctx.
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey, l)
}

// WithRequestID tags ctx with the request id and a logger carrying it.
func WithRequestID(ctx context.Context, requestID string) (context.Context, *zap.Logger) {
	l := FromContext(ctx).With(zap.String("request_id", requestID))
	ctx = context.WithValue(ctx, requestIDCtxKey, requestID)
	return WithContext(ctx, l), l
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDCtxKey).(string)
	return id
}

// FromEcho returns the logger set on c, falling back to the request context.
func FromEcho(c echo.Context) *zap.Logger {
	if l, ok := c.Get(EchoKey).(*zap.Logger); ok {
		return l
	}
	return FromContext(c.Request().Context())
}
