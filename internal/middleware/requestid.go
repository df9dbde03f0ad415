package middleware

import (
	"github.com/bahriwassim/zishop1-sub000/pkg/logger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestIDKey is the header carrying the request id.
const RequestIDKey = "X-Request-ID"

// RequestIDMiddleware tags each request with an id, reusing the caller's
// when present, and stores a request-scoped logger in both the echo context
// and the request context.
func RequestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get(RequestIDKey)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Request().Header.Set(RequestIDKey, requestID)
		c.Response().Header().Set(RequestIDKey, requestID)
		c.Set("request_id", requestID)

		ctx, log := logger.WithRequestID(c.Request().Context(), requestID)
		c.Set(logger.EchoKey, log)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}
