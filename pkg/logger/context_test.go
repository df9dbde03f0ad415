package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithRequestIDTagsLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := WithContext(context.Background(), zap.New(core))

	ctx, l := WithRequestID(ctx, "req-42")
	l.Info("hello")
	FromContext(ctx).Info("again")

	assert.Equal(t, "req-42", RequestID(ctx))
	entries := logs.All()
	assert.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, "req-42", e.ContextMap()["request_id"])
	}
}

func TestFromEchoFallsBackToRequestContext(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx, _ := WithRequestID(WithContext(context.Background(), zap.New(core)), "req-7")

	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	c := echo.New().NewContext(req, httptest.NewRecorder())

	FromEcho(c).Info("from request")
	assert.Equal(t, "req-7", logs.All()[0].ContextMap()["request_id"])

	assert.Empty(t, RequestID(context.Background()))
	assert.NotNil(t, FromContext(context.Background()))
}
