package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous := Logger
	Logger = slog.New(&ctxHandler{slog.NewJSONHandler(&buf, nil)})
	t.Cleanup(func() { Logger = previous })
	return &buf
}

func TestCtxHandlerAddsContextValues(t *testing.T) {
	buf := captureLogger(t)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = WithUserID(ctx, 77)
	ctx = context.WithValue(ctx, TraceIDKey, "trace-1")
	Logger.With("component", "test").InfoContext(ctx, "hello")

	out := buf.String()
	assert.Contains(t, out, `"request_id":"req-1"`)
	assert.Contains(t, out, `"user_id":77`)
	assert.Contains(t, out, `"trace_id":"trace-1"`)
	assert.Contains(t, out, `"component":"test"`)
}

func TestStructuredLoggerCarriesRequestID(t *testing.T) {
	buf := captureLogger(t)

	app := fiber.New()
	app.Use(requestid.New(), ContextMiddleware(), StructuredLogger())
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "fixed-request-id")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	out := buf.String()
	assert.Contains(t, out, `"msg":"request processed"`)
	assert.Contains(t, out, `"request_id":"fixed-request-id"`)
	assert.Contains(t, out, `"path":"/ping"`)
}

func TestConfigureLogger(t *testing.T) {
	previous := Logger
	t.Cleanup(func() { Logger = previous })

	ConfigureLogger("production")
	_, isJSON := Logger.Handler().(*ctxHandler).Handler.(*slog.JSONHandler)
	assert.True(t, isJSON)

	ConfigureLogger("development")
	_, isText := Logger.Handler().(*ctxHandler).Handler.(*slog.TextHandler)
	assert.True(t, isText)
}
