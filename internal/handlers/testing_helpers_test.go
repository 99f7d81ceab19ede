package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/memohai/crosspost/internal/auth"
	"github.com/memohai/crosspost/internal/logger"
)

type registrar interface {
	Register(e *echo.Echo)
}

func newTestEcho(handlers ...registrar) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(logger.Discard())
	for _, h := range handlers {
		h.Register(e)
	}
	return e
}

// newAuthedEcho mounts handlers behind the JWT middleware signed with testJWTSecret.
// POST /auth/login stays public.
func newAuthedEcho(handlers ...registrar) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(logger.Discard())
	e.Use(auth.JWTMiddleware(testJWTSecret, func(c echo.Context) bool {
		return c.Request().Method == http.MethodPost && c.Path() == "/auth/login"
	}))
	for _, h := range handlers {
		h.Register(e)
	}
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// doRaw sends body with the given content type; an empty contentType sends none.
func doRaw(t *testing.T, e *echo.Echo, method, target, body, contentType string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (%q)", err, rec.Body.String())
	}
	return body
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

