package handlers

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// bindJSON decodes the request body into v. A body sent without a content type,
// or as text/plain, is read as JSON.
func bindJSON(c echo.Context, v any) error {
	req := c.Request()
	ct := strings.ToLower(strings.TrimSpace(req.Header.Get(echo.HeaderContentType)))
	if ct == "" || strings.HasPrefix(ct, echo.MIMETextPlain) {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return (&echo.DefaultBinder{}).BindBody(c, v)
}
