package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Stable error codes returned in ErrorResponse.Error.
const (
	CodeMissingInput             = "missing_input"
	CodeInvalidInput             = "invalid_input"
	CodeExchangeFailed           = "exchange_failed"
	CodeUnauthenticated          = "unauthenticated"
	CodeForbidden                = "forbidden"
	CodeNotFound                 = "not_found"
	CodeNoChannelsFound          = "no_channels_found"
	CodeChannelNotFound          = "channel_not_found"
	CodeChannelOwnershipConflict = "channel_ownership_conflict"
	CodeConflict                 = "conflict"
	CodePayloadTooLarge          = "payload_too_large"
	CodeStorageError             = "storage_error"
	CodeUpstreamError            = "upstream_error"
	CodeInternalError            = "internal_error"
)

// ErrorResponse is the standard API error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// apiError builds an HTTP error rendered as ErrorResponse. cause, when set, becomes details.
func apiError(status int, code, message string, cause error) *echo.HTTPError {
	body := ErrorResponse{Error: code, Message: message}
	if cause != nil {
		body.Details = cause.Error()
	}
	return echo.NewHTTPError(status, body)
}

// detailsAfter strips the sentinel prefix from a "sentinel: cause" error so only the cause is reported.
func detailsAfter(err, sentinel error) error {
	if err == nil {
		return nil
	}
	text := strings.TrimPrefix(err.Error(), sentinel.Error())
	text = strings.TrimPrefix(text, ": ")
	if text == "" {
		return nil
	}
	return errors.New(text)
}

// NewHTTPErrorHandler renders every error as ErrorResponse.
func NewHTTPErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	log = log.With(slog.String("component", "http_error"))
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status := http.StatusInternalServerError
		body := ErrorResponse{Error: CodeInternalError, Message: "Internal server error"}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			switch msg := he.Message.(type) {
			case ErrorResponse:
				body = msg
			case string:
				body = ErrorResponse{Error: codeForStatus(status), Message: msg}
			default:
				body = ErrorResponse{Error: codeForStatus(status), Message: http.StatusText(status)}
			}
		} else {
			log.Error("unhandled error", slog.String("path", c.Request().URL.Path), slog.Any("error", err))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.Warn("write error response failed", slog.Any("error", err))
		}
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeInvalidInput
	case http.StatusUnauthorized:
		return CodeUnauthenticated
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	case http.StatusRequestEntityTooLarge:
		return CodePayloadTooLarge
	}
	if status >= 500 {
		return CodeInternalError
	}
	return CodeInvalidInput
}
