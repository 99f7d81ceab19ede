package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/memohai/crosspost/internal/auth"
	"github.com/memohai/crosspost/internal/publications"
)

// PublicationsHandler serves the publication ledger.
type PublicationsHandler struct {
	service *publications.Service
	logger  *slog.Logger
}

// RecordPublicationResponse reports whether the publication was newly stored.
type RecordPublicationResponse struct {
	Message string `json:"message"`
	Created bool   `json:"created"`
}

// ListPublicationsResponse wraps a page of publications.
type ListPublicationsResponse struct {
	Items []publications.Publication `json:"items"`
}

// NewPublicationsHandler creates a publications handler.
func NewPublicationsHandler(log *slog.Logger, service *publications.Service) *PublicationsHandler {
	return &PublicationsHandler{
		service: service,
		logger:  log.With(slog.String("handler", "publications")),
	}
}

// Register mounts POST /record-publication and GET /publications on the Echo instance.
func (h *PublicationsHandler) Register(e *echo.Echo) {
	e.POST("/record-publication", h.Record)
	e.GET("/publications", h.List)
}

// Record godoc
// @Summary Record a publication
// @Description Idempotently store a published item; older records beyond the retention bound are pruned
// @Tags publications
// @Param payload body publications.RecordRequest true "Publication"
// @Success 200 {object} RecordPublicationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /record-publication [post].
func (h *PublicationsHandler) Record(c echo.Context) error {
	var req publications.RecordRequest
	if err := bindJSON(c, &req); err != nil {
		return apiError(http.StatusBadRequest, CodeInvalidInput, "Invalid request body", err)
	}
	created, err := h.service.Record(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, publications.ErrMissingInput) {
			return apiError(http.StatusBadRequest, CodeMissingInput, "Missing required fields", nil)
		}
		return apiError(http.StatusInternalServerError, CodeStorageError, "Failed to save publication", detailsAfter(err, publications.ErrStorage))
	}
	message := "Publication already exists"
	if created {
		message = "Publication saved"
	}
	return c.JSON(http.StatusOK, RecordPublicationResponse{Message: message, Created: created})
}

// List godoc
// @Summary List recent publications
// @Tags publications
// @Param platform query string false "Platform filter"
// @Param limit query int false "Max items (default 50)"
// @Success 200 {object} ListPublicationsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /publications [get].
func (h *PublicationsHandler) List(c echo.Context) error {
	if _, err := auth.UserIDFromContext(c); err != nil {
		return err
	}
	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return apiError(http.StatusBadRequest, CodeInvalidInput, "limit must be a positive integer", nil)
		}
		limit = min(n, h.service.MaxRecords())
	}
	items, err := h.service.List(c.Request().Context(), c.QueryParam("platform"), limit)
	if err != nil {
		h.logger.Error("list publications failed", slog.Any("error", err))
		return apiError(http.StatusInternalServerError, CodeStorageError, "Failed to list publications", nil)
	}
	if items == nil {
		items = []publications.Publication{}
	}
	return c.JSON(http.StatusOK, ListPublicationsResponse{Items: items})
}
