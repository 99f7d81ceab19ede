package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/memohai/crosspost/internal/auth"
	"github.com/memohai/crosspost/internal/channels"
)

// ChannelsHandler serves linked destination channels and source channels of the current user.
type ChannelsHandler struct {
	service *channels.Service
	logger  *slog.Logger
}

// ListLinkedResponse wraps linked channels.
type ListLinkedResponse struct {
	Items []channels.LinkedChannel `json:"items"`
}

// ListSourcesResponse wraps source channels.
type ListSourcesResponse struct {
	Items []channels.SourceChannel `json:"items"`
}

func NewChannelsHandler(log *slog.Logger, service *channels.Service) *ChannelsHandler {
	return &ChannelsHandler{
		service: service,
		logger:  log.With(slog.String("handler", "channels")),
	}
}

func (h *ChannelsHandler) Register(e *echo.Echo) {
	linked := e.Group("/channels/linked")
	linked.GET("", h.ListLinked)
	linked.DELETE("/:id", h.DeleteLinked)

	sources := e.Group("/channels/sources")
	sources.GET("", h.ListSources)
	sources.POST("", h.AddSource)
	sources.DELETE("/:id", h.DeleteSource)
}

// ListLinked godoc
// @Summary List linked channels
// @Tags channels
// @Param platform query string false "Platform filter"
// @Success 200 {object} ListLinkedResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /channels/linked [get]
func (h *ChannelsHandler) ListLinked(c echo.Context) error {
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	items, err := h.service.ListLinked(c.Request().Context(), userID, c.QueryParam("platform"))
	if err != nil {
		h.logger.Error("list linked channels failed", slog.Any("error", err))
		return apiError(http.StatusInternalServerError, CodeInternalError, "Failed to list channels", nil)
	}
	return c.JSON(http.StatusOK, ListLinkedResponse{Items: items})
}

// DeleteLinked godoc
// @Summary Unlink a channel
// @Tags channels
// @Param id path string true "Linked channel ID"
// @Success 204 "No Content"
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /channels/linked/{id} [delete]
func (h *ChannelsHandler) DeleteLinked(c echo.Context) error {
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteLinked(c.Request().Context(), userID, strings.TrimSpace(c.Param("id"))); err != nil {
		return channelError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListSources godoc
// @Summary List source channels
// @Tags channels
// @Param platform query string false "Platform filter"
// @Success 200 {object} ListSourcesResponse
// @Failure 401 {object} ErrorResponse
// @Router /channels/sources [get]
func (h *ChannelsHandler) ListSources(c echo.Context) error {
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	items, err := h.service.ListSources(c.Request().Context(), userID, c.QueryParam("platform"))
	if err != nil {
		h.logger.Error("list source channels failed", slog.Any("error", err))
		return apiError(http.StatusInternalServerError, CodeInternalError, "Failed to list channels", nil)
	}
	return c.JSON(http.StatusOK, ListSourcesResponse{Items: items})
}

// AddSource godoc
// @Summary Add a source channel
// @Description Extract the handle from a profile URL, load public metadata and store the channel
// @Tags channels
// @Param payload body channels.AddSourceRequest true "Source channel"
// @Success 201 {object} channels.SourceChannel
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /channels/sources [post]
func (h *ChannelsHandler) AddSource(c echo.Context) error {
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	var req channels.AddSourceRequest
	if err := bindJSON(c, &req); err != nil {
		return apiError(http.StatusBadRequest, CodeInvalidInput, "Invalid request body", err)
	}
	item, err := h.service.AddSource(c.Request().Context(), userID, req)
	if err != nil {
		return channelError(err)
	}
	return c.JSON(http.StatusCreated, item)
}

// DeleteSource godoc
// @Summary Remove a source channel
// @Tags channels
// @Param id path string true "Source channel ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Router /channels/sources/{id} [delete]
func (h *ChannelsHandler) DeleteSource(c echo.Context) error {
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteSource(c.Request().Context(), userID, strings.TrimSpace(c.Param("id"))); err != nil {
		return channelError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func channelError(err error) error {
	switch {
	case errors.Is(err, channels.ErrInvalidInput):
		return apiError(http.StatusBadRequest, CodeInvalidInput, "Invalid channel URL", nil)
	case errors.Is(err, channels.ErrChannelNotFound):
		return apiError(http.StatusNotFound, CodeChannelNotFound, "Channel not found", nil)
	case errors.Is(err, channels.ErrSourceExists):
		return apiError(http.StatusConflict, CodeConflict, "Channel already added", nil)
	}
	return apiError(http.StatusInternalServerError, CodeInternalError, "Internal server error", err)
}
