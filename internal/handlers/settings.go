package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/memohai/crosspost/internal/auth"
	"github.com/memohai/crosspost/internal/settings"
)

type SettingsHandler struct {
	service *settings.Service
	logger  *slog.Logger
}

func NewSettingsHandler(log *slog.Logger, service *settings.Service) *SettingsHandler {
	return &SettingsHandler{
		service: service,
		logger:  log.With(slog.String("handler", "settings")),
	}
}

func (h *SettingsHandler) Register(e *echo.Echo) {
	group := e.Group("/settings")
	group.GET("", h.Get)
	group.PUT("", h.Upsert)
	group.GET("/watermark", h.GetWatermark)
	group.PUT("/watermark", h.UploadWatermark)
	group.DELETE("/watermark", h.DeleteWatermark)
}

// Get godoc
// @Summary Get user settings
// @Description Get republishing settings for current user
// @Tags settings
// @Success 200 {object} settings.Settings
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /settings [get]
func (h *SettingsHandler) Get(c echo.Context) error {
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	resp, err := h.service.Get(c.Request().Context(), userID)
	if err != nil {
		return h.settingsError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Upsert godoc
// @Summary Update user settings
// @Tags settings
// @Param payload body settings.UpsertRequest true "Settings payload"
// @Success 200 {object} settings.Settings
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /settings [put]
func (h *SettingsHandler) Upsert(c echo.Context) error {
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	var req settings.UpsertRequest
	if err := bindJSON(c, &req); err != nil {
		return apiError(http.StatusBadRequest, CodeInvalidInput, "Invalid request body", err)
	}
	resp, err := h.service.Upsert(c.Request().Context(), userID, req)
	if err != nil {
		return h.settingsError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

// UploadWatermark godoc
// @Summary Upload watermark image
// @Tags settings
// @Accept multipart/form-data
// @Param file formData file true "PNG, JPEG or WebP image, at most 5 MiB"
// @Success 200 {object} settings.Settings
// @Failure 400 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Router /settings/watermark [put]
func (h *SettingsHandler) UploadWatermark(c echo.Context) error {
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return apiError(http.StatusBadRequest, CodeMissingInput, "file is required", nil)
	}
	if fh.Size > settings.MaxWatermarkBytes {
		return h.settingsError(settings.ErrWatermarkTooLarge)
	}
	f, err := fh.Open()
	if err != nil {
		return apiError(http.StatusBadRequest, CodeInvalidInput, "Invalid upload", err)
	}
	defer func() { _ = f.Close() }()

	resp, err := h.service.SetWatermark(c.Request().Context(), userID, f)
	if err != nil {
		return h.settingsError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetWatermark godoc
// @Summary Download watermark image
// @Tags settings
// @Produce octet-stream
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Router /settings/watermark [get]
func (h *SettingsHandler) GetWatermark(c echo.Context) error {
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	rc, mime, err := h.service.OpenWatermark(c.Request().Context(), userID)
	if err != nil {
		return h.settingsError(err)
	}
	defer func() { _ = rc.Close() }()
	return c.Stream(http.StatusOK, mime, rc)
}

// DeleteWatermark godoc
// @Summary Remove watermark image
// @Description Delete the stored image and disable watermarking
// @Tags settings
// @Success 200 {object} settings.Settings
// @Router /settings/watermark [delete]
func (h *SettingsHandler) DeleteWatermark(c echo.Context) error {
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	resp, err := h.service.RemoveWatermark(c.Request().Context(), userID)
	if err != nil {
		return h.settingsError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *SettingsHandler) settingsError(err error) error {
	switch {
	case errors.Is(err, settings.ErrInvalidSettings):
		return apiError(http.StatusBadRequest, CodeInvalidInput, "Invalid settings", detailsAfter(err, settings.ErrInvalidSettings))
	case errors.Is(err, settings.ErrUnsupportedImage):
		return apiError(http.StatusBadRequest, CodeInvalidInput, settings.ErrUnsupportedImage.Error(), nil)
	case errors.Is(err, settings.ErrWatermarkTooLarge):
		return apiError(http.StatusRequestEntityTooLarge, CodePayloadTooLarge, settings.ErrWatermarkTooLarge.Error(), nil)
	case errors.Is(err, settings.ErrWatermarkNotFound):
		return apiError(http.StatusNotFound, CodeNotFound, settings.ErrWatermarkNotFound.Error(), nil)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return apiError(http.StatusBadRequest, CodeInvalidInput, "Invalid upload", nil)
	}
	h.logger.Error("settings request failed", slog.Any("error", err))
	return apiError(http.StatusInternalServerError, CodeInternalError, "Internal server error", nil)
}
