package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/memohai/crosspost/internal/auth"
	"github.com/memohai/crosspost/internal/linking"
)

// LinkHandler serves POST /link-channels.
type LinkHandler struct {
	service   *linking.Service
	jwtSecret string
	logger    *slog.Logger
}

// LinkChannelsRequest is the body for POST /link-channels.
type LinkChannelsRequest struct {
	Code string `json:"code"`
}

// LinkChannelsResponse lists the titles of the linked channels, comma separated.
type LinkChannelsResponse struct {
	Message  string `json:"message"`
	Channels string `json:"channels"`
}

// NewLinkHandler creates a link handler. jwtSecret verifies the caller's bearer token.
func NewLinkHandler(log *slog.Logger, service *linking.Service, jwtSecret string) *LinkHandler {
	return &LinkHandler{
		service:   service,
		jwtSecret: jwtSecret,
		logger:    log.With(slog.String("handler", "link")),
	}
}

// Register mounts POST /link-channels on the Echo instance.
func (h *LinkHandler) Register(e *echo.Echo) {
	e.POST("/link-channels", h.LinkChannels)
}

// LinkChannels godoc
// @Summary Link YouTube channels
// @Description Exchange an OAuth authorization code and link every channel of the Google account to the caller
// @Tags channels
// @Param payload body LinkChannelsRequest true "Authorization code"
// @Success 200 {object} LinkChannelsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /link-channels [post].
func (h *LinkHandler) LinkChannels(c echo.Context) error {
	var req LinkChannelsRequest
	if err := bindJSON(c, &req); err != nil {
		return apiError(http.StatusBadRequest, CodeInvalidInput, "Invalid request body", err)
	}

	// An unresolvable identity is reported after the code exchange, so it is not an early return here.
	callerID, err := auth.ResolveBearer(c.Request().Header.Get(echo.HeaderAuthorization), h.jwtSecret)
	if err != nil {
		callerID = ""
	}

	result, err := h.service.LinkChannels(c.Request().Context(), req.Code, callerID)
	if err != nil {
		return linkError(err)
	}
	return c.JSON(http.StatusOK, LinkChannelsResponse{
		Message:  "Channels linked successfully",
		Channels: strings.Join(result.Titles, ", "),
	})
}

func linkError(err error) error {
	switch {
	case errors.Is(err, linking.ErrMissingInput):
		return apiError(http.StatusBadRequest, CodeMissingInput, "Missing code", nil)
	case errors.Is(err, linking.ErrExchangeFailed):
		return apiError(http.StatusInternalServerError, CodeExchangeFailed, "Failed to fetch channel info", detailsAfter(err, linking.ErrExchangeFailed))
	case errors.Is(err, linking.ErrNoChannelsFound):
		return apiError(http.StatusNotFound, CodeNoChannelsFound, "No channels found in your Google account", nil)
	case errors.Is(err, linking.ErrUnauthenticated):
		return apiError(http.StatusUnauthorized, CodeUnauthenticated, "User not authenticated", nil)
	case errors.Is(err, linking.ErrChannelOwnershipConflict):
		return apiError(http.StatusConflict, CodeChannelOwnershipConflict, "Channel is already linked to another account", nil)
	case errors.Is(err, linking.ErrStorage):
		return apiError(http.StatusInternalServerError, CodeStorageError, "Failed to save channels", detailsAfter(err, linking.ErrStorage))
	}
	return apiError(http.StatusInternalServerError, CodeInternalError, "Internal server error", err)
}
