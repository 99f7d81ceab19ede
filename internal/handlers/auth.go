// Package handlers provides the HTTP API handlers of the crosspost server.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/memohai/crosspost/internal/accounts"
	"github.com/memohai/crosspost/internal/auth"
)

// AuthHandler serves /auth/login and issues JWTs.
type AuthHandler struct {
	accountService *accounts.Service
	jwtSecret      string
	expiresIn      time.Duration
	logger         *slog.Logger
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the success body (access_token, user info, expires_at).
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   string `json:"expires_at"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	Role        string `json:"role"`
}

// NewAuthHandler creates an auth handler with account service and JWT config.
func NewAuthHandler(log *slog.Logger, accountService *accounts.Service, jwtSecret string, expiresIn time.Duration) *AuthHandler {
	return &AuthHandler{
		accountService: accountService,
		jwtSecret:      jwtSecret,
		expiresIn:      expiresIn,
		logger:         log.With(slog.String("handler", "auth")),
	}
}

// Register mounts POST /auth/login and GET /auth/me on the Echo instance.
func (h *AuthHandler) Register(e *echo.Echo) {
	e.POST("/auth/login", h.Login)
	e.GET("/auth/me", h.Me)
}

// Login godoc
// @Summary Login
// @Description Validate user credentials and issue a JWT
// @Tags auth
// @Param payload body LoginRequest true "Login request"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/login [post].
func (h *AuthHandler) Login(c echo.Context) error {
	if h.accountService == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "account service not configured")
	}
	var req LoginRequest
	if err := bindJSON(c, &req); err != nil {
		return apiError(http.StatusBadRequest, CodeInvalidInput, "Invalid request body", err)
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || strings.TrimSpace(req.Password) == "" {
		return apiError(http.StatusBadRequest, CodeMissingInput, "username and password are required", nil)
	}

	account, err := h.accountService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, accounts.ErrInvalidCredentials) {
			return apiError(http.StatusUnauthorized, CodeUnauthenticated, "invalid credentials", nil)
		}
		if errors.Is(err, accounts.ErrInactiveAccount) {
			return apiError(http.StatusUnauthorized, CodeUnauthenticated, "user is inactive", nil)
		}
		h.logger.Error("login failed", slog.Any("error", err))
		return apiError(http.StatusInternalServerError, CodeInternalError, "Internal server error", err)
	}
	token, expiresAt, err := auth.GenerateToken(account.ID, h.jwtSecret, h.expiresIn)
	if err != nil {
		return apiError(http.StatusInternalServerError, CodeInternalError, "Internal server error", err)
	}

	return c.JSON(http.StatusOK, LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt.Format(time.RFC3339),
		UserID:      account.ID,
		Username:    account.Username,
		Role:        account.Role,
	})
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Success 200 {object} accounts.Account
// @Failure 401 {object} ErrorResponse
// @Router /auth/me [get].
func (h *AuthHandler) Me(c echo.Context) error {
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	account, err := h.accountService.Get(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return apiError(http.StatusUnauthorized, CodeUnauthenticated, "User not authenticated", nil)
		}
		return apiError(http.StatusInternalServerError, CodeInternalError, "Internal server error", err)
	}
	return c.JSON(http.StatusOK, account)
}
