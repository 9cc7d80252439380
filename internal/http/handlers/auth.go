package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/common"
	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/config"
	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/http/middleware"
	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const refreshCookieName = "refreshToken"

// SessionManager is the auth orchestration surface. *session.Service
// satisfies it.
type SessionManager interface {
	Login(ctx context.Context, username, password, deviceInfo string) (*session.Tokens, error)
	Refresh(ctx context.Context, refreshToken, deviceInfo string) (*session.Tokens, error)
	Revoke(ctx context.Context, refreshToken string) error
	RevokeAll(ctx context.Context, userID uuid.UUID) error
	AccessTokenForUsername(ctx context.Context, username string) (string, error)
}

type AuthHandler struct {
	sessions SessionManager
	cfg      *config.Config
}

func NewAuthHandler(sessions SessionManager, cfg *config.Config) *AuthHandler {
	return &AuthHandler{sessions: sessions, cfg: cfg}
}

// Login exchanges credentials for an access token in the body and a
// refresh token in an httpOnly cookie. Unknown-user and wrong-password
// failures are indistinguishable.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, messageResponse{Message: "username and password are required"})
		return
	}

	tokens, err := h.sessions.Login(c.Request.Context(), req.Username, req.Password, c.Request.UserAgent())
	if errors.Is(err, session.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, messageResponse{Message: "Invalid username or password"})
		return
	}
	if err != nil {
		slog.Error("Login failed", "error", err)
		c.JSON(http.StatusInternalServerError, messageResponse{Message: "internal server error"})
		return
	}

	h.setRefreshCookie(c, tokens.RefreshToken)
	c.JSON(http.StatusOK, tokenResponse{Token: tokens.AccessToken})
}

// Refresh rotates the refresh-token cookie and returns a new access token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshCookieName)
	if err != nil || refreshToken == "" {
		c.JSON(http.StatusUnauthorized, messageResponse{Message: "Unauthorized"})
		return
	}

	tokens, err := h.sessions.Refresh(c.Request.Context(), refreshToken, c.Request.UserAgent())
	if errors.Is(err, session.ErrUnauthorized) {
		// the stored credential is dead; make the client drop it
		h.clearRefreshCookie(c)
		c.JSON(http.StatusUnauthorized, messageResponse{Message: "Unauthorized"})
		return
	}
	if err != nil {
		slog.Error("Token refresh failed", "error", err)
		c.JSON(http.StatusInternalServerError, messageResponse{Message: "internal server error"})
		return
	}

	h.setRefreshCookie(c, tokens.RefreshToken)
	c.JSON(http.StatusOK, tokenResponse{Token: tokens.AccessToken})
}

// Revoke is single-session logout; it is best-effort and idempotent.
func (h *AuthHandler) Revoke(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshCookieName)
	if err != nil || refreshToken == "" {
		c.JSON(http.StatusBadRequest, messageResponse{Message: "No refresh token found"})
		return
	}

	_ = h.sessions.Revoke(c.Request.Context(), refreshToken)
	h.clearRefreshCookie(c)
	c.JSON(http.StatusOK, messageResponse{Message: "Token revoked successfully"})
}

// RevokeAll is logout-everywhere for the authenticated user.
func (h *AuthHandler) RevokeAll(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, messageResponse{Message: "Unauthorized"})
		return
	}

	if err := h.sessions.RevokeAll(c.Request.Context(), userID); err != nil {
		slog.Error("Revoke-all failed", "error", err, "userId", userID)
		c.JSON(http.StatusInternalServerError, messageResponse{Message: "internal server error"})
		return
	}

	h.clearRefreshCookie(c)
	c.JSON(http.StatusOK, messageResponse{Message: "All tokens revoked successfully"})
}

// Token is the legacy endpoint issuing a fresh access token from an
// already-authenticated caller's username claim.
func (h *AuthHandler) Token(c *gin.Context) {
	username := c.GetString(middleware.CtxUsername)
	if username == "" {
		c.JSON(http.StatusUnauthorized, messageResponse{Message: "Unauthorized"})
		return
	}

	tokenStr, err := h.sessions.AccessTokenForUsername(c.Request.Context(), username)
	if errors.Is(err, common.ErrNotFound) {
		c.JSON(http.StatusNotFound, messageResponse{Message: "User not found"})
		return
	}
	if err != nil {
		slog.Error("Token generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, messageResponse{Message: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, tokenResponse{Token: tokenStr})
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, value string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, value, int(h.cfg.RefreshCookieTTL().Seconds()), "/", "", true, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, "", -1, "/", "", true, true)
}
