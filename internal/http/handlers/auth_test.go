package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/config"
	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/http/middleware"
	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSessions is a canned SessionManager.
type stubSessions struct {
	tokens     *session.Tokens
	err        error
	revokedAll []uuid.UUID
	revoked    []string
}

func (s *stubSessions) Login(_ context.Context, _, _, _ string) (*session.Tokens, error) {
	return s.tokens, s.err
}

func (s *stubSessions) Refresh(_ context.Context, _, _ string) (*session.Tokens, error) {
	return s.tokens, s.err
}

func (s *stubSessions) Revoke(_ context.Context, refreshToken string) error {
	s.revoked = append(s.revoked, refreshToken)
	return nil
}

func (s *stubSessions) RevokeAll(_ context.Context, userID uuid.UUID) error {
	s.revokedAll = append(s.revokedAll, userID)
	return s.err
}

func (s *stubSessions) AccessTokenForUsername(_ context.Context, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.tokens.AccessToken, nil
}

func newAuthRouter(stub *stubSessions, authedUserID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(stub, &config.Config{RefreshCookieTTLDays: 7})

	r := gin.New()
	if authedUserID != "" {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.CtxUserID, authedUserID)
			c.Set(middleware.CtxUsername, "testuser")
		})
	}
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.Refresh)
	r.POST("/auth/revoke", h.Revoke)
	r.POST("/auth/revoke-all", h.RevokeAll)
	r.POST("/auth/token", h.Token)
	return r
}

func refreshCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == refreshCookieName {
			return c
		}
	}
	return nil
}

func TestLogin_SetsCookieAndReturnsToken(t *testing.T) {
	stub := &stubSessions{tokens: &session.Tokens{AccessToken: "access-abc", RefreshToken: "refresh-xyz"}}
	r := newAuthRouter(stub, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"username":"testuser","password":"password123"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body tokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "access-abc", body.Token)

	cookie := refreshCookie(t, w)
	require.NotNil(t, cookie, "refresh token cookie must be set")
	assert.Equal(t, "refresh-xyz", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, 7*24*60*60, cookie.MaxAge)
}

func TestLogin_FailuresIndistinguishable(t *testing.T) {
	stub := &stubSessions{err: session.ErrUnauthorized}
	r := newAuthRouter(stub, "")

	responses := make([]string, 0, 2)
	for _, payload := range []string{
		`{"username":"ghost","password":"anything"}`,
		`{"username":"testuser","password":"wrongpass"}`,
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusUnauthorized, w.Code)
		responses = append(responses, w.Body.String())
	}

	assert.Equal(t, responses[0], responses[1])
}

func TestLogin_MissingFields(t *testing.T) {
	r := newAuthRouter(&stubSessions{}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefresh_NoCookie(t *testing.T) {
	r := newAuthRouter(&stubSessions{}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefresh_RotatesCookie(t *testing.T) {
	stub := &stubSessions{tokens: &session.Tokens{AccessToken: "access-new", RefreshToken: "refresh-new"}}
	r := newAuthRouter(stub, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: "refresh-old"})
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body tokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "access-new", body.Token)

	cookie := refreshCookie(t, w)
	require.NotNil(t, cookie)
	assert.Equal(t, "refresh-new", cookie.Value)
}

func TestRefresh_InvalidTokenClearsCookie(t *testing.T) {
	stub := &stubSessions{err: session.ErrUnauthorized}
	r := newAuthRouter(stub, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: "refresh-dead"})
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)

	cookie := refreshCookie(t, w)
	require.NotNil(t, cookie, "dead credential must be cleared client-side")
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestRevoke_NoCookie(t *testing.T) {
	r := newAuthRouter(&stubSessions{}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/revoke", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRevoke_AlwaysSucceeds(t *testing.T) {
	stub := &stubSessions{}
	r := newAuthRouter(stub, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/revoke", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: "whatever"})
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"whatever"}, stub.revoked)

	cookie := refreshCookie(t, w)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
}

func TestRevokeAll(t *testing.T) {
	userID := uuid.New()
	stub := &stubSessions{}
	r := newAuthRouter(stub, userID.String())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/revoke-all", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []uuid.UUID{userID}, stub.revokedAll)
}

func TestRevokeAll_Unauthenticated(t *testing.T) {
	r := newAuthRouter(&stubSessions{}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/revoke-all", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestToken_LegacyPath(t *testing.T) {
	stub := &stubSessions{tokens: &session.Tokens{AccessToken: "legacy-access"}}
	r := newAuthRouter(stub, uuid.NewString())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/token", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body tokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "legacy-access", body.Token)
}
