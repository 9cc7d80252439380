package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/database/model"
	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/token"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthedRouter(maker *token.Maker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", TokenAuth(maker), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userID":   c.GetString(CtxUserID),
			"username": c.GetString(CtxUsername),
		})
	})
	return r
}

func TestTokenAuth_ValidToken(t *testing.T) {
	maker := token.NewMaker("middleware-test-secret", "trackerApi", "trackerApp", time.Hour)
	user := &model.User{ID: uuid.New(), Username: "testuser"}

	tokenStr, err := maker.CreateToken(user)
	require.NoError(t, err)

	r := newAuthedRouter(maker)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), user.ID.String())
	assert.Contains(t, w.Body.String(), "testuser")
}

func TestTokenAuth_MissingHeader(t *testing.T) {
	maker := token.NewMaker("middleware-test-secret", "trackerApi", "trackerApp", time.Hour)
	r := newAuthedRouter(maker)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTokenAuth_WrongScheme(t *testing.T) {
	maker := token.NewMaker("middleware-test-secret", "trackerApi", "trackerApp", time.Hour)
	r := newAuthedRouter(maker)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTokenAuth_ExpiredToken(t *testing.T) {
	issued := time.Now().Add(-2 * time.Hour)
	issuer := token.NewMaker("middleware-test-secret", "trackerApi", "trackerApp", time.Hour,
		token.WithClock(func() time.Time { return issued }))
	verifier := token.NewMaker("middleware-test-secret", "trackerApi", "trackerApp", time.Hour)

	tokenStr, err := issuer.CreateToken(&model.User{ID: uuid.New(), Username: "testuser"})
	require.NoError(t, err)

	r := newAuthedRouter(verifier)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserIDFromContext_BadValues(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := UserIDFromContext(c)
	assert.False(t, ok)

	c.Set(CtxUserID, "not-a-uuid")
	_, ok = UserIDFromContext(c)
	assert.False(t, ok)

	id := uuid.New()
	c.Set(CtxUserID, id.String())
	got, ok := UserIDFromContext(c)
	require.True(t, ok)
	assert.Equal(t, id, got)
}
