package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/automarket/automarket-backend/internal/app/model"
	"github.com/automarket/automarket-backend/pkg/redis"
	"github.com/automarket/automarket-backend/pkg/util"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret-for-middleware"

func issueTokens(t *testing.T, userID uint, role string, accessExpiry time.Duration) *util.TokenPair {
	t.Helper()
	tokens, err := util.GenerateTokenPair(userID, "driver@example.cl", role, testJWTSecret, accessExpiry, 24*time.Hour)
	require.NoError(t, err)
	return tokens
}

// whoAmI echoes what the middleware put in the context.
func whoAmI(c *gin.Context) {
	userID, ok := GetUserID(c)
	role, _ := GetUserRole(c)
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "authenticated": ok, "role": role})
}

func get(r http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/test", handlers...)
	return r
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	blacklist := redis.NewMemoryBlacklist()
	m := NewAuthMiddleware(testJWTSecret, blacklist)
	r := newEngine(m.Authenticate(), whoAmI)

	valid := issueTokens(t, 9, "user", 15*time.Minute)
	expired := issueTokens(t, 9, "user", -time.Minute)
	revoked := issueTokens(t, 10, "user", 15*time.Minute)
	require.NoError(t, blacklist.Add(context.Background(), revoked.AccessToken, time.Minute))

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid access token", "Bearer " + valid.AccessToken, http.StatusOK, `"user_id":9`},
		{"missing header", "", http.StatusUnauthorized, "Authorization header is required"},
		{"no bearer prefix", valid.AccessToken, http.StatusUnauthorized, "AUTH_TOKEN_INVALID"},
		{"basic scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, "AUTH_TOKEN_INVALID"},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, "AUTH_TOKEN_INVALID"},
		{"malformed token", "Bearer invalid.jwt.token", http.StatusUnauthorized, "Invalid or expired token"},
		{"refresh token", "Bearer " + valid.RefreshToken, http.StatusUnauthorized, "AUTH_TOKEN_INVALID"},
		{"expired token", "Bearer " + expired.AccessToken, http.StatusUnauthorized, "AUTH_TOKEN_EXPIRED"},
		{"revoked token", "Bearer " + revoked.AccessToken, http.StatusUnauthorized, "AUTH_TOKEN_REVOKED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, tt.header)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}

func TestAuthMiddleware_Authenticate_SetsAccessToken(t *testing.T) {
	m := NewAuthMiddleware(testJWTSecret, nil)
	tokens := issueTokens(t, 1, "user", time.Minute)

	var got string
	r := newEngine(m.Authenticate(), func(c *gin.Context) {
		got = GetAccessToken(c)
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, get(r, "Bearer "+tokens.AccessToken).Code)
	assert.Equal(t, tokens.AccessToken, got)
}

func TestAuthMiddleware_OptionalAuthenticate(t *testing.T) {
	blacklist := redis.NewMemoryBlacklist()
	m := NewAuthMiddleware(testJWTSecret, blacklist)
	r := newEngine(m.OptionalAuthenticate(), whoAmI)

	valid := issueTokens(t, 7, "user", time.Minute)
	revoked := issueTokens(t, 8, "user", time.Minute)
	require.NoError(t, blacklist.Add(context.Background(), revoked.AccessToken, time.Minute))

	guest := `{"authenticated":false,"user_id":0,"role":""}`
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"guest", "", guest},
		{"invalid token", "Bearer nope", guest},
		{"refresh token", "Bearer " + valid.RefreshToken, guest},
		{"revoked token", "Bearer " + revoked.AccessToken, guest},
		{"valid token", "Bearer " + valid.AccessToken, `{"authenticated":true,"user_id":7,"role":"user"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, tt.header)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, tt.want, w.Body.String())
		})
	}
}

func TestAuthMiddleware_RequireRole(t *testing.T) {
	m := NewAuthMiddleware(testJWTSecret, nil)
	r := newEngine(m.Authenticate(), m.RequireRole(string(model.RoleAdmin)), whoAmI)

	admin := issueTokens(t, 1, string(model.RoleAdmin), time.Minute)
	user := issueTokens(t, 2, string(model.RoleUser), time.Minute)

	assert.Equal(t, http.StatusOK, get(r, "Bearer "+admin.AccessToken).Code)

	w := get(r, "Bearer "+user.AccessToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Insufficient permissions")
}

func TestAuthMiddleware_RequireRoleWithoutAuthenticate(t *testing.T) {
	m := NewAuthMiddleware(testJWTSecret, nil)
	r := newEngine(m.RequireRole(string(model.RoleAdmin)), whoAmI)

	w := get(r, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "AUTHZ_FORBIDDEN")
}

func TestContextGetters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetUserID(c)
	assert.False(t, ok)
	_, ok = GetUserEmail(c)
	assert.False(t, ok)
	_, ok = GetUserRole(c)
	assert.False(t, ok)
	assert.Empty(t, GetAccessToken(c))

	setClaims(c, &util.Claims{UserID: 123, Email: "a@b.cl", Role: "admin"})
	id, _ := GetUserID(c)
	email, _ := GetUserEmail(c)
	role, _ := GetUserRole(c)
	assert.Equal(t, uint(123), id)
	assert.Equal(t, "a@b.cl", email)
	assert.Equal(t, model.RoleAdmin, role)

	c.Set(UserRoleKey, "user")
	role, ok = GetUserRole(c)
	assert.True(t, ok)
	assert.Equal(t, model.RoleUser, role)
}
