package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCartSessionRouter(got *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CartSession("cart_session", 3600))
	router.GET("/cart", func(c *gin.Context) {
		*got = GetCartSession(c)
		c.Status(http.StatusOK)
	})
	return router
}

func TestCartSession_IssuesCookie(t *testing.T) {
	var got string
	router := setupCartSessionRouter(&got)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/cart", nil))

	require.NoError(t, uuid.Validate(got))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "cart_session", cookies[0].Name)
	assert.Equal(t, got, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestCartSession_ReusesCookie(t *testing.T) {
	var got string
	router := setupCartSessionRouter(&got)
	id := uuid.NewString()

	req := httptest.NewRequest("GET", "/cart", nil)
	req.AddCookie(&http.Cookie{Name: "cart_session", Value: id})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, id, got)
	assert.Empty(t, w.Result().Cookies())
}

func TestCartSession_ReplacesForgedCookie(t *testing.T) {
	var got string
	router := setupCartSessionRouter(&got)

	req := httptest.NewRequest("GET", "/cart", nil)
	req.AddCookie(&http.Cookie{Name: "cart_session", Value: "../../etc"})
	router.ServeHTTP(httptest.NewRecorder(), req)

	assert.NotEqual(t, "../../etc", got)
	assert.NoError(t, uuid.Validate(got))
}
