package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const cartSessionKey = "cart_session"

// CartSession makes sure every request carries a browsing-session id for
// the legacy cart, issuing a cookie on first visit.
func CartSession(cookieName string, maxAge int) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(cookieName)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cookieName, id, maxAge, "/", "", false, true)
		}
		c.Set(cartSessionKey, id)
		c.Next()
	}
}

func GetCartSession(c *gin.Context) string {
	return c.GetString(cartSessionKey)
}
