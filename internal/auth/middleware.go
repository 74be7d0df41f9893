package auth

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/jimdaga/chapter-dash/internal/kv"
	"github.com/jimdaga/chapter-dash/internal/session"
)

// IdentityKey is the gin context key holding the signed-in identity
const IdentityKey = "identity"

// LoginPath is where unauthenticated requests are sent
const LoginPath = "/login"

// RequireAuth aborts requests whose session carries no identity.
// Whether the identity still maps to an account is checked by the handlers.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		store := kv.NewSessionStore(sessions.Default(c))
		identity, ok := session.IdentityFrom(c.Request.Context(), store)
		if !ok {
			RedirectToLogin(c)
			return
		}

		c.Set(IdentityKey, identity)
		c.Next()
	}
}

// RedirectToLogin sends the client to the sign-in page and aborts the chain.
// HTMX requests get an HX-Redirect header instead of a 302.
func RedirectToLogin(c *gin.Context) {
	if c.GetHeader("HX-Request") == "true" {
		c.Header("HX-Redirect", LoginPath)
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	c.Redirect(http.StatusFound, LoginPath)
	c.Abort()
}
