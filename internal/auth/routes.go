package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/jimdaga/chapter-dash/internal/models"
)

// DevEmail is the account used by the development sign-in when no email is given
const DevEmail = models.DevEmail

// RegisterRoutes mounts the public auth endpoints. The development sign-in
// route is only mounted when devLogin is true.
func RegisterRoutes(r gin.IRouter, h *Handlers, devLogin bool) {
	r.GET("/login", h.HandleLoginPage)
	r.GET("/auth/google", h.HandleLogin)
	r.GET("/auth/google/callback", h.HandleCallback)
	r.POST("/logout", h.HandleLogout)
	if devLogin {
		r.GET("/auth/dev", h.HandleDevLogin)
	}
}
