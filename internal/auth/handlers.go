package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/jimdaga/chapter-dash/internal/kv"
	"github.com/jimdaga/chapter-dash/internal/session"
	"github.com/markbates/goth/gothic"
)

// Handlers serves the sign-in and sign-out endpoints
type Handlers struct {
	directory session.Directory
	logger    *slog.Logger
	enabled   bool
	now       func() time.Time
}

// NewHandlers creates auth handlers. enabled reports whether Google sign-in is configured.
func NewHandlers(directory session.Directory, enabled bool, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{directory: directory, logger: logger, enabled: enabled, now: time.Now}
}

func (h *Handlers) lookup(c *gin.Context) *session.Lookup {
	return session.NewLookup(kv.NewSessionStore(sessions.Default(c)), h.directory)
}

// HandleLoginPage describes how to sign in. Already signed-in members go to the dashboard.
func (h *Handlers) HandleLoginPage(c *gin.Context) {
	if _, ok := h.lookup(c).CurrentIdentity(c.Request.Context()); ok {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}

	body := gin.H{"google_enabled": h.enabled}
	if h.enabled {
		body["sign_in_url"] = "/auth/google"
	}
	if reason := c.Query("error"); reason != "" {
		body["error"] = reason
	}
	c.JSON(http.StatusOK, body)
}

// HandleLogin initiates the Google OAuth flow
func (h *Handlers) HandleLogin(c *gin.Context) {
	if !h.enabled {
		c.Redirect(http.StatusFound, LoginPath+"?error=sign_in_unavailable")
		return
	}
	withProvider(c)
	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// HandleCallback completes the OAuth flow, records the account and signs the member in
func (h *Handlers) HandleCallback(c *gin.Context) {
	withProvider(c)

	gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		h.logger.Warn("Sign-in failed", "error", err)
		c.Redirect(http.StatusFound, LoginPath+"?error=auth_failed")
		return
	}

	h.signIn(c, gothUser.Email, gothUser.Name)
}

// HandleDevLogin signs in as the given email without a provider round trip.
// Only registered outside production.
func (h *Handlers) HandleDevLogin(c *gin.Context) {
	email := c.DefaultQuery("email", DevEmail)
	h.signIn(c, email, c.Query("name"))
}

// HandleLogout clears the current member and redirects to login
func (h *Handlers) HandleLogout(c *gin.Context) {
	if err := h.lookup(c).SignOut(c.Request.Context()); err != nil {
		h.logger.Error("Failed to clear session", "error", err)
	}
	if err := gothic.Logout(c.Writer, c.Request); err != nil {
		h.logger.Debug("No provider session to clear", "error", err)
	}
	c.Redirect(http.StatusFound, LoginPath)
}

func (h *Handlers) signIn(c *gin.Context, email, name string) {
	ctx := c.Request.Context()

	acct, err := h.directory.UpsertAccount(ctx, email, name, h.now())
	if errors.Is(err, session.ErrInvalidIdentity) {
		h.logger.Warn("Sign-in without an email address rejected")
		c.Redirect(http.StatusFound, LoginPath+"?error=account_failed")
		return
	}
	if err != nil {
		h.logger.Error("Failed to record account", "email", email, "error", err)
		c.Redirect(http.StatusFound, LoginPath+"?error=account_failed")
		return
	}

	if err := h.lookup(c).SignIn(ctx, acct.Email); err != nil {
		h.logger.Error("Failed to save session", "error", err)
		c.Redirect(http.StatusFound, LoginPath+"?error=session_failed")
		return
	}

	h.logger.Info("Member signed in", "email", acct.Email)
	c.Redirect(http.StatusFound, "/dashboard")
}

// withProvider sets the provider query parameter gothic requires
func withProvider(c *gin.Context) {
	q := c.Request.URL.Query()
	q.Set("provider", providerName)
	c.Request.URL.RawQuery = q.Encode()
}
