package dashboard

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/jimdaga/chapter-dash/internal/auth"
	"github.com/jimdaga/chapter-dash/internal/kv"
	"github.com/jimdaga/chapter-dash/internal/metrics"
	"github.com/jimdaga/chapter-dash/internal/preferences"
	"github.com/jimdaga/chapter-dash/internal/session"
)

// PreferenceStoreFunc returns the store holding identity's preferences for this request
type PreferenceStoreFunc func(c *gin.Context, identity string) kv.Store

// SessionPreferences keeps preferences in the request's cookie session
func SessionPreferences(c *gin.Context, _ string) kv.Store {
	return kv.NewSessionStore(sessions.Default(c))
}

// RedisPreferences keeps each member's preferences under their own key prefix
func RedisPreferences(store *kv.RedisStore) PreferenceStoreFunc {
	return func(_ *gin.Context, identity string) kv.Store {
		return store.WithPrefix("prefs:" + strings.ToLower(identity) + ":")
	}
}

// Handler serves the dashboard and preference endpoints
type Handler struct {
	service     *Service
	directory   session.Directory
	preferences PreferenceStoreFunc
	renderer    Renderer
	logger      *slog.Logger
	now         func() time.Time
}

// NewHandler creates a Handler. A nil preferences func uses the cookie session
// and a nil renderer writes JSON.
func NewHandler(service *Service, directory session.Directory, prefs PreferenceStoreFunc, renderer Renderer, logger *slog.Logger) *Handler {
	if prefs == nil {
		prefs = SessionPreferences
	}
	if renderer == nil {
		renderer = JSONRenderer{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service:     service,
		directory:   directory,
		preferences: prefs,
		renderer:    renderer,
		logger:      logger,
		now:         time.Now,
	}
}

func (h *Handler) lookup(c *gin.Context) *session.Lookup {
	return session.NewLookup(kv.NewSessionStore(sessions.Default(c)), h.directory)
}

func (h *Handler) themes(c *gin.Context, identity string) *preferences.ThemeStore {
	return preferences.NewThemeStore(h.preferences(c, identity))
}

// HandleDashboard activates the dashboard for the signed-in member
func (h *Handler) HandleDashboard(c *gin.Context) {
	ctx := c.Request.Context()

	acct, err := h.lookup(c).CurrentAccount(ctx)
	if errors.Is(err, session.ErrNoSession) {
		metrics.ObserveActivation(metrics.OutcomeNoSession)
		auth.RedirectToLogin(c)
		return
	}
	if err != nil {
		metrics.ObserveActivation(metrics.OutcomeError)
		h.logger.Error("Failed to resolve account", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load account"})
		return
	}

	theme := h.themes(c, acct.Email).Load(ctx)
	view, err := h.service.Activate(ctx, *acct, theme, h.now())
	if err != nil {
		metrics.ObserveActivation(metrics.OutcomeError)
		h.logger.Error("Failed to build dashboard", "email", acct.Email, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load dashboard"})
		return
	}

	metrics.ObserveActivation(metrics.OutcomeRendered)
	h.renderer.Render(c, view)
}

// HandleCalendar downloads the registered events as an .ics file
func (h *Handler) HandleCalendar(c *gin.Context) {
	feed, err := h.service.CalendarExport(c.Request.Context(), h.now())
	if err != nil {
		h.logger.Error("Failed to export calendar", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export calendar"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="acm-events.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(feed))
}

// HandleGetTheme returns the stored theme
func (h *Handler) HandleGetTheme(c *gin.Context) {
	theme := h.themes(c, c.GetString(auth.IdentityKey)).Load(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"theme": theme})
}

// HandleToggleTheme flips and persists the theme
func (h *Handler) HandleToggleTheme(c *gin.Context) {
	theme, err := h.themes(c, c.GetString(auth.IdentityKey)).Toggle(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to save theme", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save theme", "theme": theme})
		return
	}

	metrics.ObserveThemeChange(string(theme))
	c.JSON(http.StatusOK, gin.H{"theme": theme})
}

// RegisterRoutes mounts the dashboard endpoints. r is expected to already
// require an authenticated session.
func RegisterRoutes(r gin.IRouter, h *Handler) {
	r.GET("/dashboard", h.HandleDashboard)
	r.GET("/dashboard/events.ics", h.HandleCalendar)
	r.GET("/preferences/theme", h.HandleGetTheme)
	r.POST("/preferences/theme/toggle", h.HandleToggleTheme)
}
