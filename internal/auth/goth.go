package auth

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/jimdaga/chapter-dash/internal/config"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
)

const providerName = "google"

// InitProviders registers the Google provider with goth. It reports false when
// no client credentials are configured, in which case only the development
// sign-in can establish a session.
func InitProviders(cfg *config.Config, logger *slog.Logger) bool {
	// gothic keeps its own gorilla store for the OAuth state cookie
	gothStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	gothStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
	gothic.Store = gothStore

	if cfg.GoogleClientID == "" {
		logger.Warn("GOOGLE_CLIENT_ID not set, Google sign-in disabled")
		return false
	}

	goth.UseProviders(
		google.New(
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleCallbackURL,
			"email",
			"profile",
		),
	)

	logger.Info("Sign-in provider initialized", "provider", providerName)
	return true
}
