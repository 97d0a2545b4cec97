// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/filmhub/internal/app/system/identity"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for FilmHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: FILMHUB_MONGO_URI, FILMHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "filmhub", Desc: "MongoDB database name"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "filmhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session cookie lifetime (e.g., 24h, 720h)"},

	// Session storage housekeeping
	{Name: "session_storage_idle", Default: "720h", Desc: "Remove stored sessions idle for longer than this"},
	{Name: "session_cleanup_interval", Default: "10m", Desc: "How often idle sessions are swept"},

	// Accounts
	{Name: "password_min_length", Default: identity.DefaultMinPasswordLength, Desc: "Minimum password length at sign-up"},
	{Name: "login_rate_limit", Default: 10, Desc: "Login/register attempts per IP per minute (0 disables)"},
	{Name: "admin_email", Default: "", Desc: "Email of the profile promoted to admin on startup"},

	// Localization
	{Name: "default_locale", Default: "id", Desc: "Language used when the browser has no preference"},

	// Database call timeouts
	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single-document operations"},
	{Name: "timeout_medium", Default: "10s", Desc: "Timeout for list queries and sign-in"},
	{Name: "timeout_long", Default: "30s", Desc: "Timeout for index builds and batch work"},
}

// LoadConfig loads WAFFLE core config and FilmHub's app config.
//
// WAFFLE's config.LoadWithAppConfig merges, in order of precedence,
// flags > env (FILMHUB_*) > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "FILMHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),
		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 30*24*time.Hour),

		SessionStorageIdle:     appValues.Duration("session_storage_idle", 30*24*time.Hour),
		SessionCleanupInterval: appValues.Duration("session_cleanup_interval", 10*time.Minute),

		PasswordMinLength: appValues.Int("password_min_length"),
		LoginRateLimit:    appValues.Int("login_rate_limit"),
		AdminEmail:        appValues.String("admin_email"),

		DefaultLocale: appValues.String("default_locale"),

		TimeoutShort:  appValues.Duration("timeout_short", 5*time.Second),
		TimeoutMedium: appValues.Duration("timeout_medium", 10*time.Second),
		TimeoutLong:   appValues.Duration("timeout_long", 30*time.Second),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig rejects configurations FilmHub cannot start with.
//
// The MongoDB URI format is checked here to catch configuration errors
// before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database must not be empty")
	}
	if appCfg.SessionKey == "" {
		return fmt.Errorf("session_key must not be empty")
	}
	if appCfg.PasswordMinLength < 1 {
		return fmt.Errorf("password_min_length must be at least 1, got %d", appCfg.PasswordMinLength)
	}
	if appCfg.LoginRateLimit < 0 {
		return fmt.Errorf("login_rate_limit must not be negative, got %d", appCfg.LoginRateLimit)
	}
	if appCfg.SessionCleanupInterval <= 0 {
		return fmt.Errorf("session_cleanup_interval must be positive")
	}
	switch appCfg.DefaultLocale {
	case "id", "en":
	default:
		return fmt.Errorf("default_locale must be \"id\" or \"en\", got %q", appCfg.DefaultLocale)
	}
	if coreCfg != nil && coreCfg.Env == "prod" && appCfg.SessionKey == "dev-only-change-me-please-0123456789ABCDEF" {
		return fmt.Errorf("session_key must be changed in production")
	}
	return nil
}
