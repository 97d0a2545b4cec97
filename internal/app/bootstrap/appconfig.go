// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds FilmHub's own configuration.
//
// WAFFLE's CoreConfig covers the framework side (ports, TLS, logging,
// request limits). Everything here is specific to FilmHub and is loaded in
// LoadConfig from config files, FILMHUB_* environment variables, or flags.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI      string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase string // Database name within MongoDB

	// Session cookie configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: filmhub-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// Server-side session storage housekeeping
	SessionStorageIdle     time.Duration // Records untouched this long are removed
	SessionCleanupInterval time.Duration // How often the cleanup worker runs

	// Accounts
	PasswordMinLength int    // Minimum password length at sign-up
	LoginRateLimit    int    // Login/register attempts per IP per minute (0 disables)
	AdminEmail        string // Profile promoted to admin at startup

	// Language used when the browser expresses no preference
	DefaultLocale string

	// Timeouts for one-shot database calls
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
