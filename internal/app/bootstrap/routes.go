// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"crypto/sha256"
	"net/http"

	adminfeature "github.com/dalemusser/filmhub/internal/app/features/admin"
	errorsfeature "github.com/dalemusser/filmhub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/filmhub/internal/app/features/health"
	homefeature "github.com/dalemusser/filmhub/internal/app/features/home"
	loginfeature "github.com/dalemusser/filmhub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/filmhub/internal/app/features/logout"
	moviesfeature "github.com/dalemusser/filmhub/internal/app/features/movies"
	registerfeature "github.com/dalemusser/filmhub/internal/app/features/register"
	metricsstore "github.com/dalemusser/filmhub/internal/app/store/metrics"
	"github.com/dalemusser/filmhub/internal/app/system/gates"
	"github.com/dalemusser/filmhub/internal/app/system/metrics"
	"github.com/dalemusser/filmhub/internal/app/system/ratelimit"
	"github.com/dalemusser/filmhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root router.
//
// Public pages (login, register, logout, not-authorized) sit at the top
// level. The catalog (/home, /movies, /movie) needs any signed-in user; the
// dashboard (/admin) needs an admin. Everything else redirects to /login.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	dev := coreCfg.Env == "dev"

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(dev)
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	sm := deps.SessionMgr
	viewdata.SetFlashSource(sm.PopFlash)

	errLog := deps.ErrLog
	tr := deps.Translator

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if dev {
		r.Use(plaintext)
	}
	r.Use(csrfProtect(appCfg.SessionKey, coreCfg.Env == "prod", logger))

	// Loads the client's session so handlers can read auth.CurrentUser(r).
	r.Use(sm.LoadSession)

	// Operational endpoints
	r.Handle("/metrics", metrics.Handler())
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Sessions, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Authentication
	loginThrottle := ratelimit.Auth("login", appCfg.LoginRateLimit, ratelimit.DefaultWindow, tr, logger)
	loginHandler := loginfeature.NewHandler(deps.Auth, sm, errLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler, loginThrottle))

	registerThrottle := ratelimit.Auth("register", appCfg.LoginRateLimit, ratelimit.DefaultWindow, tr, logger)
	registerHandler := registerfeature.NewHandler(deps.Auth, sm, errLog, appCfg.PasswordMinLength, logger)
	r.Mount("/register", registerfeature.Routes(registerHandler, registerThrottle))

	logoutHandler := logoutfeature.NewHandler(deps.Auth, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/not-authorized", errorsHandler.NotAuthorized)

	// Catalog: any signed-in user
	moviesHandler := moviesfeature.NewHandler(deps.Films, deps.Comments, deps.Feed, tr, sm, errLog, logger)
	r.Group(func(ur chi.Router) {
		ur.Use(gates.Middleware(gates.Authenticated(), gates.AnyUser()))

		homeHandler := homefeature.NewHandler(deps.Films, tr, errLog, logger)
		ur.Mount("/home", homefeature.Routes(homeHandler))
		ur.Mount("/movies", moviesfeature.ListRoutes(moviesHandler))
		ur.Mount("/movie", moviesfeature.DetailRoutes(moviesHandler))
	})

	// Dashboard: admins only
	r.Group(func(ar chi.Router) {
		ar.Use(gates.Middleware(gates.Authenticated(), gates.Admin()))

		counts := func(ctx context.Context) metricsstore.Counts {
			return metricsstore.FetchDashboardCounts(ctx, deps.MongoDatabase)
		}
		adminHandler := adminfeature.NewHandler(deps.Films, counts, tr, sm, errLog, logger)
		ar.Mount("/admin", adminfeature.Routes(adminHandler))
	})

	r.Get("/", errorsHandler.NotFound)
	r.NotFound(errorsHandler.NotFound)

	return r, nil
}

// csrfProtect guards every unsafe method with a gorilla/csrf token. The
// token key is derived from the session key so one secret covers both.
func csrfProtect(sessionKey string, secure bool, logger *zap.Logger) func(http.Handler) http.Handler {
	key := sha256.Sum256([]byte("filmhub-csrf:" + sessionKey))
	return csrf.Protect(key[:],
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn("csrf check failed",
				zap.String("path", r.URL.Path),
				zap.Error(csrf.FailureReason(r)))
			http.Error(w, "Forbidden - invalid CSRF token", http.StatusForbidden)
		})),
	)
}

// plaintext marks requests as plain HTTP so gorilla/csrf skips the
// TLS-only origin checks during local development.
func plaintext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}
