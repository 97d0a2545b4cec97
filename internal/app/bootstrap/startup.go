// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"

	"github.com/dalemusser/filmhub/internal/app/resources"
	userstore "github.com/dalemusser/filmhub/internal/app/store/users"
	"github.com/dalemusser/filmhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time initialization after the database is ready and
// before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})

	if err := promoteAdmin(ctx, deps.Users, appCfg.AdminEmail, logger); err != nil {
		return err
	}

	deps.Cleanup.Start()
	return nil
}

// promoteAdmin gives the admin role to the profile registered under email.
// A missing profile is only logged; the next restart after sign-up picks
// it up.
func promoteAdmin(ctx context.Context, users *userstore.Store, email string, logger *zap.Logger) error {
	if email == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	u, err := users.PromoteByEmail(ctx, email)
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		logger.Warn("admin_email has no profile yet; register it and restart",
			zap.String("email", email))
		return nil
	case err != nil:
		logger.Error("admin promotion failed", zap.String("email", email), zap.Error(err))
		return err
	}

	logger.Info("admin profile ensured", zap.String("uid", u.UID), zap.String("email", email))
	return nil
}
