// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	errorsfeature "github.com/dalemusser/filmhub/internal/app/features/errors"
	commentstore "github.com/dalemusser/filmhub/internal/app/store/comments"
	filmstore "github.com/dalemusser/filmhub/internal/app/store/films"
	"github.com/dalemusser/filmhub/internal/app/store/sessionstorage"
	userstore "github.com/dalemusser/filmhub/internal/app/store/users"
	"github.com/dalemusser/filmhub/internal/app/system/auth"
	"github.com/dalemusser/filmhub/internal/app/system/changefeed"
	"github.com/dalemusser/filmhub/internal/app/system/identity"
	"github.com/dalemusser/filmhub/internal/app/system/indexes"
	"github.com/dalemusser/filmhub/internal/app/system/locale"
	"github.com/dalemusser/filmhub/internal/app/system/usersession"
	"github.com/dalemusser/filmhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB dials MongoDB and assembles the services that sit on top of it:
// the change feed, the stores, the identity provider and session layer.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	connectCtx, cancel := context.WithTimeout(ctx, appCfg.TimeoutMedium)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().
		ApplyURI(appCfg.MongoURI).
		SetServerSelectionTimeout(appCfg.TimeoutShort))
	if err != nil {
		logger.Error("MongoDB connect failed", zap.Error(err))
		return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		logger.Error("MongoDB ping failed", zap.Error(err))
		return DBDeps{}, fmt.Errorf("ping mongo: %w", err)
	}
	db := client.Database(appCfg.MongoDatabase)
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	tr, err := locale.New(appCfg.DefaultLocale, logger)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("load translations: %w", err)
	}

	feed := changefeed.NewInProcess(logger)
	users := userstore.New(db)
	storage := sessionstorage.New(db)

	provider := identity.NewMongoProvider(db, identity.Options{
		MinPasswordLength: appCfg.PasswordMinLength,
	}, logger)
	sessions := usersession.NewManager(provider, users, storage, logger)

	secure := coreCfg.Env == "prod"
	sm, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain,
		appCfg.SessionMaxAge, secure, sessions, logger)
	if err != nil {
		sessions.Close()
		_ = feed.Close()
		_ = client.Disconnect(context.Background())
		logger.Error("session manager init failed", zap.Error(err))
		return DBDeps{}, err
	}

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: db,

		Feed:     feed,
		Films:    filmstore.New(db, feed),
		Comments: commentstore.New(db, feed),
		Users:    users,
		Storage:  storage,

		Identity:   provider,
		Sessions:   sessions,
		SessionMgr: sm,
		Auth:       auth.NewService(provider, users, sessions, tr, appCfg.PasswordMinLength, logger),
		Translator: tr,
		ErrLog:     errorsfeature.NewErrorLogger(logger),

		Cleanup: workers.NewSessionCleanup(storage, sessions, logger,
			appCfg.SessionCleanupInterval, appCfg.SessionStorageIdle),
	}, nil
}

// EnsureSchema creates the indexes every collection relies on.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, appCfg.TimeoutLong)
	defer cancel()

	if err := indexes.EnsureAll(ctx, deps.MongoDatabase, logger); err != nil {
		logger.Error("ensure indexes failed", zap.Error(err))
		return err
	}
	logger.Info("indexes ensured", zap.Duration("took", time.Since(start)))
	return nil
}
