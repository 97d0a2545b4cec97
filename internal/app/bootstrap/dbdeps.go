// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	errorsfeature "github.com/dalemusser/filmhub/internal/app/features/errors"
	commentstore "github.com/dalemusser/filmhub/internal/app/store/comments"
	filmstore "github.com/dalemusser/filmhub/internal/app/store/films"
	"github.com/dalemusser/filmhub/internal/app/store/sessionstorage"
	userstore "github.com/dalemusser/filmhub/internal/app/store/users"
	"github.com/dalemusser/filmhub/internal/app/system/auth"
	"github.com/dalemusser/filmhub/internal/app/system/changefeed"
	"github.com/dalemusser/filmhub/internal/app/system/identity"
	"github.com/dalemusser/filmhub/internal/app/system/locale"
	"github.com/dalemusser/filmhub/internal/app/system/usersession"
	"github.com/dalemusser/filmhub/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the backends and long-lived services built in ConnectDB.
// Every field is a pointer so the copies WAFFLE passes between hooks share
// the same instances.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	Feed     *changefeed.Feed
	Films    *filmstore.Store
	Comments *commentstore.Store
	Users    *userstore.Store
	Storage  *sessionstorage.Store

	Identity   *identity.MongoProvider
	Sessions   *usersession.Manager
	SessionMgr *auth.SessionManager
	Auth       *auth.Service
	Translator *locale.Translator
	ErrLog     *errorsfeature.ErrorLogger

	Cleanup *workers.SessionCleanup
}
