package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/filmhub/internal/app/system/usersession"
	"github.com/dalemusser/filmhub/internal/domain/models"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session constants                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	// DefaultSessionName is the cookie name used when none is configured.
	DefaultSessionName = "filmhub-session"

	clientIDKey = "client_id"
)

/*─────────────────────────────────────────────────────────────────────────────*
| SessionManager                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager ties a browser to its usersession.Session. The cookie only
// carries an opaque client id; who is signed in lives server side.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
	users *usersession.Manager
	log   *zap.Logger
}

// NewSessionManager builds the cookie store. The `secure` flag controls
// whether cookies are marked Secure and which SameSite mode is used.
//
// In production (secure=true), cookies are Secure + SameSite=None.
// In local dev over http://localhost, use secure=false so cookies are accepted.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, users *usersession.Manager, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = DefaultSessionName
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, users: users, log: logger}, nil
}

// LoadSession resolves the client id cookie, minting one on first visit,
// and injects the client's session into the request context.
func (sm *SessionManager) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := sm.clientID(w, r)
		s := sm.users.Session(r.Context(), clientID)
		next.ServeHTTP(w, WithSession(r, s))
	})
}

func (sm *SessionManager) clientID(w http.ResponseWriter, r *http.Request) string {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		if scErr, ok := err.(securecookie.Error); ok && scErr.IsDecode() {
			sm.log.Warn("session cookie invalid, using fresh session", zap.Error(err))
		} else {
			sm.log.Error("session store error, using fresh session", zap.Error(err))
		}
	}

	if id, ok := sess.Values[clientIDKey].(string); ok && id != "" {
		return id
	}

	id := uuid.NewString()
	sess.Values[clientIDKey] = id
	if err := sess.Save(r, w); err != nil {
		sm.log.Error("session save failed", zap.Error(err))
	}
	return id
}

/*─────────────────────────────────────────────────────────────────────────────*
| Request context helpers                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

type ctxKey string

const sessionKey ctxKey = "userSession"

// WithSession attaches s to the request context.
func WithSession(r *http.Request, s *usersession.Session) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), sessionKey, s))
}

// SessionFrom returns the session injected by LoadSession.
func SessionFrom(r *http.Request) (*usersession.Session, bool) {
	s, ok := r.Context().Value(sessionKey).(*usersession.Session)
	return s, ok && s != nil
}

// ClientID returns the browser client id, or "" outside LoadSession.
func ClientID(r *http.Request) string {
	if s, ok := SessionFrom(r); ok {
		return s.ClientID()
	}
	return ""
}

// CurrentUser returns a snapshot of the signed-in user & “found?” flag.
func CurrentUser(r *http.Request) (*models.User, bool) {
	s, ok := SessionFrom(r)
	if !ok {
		return nil, false
	}
	u := s.Current()
	return u, u != nil
}

// WithTestUser injects a detached session holding u. A nil u is a signed-out
// client. For use in tests.
func WithTestUser(r *http.Request, u *models.User) *http.Request {
	return WithSession(r, usersession.NewStatic("test-client", u))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Flash messages                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	flashOK  = "flash_ok"
	flashErr = "flash_err"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Message string
	Error   bool
}

// SetFlash queues msg for the next page the client renders.
func (sm *SessionManager) SetFlash(w http.ResponseWriter, r *http.Request, f Flash) {
	sess, _ := sm.store.Get(r, sm.name)
	key := flashOK
	if f.Error {
		key = flashErr
	}
	sess.AddFlash(f.Message, key)
	if err := sess.Save(r, w); err != nil {
		sm.log.Error("session save failed", zap.Error(err))
	}
}

// PopFlash returns and clears the queued flash, errors first.
func (sm *SessionManager) PopFlash(w http.ResponseWriter, r *http.Request) (Flash, bool) {
	sess, _ := sm.store.Get(r, sm.name)
	errs := sess.Flashes(flashErr)
	oks := sess.Flashes(flashOK)
	if len(errs) == 0 && len(oks) == 0 {
		return Flash{}, false
	}
	if err := sess.Save(r, w); err != nil {
		sm.log.Error("session save failed", zap.Error(err))
	}

	f := Flash{}
	if len(errs) > 0 {
		f.Message, _ = errs[len(errs)-1].(string)
		f.Error = true
	} else {
		f.Message, _ = oks[len(oks)-1].(string)
	}
	return f, f.Message != ""
}
