// Package usersession keeps the current user of every browser client.
//
// A Session is materialized the first time a client is seen. At that moment
// it is rehydrated from the client's session storage. After that, the only
// writer is the Manager's identity listener: register, sign-in and sign-out
// change the session by way of provider events. Clear is the one direct path,
// used when a logout cannot reach the provider.
package usersession

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/dalemusser/filmhub/internal/app/system/identity"
	"github.com/dalemusser/filmhub/internal/domain/models"
	"go.uber.org/zap"
)

// StorageKey is the session-storage key holding the cached user.
const StorageKey = "user"

// Storage is the per-client key/value store sessions persist to.
type Storage interface {
	Get(ctx context.Context, clientID, key string) (string, bool, error)
	Set(ctx context.Context, clientID, key, value string) error
	Remove(ctx context.Context, clientID, key string) error
}

// Profiles loads and lazily creates application profiles.
type Profiles interface {
	FindProfile(ctx context.Context, uid string) (models.User, bool, error)
	SaveProfile(ctx context.Context, u models.User) error
}

// Manager owns the sessions of all clients.
type Manager struct {
	storage  Storage
	profiles Profiles
	log      *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session

	unsubscribe func()
}

// NewManager creates a Manager and subscribes it to provider's events.
func NewManager(provider identity.Provider, profiles Profiles, storage Storage, logger *zap.Logger) *Manager {
	m := &Manager{
		storage:  storage,
		profiles: profiles,
		log:      logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
	m.unsubscribe = provider.Subscribe(m.handle)
	return m
}

// Close detaches the manager from the identity provider.
func (m *Manager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Session returns the session for clientID, materializing and rehydrating
// it on first use.
func (m *Manager) Session(ctx context.Context, clientID string) *Session {
	m.mu.Lock()
	s, ok := m.sessions[clientID]
	if !ok {
		s = newSession(clientID)
		m.sessions[clientID] = s
	}
	m.mu.Unlock()

	s.touch(m.now())
	s.hydrate.Do(func() { m.rehydrate(ctx, s) })
	return s
}

// rehydrate loads the cached user and reconciles it with the stored
// profile, so role changes made while the client was away take effect. A
// value that does not decode to a user is discarded: the key is removed and
// the session starts signed out.
func (m *Manager) rehydrate(ctx context.Context, s *Session) {
	raw, ok, err := m.storage.Get(ctx, s.clientID, StorageKey)
	if err != nil {
		m.log.Error("session storage read failed", zap.String("client_id", s.clientID), zap.Error(err))
		return
	}
	if !ok {
		return
	}

	u, err := decodeUser(raw)
	if err != nil {
		m.log.Warn("discarding corrupted session user",
			zap.String("client_id", s.clientID), zap.Error(err))
		if err := m.storage.Remove(ctx, s.clientID, StorageKey); err != nil {
			m.log.Error("session storage remove failed", zap.String("client_id", s.clientID), zap.Error(err))
		}
		return
	}

	fresh, err := m.resolveProfile(ctx, identity.Credential{UID: u.UID, Email: u.Email, DisplayName: u.Name})
	if err != nil {
		m.log.Warn("profile reconcile failed; using cached user",
			zap.String("client_id", s.clientID), zap.String("uid", u.UID), zap.Error(err))
		s.set(u)
		return
	}
	s.set(&fresh)
	if !sameCached(*u, fresh) {
		m.persist(ctx, s.clientID, fresh)
	}
}

// sameCached compares the fields that are cached in session storage.
func sameCached(a, b models.User) bool {
	return a.UID == b.UID && a.Email == b.Email && a.Name == b.Name && a.Role == b.Role
}

var errNoUID = errors.New("cached user has no uid")

func decodeUser(raw string) (*models.User, error) {
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, err
	}
	if u.UID == "" {
		return nil, errNoUID
	}
	u.Role = models.ParseRole(string(u.Role))
	return &u, nil
}

// handle is the single writer of session state.
func (m *Manager) handle(ctx context.Context, ev identity.Event) {
	if ev.Credential == nil {
		m.Clear(ctx, ev.ClientID)
		return
	}
	s := m.Session(ctx, ev.ClientID)

	u, err := m.resolveProfile(ctx, *ev.Credential)
	if err != nil {
		m.log.Error("profile load failed",
			zap.String("client_id", ev.ClientID),
			zap.String("uid", ev.Credential.UID),
			zap.Error(err))
		return
	}
	s.set(&u)
	m.persist(ctx, ev.ClientID, u)
}

// Clear signs the client's session out and drops its cached user. Sign-out
// events land here; logout also calls it directly when the provider fails.
func (m *Manager) Clear(ctx context.Context, clientID string) {
	m.Session(ctx, clientID).set(nil)
	if err := m.storage.Remove(ctx, clientID, StorageKey); err != nil {
		m.log.Error("session storage remove failed", zap.String("client_id", clientID), zap.Error(err))
	}
}

func (m *Manager) persist(ctx context.Context, clientID string, u models.User) {
	raw, err := json.Marshal(u)
	if err != nil {
		m.log.Error("encode session user failed", zap.Error(err))
		return
	}
	if err := m.storage.Set(ctx, clientID, StorageKey, string(raw)); err != nil {
		m.log.Error("session storage write failed", zap.String("client_id", clientID), zap.Error(err))
	}
}

// resolveProfile loads the profile for cred, creating a user-role profile
// when none exists. Name falls back to display name, then email.
func (m *Manager) resolveProfile(ctx context.Context, cred identity.Credential) (models.User, error) {
	p, found, err := m.profiles.FindProfile(ctx, cred.UID)
	if err != nil {
		return models.User{}, err
	}

	if !found {
		p = models.User{
			UID:   cred.UID,
			Email: cred.Email,
			Name:  models.DisplayName(cred.DisplayName, cred.Email),
			Role:  models.RoleUser,
		}
		if err := m.profiles.SaveProfile(ctx, p); err != nil {
			return models.User{}, err
		}
		return p, nil
	}

	if p.Email == "" {
		p.Email = cred.Email
	}
	p.Name = models.DisplayName(p.Name, cred.DisplayName, p.Email)
	p.Role = models.ParseRole(string(p.Role))
	return p, nil
}

// EvictIdle drops in-memory sessions not seen within threshold that have no
// live subscribers. Their state survives in session storage.
func (m *Manager) EvictIdle(threshold time.Duration) int {
	cutoff := m.now().Add(-threshold)

	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, s := range m.sessions {
		if s.idleSince(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Active returns the clients seen within threshold.
func (m *Manager) Active(threshold time.Duration) []string {
	cutoff := m.now().Add(-threshold)

	m.mu.Lock()
	defer m.mu.Unlock()

	var ids []string
	for id, s := range m.sessions {
		if !s.idleSince(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Len reports how many sessions are held in memory.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
