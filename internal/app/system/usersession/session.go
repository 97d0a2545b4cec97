package usersession

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dalemusser/filmhub/internal/app/system/livequery"
	"github.com/dalemusser/filmhub/internal/domain/models"
)

// ErrNoValue is returned by First when the context ends before a value.
var ErrNoValue = errors.New("no session value")

// Session is one client's view of who is signed in.
type Session struct {
	clientID string
	hydrate  sync.Once

	mu        sync.Mutex
	user      *models.User
	lastSeen  time.Time
	listeners map[int]chan struct{}
	nextID    int
}

func newSession(clientID string) *Session {
	return &Session{clientID: clientID, listeners: make(map[int]chan struct{})}
}

// NewStatic returns a detached session fixed to u. It is never rehydrated
// and nothing writes to it; handler tests use it to stand in for a client.
func NewStatic(clientID string, u *models.User) *Session {
	s := newSession(clientID)
	s.hydrate.Do(func() {})
	s.user = u.Clone()
	return s
}

// ClientID returns the browser client the session belongs to.
func (s *Session) ClientID() string {
	return s.clientID
}

// Current returns a copy of the signed-in user, or nil.
func (s *Session) Current() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user.Clone()
}

// Subscribe streams the current user and every later change until the
// subscription is closed or ctx ends.
func (s *Session) Subscribe(ctx context.Context) (*livequery.Subscription[*models.User], error) {
	load := func(context.Context) (*models.User, error) {
		return s.Current(), nil
	}
	return livequery.Open[*models.User, struct{}](ctx, s.listen, load)
}

// First returns exactly the first value of the user stream.
func (s *Session) First(ctx context.Context) (*models.User, error) {
	sub, err := s.Subscribe(ctx)
	if err != nil {
		return nil, err
	}
	defer sub.Close()

	u, ok := sub.Next(ctx)
	if !ok {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrNoValue
	}
	return u, nil
}

func (s *Session) set(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u.Clone()
	for _, ch := range s.listeners {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// listen registers a change signal that is closed when ctx ends.
func (s *Session) listen(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.listeners, id)
		close(ch)
		s.mu.Unlock()
	}()
	return ch, nil
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners) == 0 && s.lastSeen.Before(cutoff)
}
