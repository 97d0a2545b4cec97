package identity_test

import (
	"context"
	"sync"
	"testing"

	"github.com/dalemusser/filmhub/internal/app/system/identity"
	"github.com/dalemusser/filmhub/internal/app/system/indexes"
	"github.com/dalemusser/filmhub/internal/testutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newProvider(t *testing.T) *identity.MongoProvider {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	return identity.NewMongoProvider(db, identity.Options{BcryptCost: bcrypt.MinCost}, zap.NewNop())
}

type recorder struct {
	mu     sync.Mutex
	events []identity.Event
}

func (r *recorder) listen(_ context.Context, ev identity.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) all() []identity.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]identity.Event(nil), r.events...)
}

func TestRegister_SignsInAndEmits(t *testing.T) {
	p := newProvider(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rec := &recorder{}
	defer p.Subscribe(rec.listen)()

	cred, err := p.Register(ctx, "client-1", "Rina@Example.com", "secret1", "Rina")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if cred.UID == "" || cred.Email != "rina@example.com" || cred.DisplayName != "Rina" {
		t.Errorf("credential: got %+v", cred)
	}

	events := rec.all()
	if len(events) != 1 {
		t.Fatalf("events: got %d, want 1", len(events))
	}
	if events[0].ClientID != "client-1" || events[0].Credential == nil || events[0].Credential.UID != cred.UID {
		t.Errorf("event: got %+v", events[0])
	}
	if cur, ok := p.Current("client-1"); !ok || cur.UID != cred.UID {
		t.Errorf("Current: got %+v ok=%v", cur, ok)
	}
}

func TestRegister_ErrorCodes(t *testing.T) {
	p := newProvider(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := p.Register(ctx, "c", "taken@example.com", "secret1", ""); err != nil {
		t.Fatalf("seed Register failed: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		want     identity.Code
	}{
		{"invalid email", "not-an-email", "secret1", identity.CodeInvalidEmail},
		{"weak password", "new@example.com", "12345", identity.CodeWeakPassword},
		{"email in use", "TAKEN@example.com", "secret1", identity.CodeEmailInUse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Register(ctx, "c2", tt.email, tt.password, "")
			if got := identity.CodeOf(err); got != tt.want {
				t.Errorf("code: got %q, want %q (err=%v)", got, tt.want, err)
			}
		})
	}
}

func TestSignIn_ErrorCodes(t *testing.T) {
	p := newProvider(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := p.Register(ctx, "c", "viewer@example.com", "secret1", "Viewer"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, err := p.SignIn(ctx, "c2", "ghost@example.com", "secret1"); identity.CodeOf(err) != identity.CodeUserNotFound {
		t.Errorf("unknown email: got %v", err)
	}
	if _, err := p.SignIn(ctx, "c2", "viewer@example.com", "wrong-pass"); identity.CodeOf(err) != identity.CodeWrongPassword {
		t.Errorf("wrong password: got %v", err)
	}
	if _, err := p.SignIn(ctx, "c2", "bad email", "secret1"); identity.CodeOf(err) != identity.CodeInvalidEmail {
		t.Errorf("invalid email: got %v", err)
	}
	if _, ok := p.Current("c2"); ok {
		t.Error("failed sign-ins must not sign the client in")
	}

	cred, err := p.SignIn(ctx, "c2", " VIEWER@example.com ", "secret1")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if cred.DisplayName != "Viewer" {
		t.Errorf("display name: got %q", cred.DisplayName)
	}
}

func TestSignOut_EmitsNil(t *testing.T) {
	p := newProvider(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rec := &recorder{}
	unsubscribe := p.Subscribe(rec.listen)
	defer unsubscribe()

	if _, err := p.Register(ctx, "c", "out@example.com", "secret1", ""); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := p.SignOut(ctx, "c"); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}

	events := rec.all()
	if len(events) != 2 {
		t.Fatalf("events: got %d, want 2", len(events))
	}
	if events[1].Credential != nil {
		t.Errorf("sign-out event should carry nil credential, got %+v", events[1].Credential)
	}
	if _, ok := p.Current("c"); ok {
		t.Error("client still signed in after SignOut")
	}
}

func TestUnsubscribe_StopsDelivery(t *testing.T) {
	p := newProvider(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rec := &recorder{}
	unsubscribe := p.Subscribe(rec.listen)
	unsubscribe()
	unsubscribe()

	_ = p.SignOut(ctx, "c")
	if n := len(rec.all()); n != 0 {
		t.Errorf("events after unsubscribe: got %d, want 0", n)
	}
}

func TestRefresh_ReannouncesSignedInClient(t *testing.T) {
	p := newProvider(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := p.Register(ctx, "c", "fresh@example.com", "secret1", "Fresh"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	rec := &recorder{}
	defer p.Subscribe(rec.listen)()

	if err := p.Refresh(ctx, "c"); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if err := p.Refresh(ctx, "signed-out-client"); err != nil {
		t.Fatalf("Refresh of signed-out client failed: %v", err)
	}

	events := rec.all()
	if len(events) != 1 || events[0].Credential == nil || events[0].Credential.Email != "fresh@example.com" {
		t.Errorf("events: got %+v", events)
	}
}
