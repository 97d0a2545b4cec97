package identity

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/filmhub/internal/app/system/inputval"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// DefaultMinPasswordLength matches the minimum the sign-up form enforces.
const DefaultMinPasswordLength = 6

// Options tunes a MongoProvider. Zero values pick defaults.
type Options struct {
	MinPasswordLength int
	BcryptCost        int
}

type credentialDoc struct {
	UID          string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash []byte    `bson:"password_hash"`
	DisplayName  string    `bson:"display_name"`
	CreatedAt    time.Time `bson:"created_at"`
}

func (d credentialDoc) credential() Credential {
	return Credential{UID: d.UID, Email: d.Email, DisplayName: d.DisplayName}
}

type subscriber struct {
	id int
	fn Listener
}

// MongoProvider stores credentials in the "credentials" collection and keeps
// sign-in state per client in memory.
type MongoProvider struct {
	c        *mongo.Collection
	minLen   int
	cost     int
	log      *zap.Logger
	mu       sync.Mutex
	signedIn map[string]Credential

	subMu  sync.Mutex
	subs   []subscriber
	nextID int

	// dispatchMu keeps events in the order their state changes happened.
	dispatchMu sync.Mutex
}

var _ Provider = (*MongoProvider)(nil)

func NewMongoProvider(db *mongo.Database, opts Options, logger *zap.Logger) *MongoProvider {
	if opts.MinPasswordLength <= 0 {
		opts.MinPasswordLength = DefaultMinPasswordLength
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &MongoProvider{
		c:        db.Collection("credentials"),
		minLen:   opts.MinPasswordLength,
		cost:     opts.BcryptCost,
		log:      logger,
		signedIn: make(map[string]Credential),
	}
}

// Register creates a credential and signs clientID in with it.
func (p *MongoProvider) Register(ctx context.Context, clientID, email, password, displayName string) (Credential, error) {
	email = normalizeEmail(email)
	if !inputval.IsValidEmail(email) {
		return Credential{}, fail(CodeInvalidEmail, nil)
	}
	if len([]rune(password)) < p.minLen {
		return Credential{}, fail(CodeWeakPassword, nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return Credential{}, fail(CodeInternal, err)
	}

	doc := credentialDoc{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(displayName),
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := p.c.InsertOne(ctx, doc); err != nil {
		if wafflemongo.IsDup(err) {
			return Credential{}, fail(CodeEmailInUse, nil)
		}
		return Credential{}, fail(CodeInternal, err)
	}

	cred := doc.credential()
	p.setSignedIn(ctx, clientID, &cred)
	return cred, nil
}

// SignIn checks the password for email and signs clientID in.
func (p *MongoProvider) SignIn(ctx context.Context, clientID, email, password string) (Credential, error) {
	email = normalizeEmail(email)
	if !inputval.IsValidEmail(email) {
		return Credential{}, fail(CodeInvalidEmail, nil)
	}

	var doc credentialDoc
	if err := p.c.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Credential{}, fail(CodeUserNotFound, nil)
		}
		return Credential{}, fail(CodeInternal, err)
	}
	if err := bcrypt.CompareHashAndPassword(doc.PasswordHash, []byte(password)); err != nil {
		return Credential{}, fail(CodeWrongPassword, nil)
	}

	cred := doc.credential()
	p.setSignedIn(ctx, clientID, &cred)
	return cred, nil
}

// SignOut clears clientID's sign-in state. Signing out an already signed-out
// client still emits an event.
func (p *MongoProvider) SignOut(ctx context.Context, clientID string) error {
	p.setSignedIn(ctx, clientID, nil)
	return nil
}

// Refresh re-reads the credential of a signed-in client and re-announces it.
// A credential that no longer exists signs the client out.
func (p *MongoProvider) Refresh(ctx context.Context, clientID string) error {
	cur, ok := p.Current(clientID)
	if !ok {
		return nil
	}

	var doc credentialDoc
	err := p.c.FindOne(ctx, bson.M{"_id": cur.UID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		p.setSignedIn(ctx, clientID, nil)
		return nil
	}
	if err != nil {
		return fail(CodeInternal, err)
	}

	cred := doc.credential()
	p.setSignedIn(ctx, clientID, &cred)
	return nil
}

// Current returns the credential clientID is signed in with.
func (p *MongoProvider) Current(clientID string) (Credential, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.signedIn[clientID]
	return c, ok
}

// Subscribe registers fn for every future event. Listeners run in
// registration order on the goroutine that changed the state.
func (p *MongoProvider) Subscribe(fn Listener) func() {
	p.subMu.Lock()
	p.nextID++
	id := p.nextID
	p.subs = append(p.subs, subscriber{id: id, fn: fn})
	p.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.subMu.Lock()
			defer p.subMu.Unlock()
			for i, s := range p.subs {
				if s.id == id {
					p.subs = append(p.subs[:i:i], p.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (p *MongoProvider) setSignedIn(ctx context.Context, clientID string, cred *Credential) {
	p.dispatchMu.Lock()
	defer p.dispatchMu.Unlock()

	p.mu.Lock()
	if cred == nil {
		delete(p.signedIn, clientID)
	} else {
		p.signedIn[clientID] = *cred
	}
	p.mu.Unlock()

	p.subMu.Lock()
	subs := make([]subscriber, len(p.subs))
	copy(subs, p.subs)
	p.subMu.Unlock()

	ev := Event{ClientID: clientID}
	if cred != nil {
		c := *cred
		ev.Credential = &c
	}
	for _, s := range subs {
		s.fn(ctx, ev)
	}
	p.log.Debug("identity state changed",
		zap.String("client_id", clientID),
		zap.Bool("signed_in", cred != nil))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
