package userstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/filmhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no profile exists for the uid or email.
var ErrNotFound = errors.New("profile not found")

// Store holds application profiles keyed by identity-provider uid.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// Get loads the profile for uid.
func (s *Store) Get(ctx context.Context, uid string) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": uid}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	u.Role = models.ParseRole(string(u.Role))
	return u, nil
}

// GetByEmail looks a profile up by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	u.Role = models.ParseRole(string(u.Role))
	return u, nil
}

// FindProfile is Get with a found flag instead of ErrNotFound.
func (s *Store) FindProfile(ctx context.Context, uid string) (models.User, bool, error) {
	u, err := s.Get(ctx, uid)
	if errors.Is(err, ErrNotFound) {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, err
	}
	return u, true, nil
}

// SaveProfile merges name and email into the profile for u.UID, creating it
// if needed. The role is only written when the document is created, so an
// existing admin is never demoted by a later save.
func (s *Store) SaveProfile(ctx context.Context, u models.User) error {
	if strings.TrimSpace(u.UID) == "" {
		return errors.New("profile uid is required")
	}
	role := u.Role
	if role == "" {
		role = models.RoleUser
	}
	now := time.Now().UTC()

	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": u.UID},
		bson.M{
			"$set": bson.M{
				"name":       strings.TrimSpace(u.Name),
				"email":      normalizeEmail(u.Email),
				"updated_at": now,
			},
			"$setOnInsert": bson.M{
				"role":       string(models.ParseRole(string(role))),
				"created_at": now,
			},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// SetRole changes the role of an existing profile.
func (s *Store) SetRole(ctx context.Context, uid string, role models.Role) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": uid},
		bson.M{"$set": bson.M{"role": string(role), "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// PromoteByEmail gives the admin role to the profile with email.
// Returns ErrNotFound when no such profile exists yet.
func (s *Store) PromoteByEmail(ctx context.Context, email string) (models.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		return models.User{}, err
	}
	if u.Role == models.RoleAdmin {
		return u, nil
	}
	if err := s.SetRole(ctx, u.UID, models.RoleAdmin); err != nil {
		return models.User{}, err
	}
	u.Role = models.RoleAdmin
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
