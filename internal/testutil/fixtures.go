package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/filmhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data. Records are
// written straight to their collections, bypassing store validation and
// change notifications.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateProfile inserts a user profile with a fresh uid.
func (f *Fixtures) CreateProfile(ctx context.Context, name, email string, role models.Role) models.User {
	f.t.Helper()
	now := time.Now().UTC()
	u := models.User{
		UID:       uuid.NewString(),
		Email:     email,
		Name:      name,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("CreateProfile(%q) failed: %v", email, err)
	}
	return u
}

// CreateFilm inserts a film. created_at is offset by age into the past so
// tests can control ordering.
func (f *Fixtures) CreateFilm(ctx context.Context, title string, published bool, age time.Duration) models.Film {
	f.t.Helper()
	at := time.Now().UTC().Add(-age).Truncate(time.Millisecond)
	film := models.Film{
		ID:        primitive.NewObjectID(),
		Title:     title,
		Genre:     "Drama",
		Year:      2020,
		Rating:    4,
		Published: published,
		CreatedAt: at,
		UpdatedAt: at,
	}
	if _, err := f.db.Collection("films").InsertOne(ctx, film); err != nil {
		f.t.Fatalf("CreateFilm(%q) failed: %v", title, err)
	}
	return film
}

// CreateComment inserts a comment by author on filmID.
func (f *Fixtures) CreateComment(ctx context.Context, filmID primitive.ObjectID, author models.User, text string) models.Comment {
	f.t.Helper()
	c := models.Comment{
		ID:        primitive.NewObjectID(),
		FilmID:    filmID,
		UserID:    author.UID,
		UserName:  models.DisplayName(author.Name, author.Email),
		Text:      text,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := f.db.Collection("film_comments").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("CreateComment failed: %v", err)
	}
	return c
}
