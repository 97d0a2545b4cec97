// internal/app/store/comments/commentstore.go
package commentstore

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/filmhub/internal/app/system/changefeed"
	"github.com/dalemusser/filmhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/filmhub/internal/app/system/livequery"
	"github.com/dalemusser/filmhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNoActor is returned when a comment is attempted without a signed-in author.
	ErrNoActor = errors.New("comment requires a signed-in author")
	// ErrEmptyText is returned for blank comments.
	ErrEmptyText = errors.New("comment text is empty")
)

// MaxTextLength bounds a single comment, in runes.
const MaxTextLength = 2000

// Actor identifies who is writing a comment.
type Actor struct {
	ID   string
	Name string
}

type Store struct {
	c    *mongo.Collection
	feed *changefeed.Feed
}

func New(db *mongo.Database, feed *changefeed.Feed) *Store {
	return &Store{c: db.Collection("film_comments"), feed: feed}
}

// Topic is the change-feed topic for one film's comments.
func Topic(filmID primitive.ObjectID) string {
	return "comments." + filmID.Hex()
}

// List returns a film's comments, newest first.
func (s *Store) List(ctx context.Context, filmID primitive.ObjectID) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"film_id": filmID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Comment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Watch streams List snapshots for filmID until closed.
func (s *Store) Watch(ctx context.Context, filmID primitive.ObjectID) (*livequery.Subscription[[]models.Comment], error) {
	listen := func(ctx context.Context) (<-chan changefeed.Change, error) {
		return s.feed.Listen(ctx, Topic(filmID))
	}
	load := func(ctx context.Context) ([]models.Comment, error) {
		return s.List(ctx, filmID)
	}
	return livequery.Open[[]models.Comment, changefeed.Change](ctx, listen, load)
}

// Append stores a comment by actor. It rejects a missing actor or blank text
// before touching the database; created_at comes from the database clock.
func (s *Store) Append(ctx context.Context, filmID primitive.ObjectID, actor Actor, text string) (primitive.ObjectID, error) {
	if strings.TrimSpace(actor.ID) == "" {
		return primitive.NilObjectID, ErrNoActor
	}
	clean := htmlsanitize.PlainText(text)
	if clean == "" {
		return primitive.NilObjectID, ErrEmptyText
	}
	if r := []rune(clean); len(r) > MaxTextLength {
		clean = string(r[:MaxTextLength])
	}

	id := primitive.NewObjectID()
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$setOnInsert": bson.M{
				"film_id":   filmID,
				"user_id":   actor.ID,
				"user_name": models.DisplayName(actor.Name),
				"text":      clean,
			},
			"$currentDate": bson.M{"created_at": true},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return primitive.NilObjectID, err
	}

	s.feed.Notify(Topic(filmID), changefeed.Change{Kind: changefeed.Created, ID: id.Hex()})
	return id, nil
}
