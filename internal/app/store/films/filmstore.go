// internal/app/store/films/filmstore.go
package filmstore

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dalemusser/filmhub/internal/app/system/changefeed"
	"github.com/dalemusser/filmhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/filmhub/internal/app/system/livequery"
	"github.com/dalemusser/filmhub/internal/app/system/videourl"
	"github.com/dalemusser/filmhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Topic is the change-feed topic every film write is announced on.
const Topic = "films"

var (
	// ErrNotFound is returned when no film has the requested id.
	ErrNotFound = errors.New("film not found")
	// ErrInvalid wraps field-level rejections.
	ErrInvalid = errors.New("invalid film")
)

type Store struct {
	c    *mongo.Collection
	feed *changefeed.Feed
	now  func() time.Time
}

func New(db *mongo.Database, feed *changefeed.Feed) *Store {
	return &Store{c: db.Collection("films"), feed: feed, now: time.Now}
}

// newestFirst orders by creation time with the id as tie-breaker.
var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

// Draft is the input for Create. A nil Published stores false.
type Draft struct {
	Title       string
	Description string
	Genre       string
	Year        int
	Rating      float64
	Poster      string
	VideoURL    string
	Published   *bool
}

// Patch is a partial update; only non-nil fields are written.
type Patch struct {
	Title       *string
	Description *string
	Genre       *string
	Year        *int
	Rating      *float64
	Poster      *string
	VideoURL    *string
	Published   *bool
}

// ListAll returns every film, newest first.
func (s *Store) ListAll(ctx context.Context) ([]models.Film, error) {
	return s.find(ctx, bson.M{})
}

// ListPublished returns the published films, newest first.
func (s *Store) ListPublished(ctx context.Context) ([]models.Film, error) {
	return s.find(ctx, bson.M{"published": true})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Film, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	films := []models.Film{}
	if err := cur.All(ctx, &films); err != nil {
		return nil, err
	}
	return films, nil
}

// Get loads one film. Returns ErrNotFound if it does not exist.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (models.Film, error) {
	var f models.Film
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&f); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Film{}, ErrNotFound
		}
		return models.Film{}, err
	}
	return f, nil
}

// Create stores a new film and returns its id. Timestamps come from the
// database clock and the video URL is stored in embed form.
func (s *Store) Create(ctx context.Context, d Draft) (primitive.ObjectID, error) {
	d.Title = strings.TrimSpace(d.Title)
	if err := checkTitle(d.Title); err != nil {
		return primitive.NilObjectID, err
	}
	if err := s.checkYear(d.Year); err != nil {
		return primitive.NilObjectID, err
	}
	if err := checkRating(d.Rating); err != nil {
		return primitive.NilObjectID, err
	}

	published := false
	if d.Published != nil {
		published = *d.Published
	}

	doc := bson.M{
		"title":       d.Title,
		"description": htmlsanitize.PlainText(d.Description),
		"year":        d.Year,
		"rating":      d.Rating,
		"poster":      strings.TrimSpace(d.Poster),
		"video_url":   videourl.Normalize(d.VideoURL),
		"published":   published,
	}
	if g := strings.TrimSpace(d.Genre); g != "" {
		doc["genre"] = g
	}

	id := primitive.NewObjectID()
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$setOnInsert": doc,
			"$currentDate": bson.M{"created_at": true, "updated_at": true},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return primitive.NilObjectID, err
	}

	s.feed.Notify(Topic, changefeed.Change{Kind: changefeed.Created, ID: id.Hex()})
	return id, nil
}

// Update merges p into the stored film and refreshes updated_at, even when
// p carries no fields. Returns ErrNotFound if the film does not exist.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, p Patch) error {
	set := bson.M{}

	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if err := checkTitle(title); err != nil {
			return err
		}
		set["title"] = title
	}
	if p.Description != nil {
		set["description"] = htmlsanitize.PlainText(*p.Description)
	}
	if p.Genre != nil {
		set["genre"] = strings.TrimSpace(*p.Genre)
	}
	if p.Year != nil {
		if err := s.checkYear(*p.Year); err != nil {
			return err
		}
		set["year"] = *p.Year
	}
	if p.Rating != nil {
		if err := checkRating(*p.Rating); err != nil {
			return err
		}
		set["rating"] = *p.Rating
	}
	if p.Poster != nil {
		set["poster"] = strings.TrimSpace(*p.Poster)
	}
	if p.VideoURL != nil {
		set["video_url"] = videourl.Normalize(*p.VideoURL)
	}
	if p.Published != nil {
		set["published"] = *p.Published
	}

	update := bson.M{"$currentDate": bson.M{"updated_at": true}}
	if len(set) > 0 {
		update["$set"] = set
	}
	return s.updateOne(ctx, id, update)
}

// SetPublished flips the visibility of a film.
func (s *Store) SetPublished(ctx context.Context, id primitive.ObjectID, published bool) error {
	return s.updateOne(ctx, id, bson.M{
		"$set":         bson.M{"published": published},
		"$currentDate": bson.M{"updated_at": true},
	})
}

func (s *Store) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	s.feed.Notify(Topic, changefeed.Change{Kind: changefeed.Updated, ID: id.Hex()})
	return nil
}

// Delete removes the film. Its comments are left in place.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	s.feed.Notify(Topic, changefeed.Change{Kind: changefeed.Deleted, ID: id.Hex()})
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Live queries                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// WatchAll streams ListAll snapshots until closed.
func (s *Store) WatchAll(ctx context.Context) (*livequery.Subscription[[]models.Film], error) {
	return livequery.Open[[]models.Film, changefeed.Change](ctx, s.listen, s.ListAll)
}

// WatchPublished streams ListPublished snapshots until closed.
func (s *Store) WatchPublished(ctx context.Context) (*livequery.Subscription[[]models.Film], error) {
	return livequery.Open[[]models.Film, changefeed.Change](ctx, s.listen, s.ListPublished)
}

// WatchFilm streams one film. A missing or deleted film is a nil snapshot.
func (s *Store) WatchFilm(ctx context.Context, id primitive.ObjectID) (*livequery.Subscription[*models.Film], error) {
	load := func(ctx context.Context) (*models.Film, error) {
		f, err := s.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &f, nil
	}
	return livequery.Open[*models.Film, changefeed.Change](ctx, s.listen, load)
}

func (s *Store) listen(ctx context.Context) (<-chan changefeed.Change, error) {
	return s.feed.Listen(ctx, Topic)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Field checks                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func checkTitle(title string) error {
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalid)
	}
	return nil
}

func (s *Store) checkYear(year int) error {
	if year < models.YearMin || year > models.YearMax(s.now()) {
		return fmt.Errorf("%w: year %d out of range", ErrInvalid, year)
	}
	return nil
}

func checkRating(r float64) error {
	if math.IsNaN(r) || r < models.RatingMin || r > models.RatingMax {
		return fmt.Errorf("%w: rating %.1f out of range", ErrInvalid, r)
	}
	return nil
}
