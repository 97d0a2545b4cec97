// Package sessionstorage keeps a small key/value record per browser client,
// the server-side counterpart of the browser's session storage. Records are
// keyed by the client id carried in the session cookie.
package sessionstorage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrBadKey is returned for keys that cannot be stored as a field name.
var ErrBadKey = errors.New("invalid session storage key")

type record struct {
	ClientID  string            `bson:"_id"`
	Values    map[string]string `bson:"values"`
	TouchedAt time.Time         `bson:"touched_at"`
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("session_storage")}
}

func checkKey(key string) error {
	if key == "" || strings.ContainsAny(key, ".$") {
		return fmt.Errorf("%w: %q", ErrBadKey, key)
	}
	return nil
}

// Get returns the value stored under key for clientID.
func (s *Store) Get(ctx context.Context, clientID, key string) (string, bool, error) {
	if err := checkKey(key); err != nil {
		return "", false, err
	}
	var rec record
	err := s.c.FindOne(ctx, bson.M{"_id": clientID}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	v, ok := rec.Values[key]
	return v, ok, nil
}

// Set stores value under key, creating the client's record if needed.
func (s *Store) Set(ctx context.Context, clientID, key, value string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": clientID},
		bson.M{"$set": bson.M{"values." + key: value, "touched_at": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	return err
}

// Remove deletes key from the client's record. Missing keys are not an error.
func (s *Store) Remove(ctx context.Context, clientID, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": clientID},
		bson.M{"$unset": bson.M{"values." + key: ""}, "$set": bson.M{"touched_at": time.Now().UTC()}},
	)
	return err
}

// Touch marks the client's record as recently used.
func (s *Store) Touch(ctx context.Context, clientID string) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": clientID},
		bson.M{"$set": bson.M{"touched_at": time.Now().UTC()}},
	)
	return err
}

// RemoveIdle deletes records not touched within threshold and reports how
// many were removed.
func (s *Store) RemoveIdle(ctx context.Context, threshold time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-threshold)
	res, err := s.c.DeleteMany(ctx, bson.M{"touched_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
