package metricsstore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Counts is the set of totals shown on the admin dashboard.
type Counts struct {
	Films     int64
	Published int64
	Users     int64
	Admins    int64
	Comments  int64
}

// Drafts is the number of films not yet published.
func (c Counts) Drafts() int64 {
	return c.Films - c.Published
}

// FetchDashboardCounts returns the high-level counts used by the admin
// dashboard. Intentionally tolerant: on error it returns 0 for that counter.
func FetchDashboardCounts(ctx context.Context, db *mongo.Database) Counts {
	var out Counts

	count := func(coll string, filter bson.M, dst *int64) {
		if n, err := db.Collection(coll).CountDocuments(ctx, filter); err == nil {
			*dst = n
		}
	}

	count("films", bson.M{}, &out.Films)
	count("films", bson.M{"published": true}, &out.Published)
	count("users", bson.M{}, &out.Users)
	count("users", bson.M{"role": "admin"}, &out.Admins)
	count("film_comments", bson.M{}, &out.Comments)

	return out
}
