// internal/domain/models/comment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is an immutable remark attached to a film.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FilmID    primitive.ObjectID `bson:"film_id" json:"film_id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	UserName  string             `bson:"user_name" json:"user_name"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
