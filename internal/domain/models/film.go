// internal/domain/models/film.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rating and year bounds accepted for a film.
const (
	RatingMin = 0.0
	RatingMax = 5.0
	YearMin   = 1888
)

// YearMax is the latest release year accepted for a film at time now.
func YearMax(now time.Time) int {
	return now.Year() + 10
}

// Genres is the fixed genre list offered by the catalog filters and forms.
var Genres = []string{"Action", "Drama", "Comedy", "Horror", "Sci-Fi", "Romance"}

// Film is a catalog entry. VideoURL is always stored in embed form.
type Film struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Genre       string             `bson:"genre,omitempty" json:"genre,omitempty"`
	Year        int                `bson:"year" json:"year"`
	Rating      float64            `bson:"rating" json:"rating"`
	Poster      string             `bson:"poster" json:"poster"`
	VideoURL    string             `bson:"video_url" json:"video_url"`
	Published   bool               `bson:"published" json:"published"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
