package inputval

import (
	"strings"

	"github.com/dalemusser/filmhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var genres = models.Genres

func registerRules(v *validator.Validate) {
	_ = v.RegisterValidation("email", func(fl validator.FieldLevel) bool {
		return IsValidEmail(fl.Field().String())
	})
	_ = v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
		return IsValidHTTPURL(fl.Field().String())
	})
	_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return IsValidObjectID(fl.Field().String())
	})
	_ = v.RegisterValidation("genre", func(fl validator.FieldLevel) bool {
		return IsValidGenre(fl.Field().String())
	})
}

// IsValidHTTPURL reports whether s is an absolute http or https URL.
func IsValidHTTPURL(s string) bool {
	return urlutil.IsValidAbsHTTPURL(strings.TrimSpace(s))
}

// IsValidObjectID reports whether s is a 24-character hex ObjectID.
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	return err == nil
}

// IsValidGenre reports whether s names one of the catalog genres,
// ignoring case and surrounding space.
func IsValidGenre(s string) bool {
	return CanonicalGenre(s) != ""
}

// CanonicalGenre returns the catalog spelling of s, or "" if s is not a genre.
func CanonicalGenre(s string) string {
	s = strings.TrimSpace(s)
	for _, g := range genres {
		if strings.EqualFold(g, s) {
			return g
		}
	}
	return ""
}
