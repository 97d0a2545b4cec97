// internal/app/system/search/search.go
package search

import (
	"slices"
	"strings"
	"sync"

	"github.com/dalemusser/filmhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sort orders accepted by Films. Anything else sorts by rating.
const (
	SortRating = "rating"
	SortYear   = "year"
	SortTitle  = "title"
)

// Query is a catalog filter as typed into the home page.
type Query struct {
	Text  string // case- and diacritic-insensitive title substring
	Genre string // exact genre, "" for any
	Sort  string
}

// Normalize trims the query and maps unknown sort keys to SortRating.
func (q Query) Normalize() Query {
	q.Text = strings.TrimSpace(q.Text)
	q.Genre = strings.TrimSpace(q.Genre)
	switch q.Sort {
	case SortYear, SortTitle:
	default:
		q.Sort = SortRating
	}
	return q
}

var (
	collatorMu sync.Mutex
	collator   = collate.New(language.Indonesian, collate.IgnoreCase)
)

// Films returns the films matching q in q's order. The input is not
// modified. Ties keep their input order.
func Films(films []models.Film, q Query) []models.Film {
	q = q.Normalize()
	needle := text.Fold(q.Text)

	out := make([]models.Film, 0, len(films))
	for _, f := range films {
		if needle != "" && !strings.Contains(text.Fold(f.Title), needle) {
			continue
		}
		if q.Genre != "" && !equalsAnyFold(f.Genre, q.Genre) {
			continue
		}
		out = append(out, f)
	}

	switch q.Sort {
	case SortYear:
		slices.SortStableFunc(out, func(a, b models.Film) int { return b.Year - a.Year })
	case SortTitle:
		collatorMu.Lock()
		slices.SortStableFunc(out, func(a, b models.Film) int {
			return collator.CompareString(a.Title, b.Title)
		})
		collatorMu.Unlock()
	default:
		slices.SortStableFunc(out, func(a, b models.Film) int {
			switch {
			case a.Rating > b.Rating:
				return -1
			case a.Rating < b.Rating:
				return 1
			}
			return 0
		})
	}
	return out
}

func equalsAnyFold(s string, vals ...string) bool {
	for _, v := range vals {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
