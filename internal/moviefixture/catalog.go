package moviefixture

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/samber/lo"
)

//go:embed movies.json
var moviesJSON []byte

// Movie is one catalog entry. Overview is Markdown.
type Movie struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	ReleaseDate string   `json:"release_date"`
	Rating      float64  `json:"rating"`
	Genres      []string `json:"genres"`
	Overview    string   `json:"overview"`
}

// Summary is a movie as it appears in a result list.
type Summary struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	Rating      float64 `json:"rating"`
}

// ResultPage is one page of a listing.
type ResultPage struct {
	Query        string    `json:"query"`
	Page         int       `json:"page"`
	TotalPages   int       `json:"total_pages"`
	TotalResults int       `json:"total_results"`
	Results      []Summary `json:"results"`
}

// Catalog is an in-memory, read-only movie list in popularity order.
type Catalog struct {
	movies []Movie
	byID   map[int]Movie
}

// NewCatalog builds a catalog from movies, keeping their order.
func NewCatalog(movies []Movie) *Catalog {
	return &Catalog{
		movies: movies,
		byID:   lo.KeyBy(movies, func(m Movie) int { return m.ID }),
	}
}

// DefaultCatalog loads the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	var movies []Movie
	if err := json.Unmarshal(moviesJSON, &movies); err != nil {
		return nil, fmt.Errorf("decode embedded catalog: %w", err)
	}
	return NewCatalog(movies), nil
}

// Len returns the number of movies.
func (c *Catalog) Len() int { return len(c.movies) }

// Get returns the movie with id.
func (c *Catalog) Get(id int) (Movie, bool) {
	m, ok := c.byID[id]
	return m, ok
}

// Search returns page (1-based) of the movies whose title contains query,
// ignoring case. An empty query lists every movie. A page past the end has
// no results but still reports the totals.
func (c *Catalog) Search(query string, page, pageSize int) ResultPage {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	q := strings.ToLower(strings.TrimSpace(query))
	matches := lo.Filter(c.movies, func(m Movie, _ int) bool {
		return q == "" || strings.Contains(strings.ToLower(m.Title), q)
	})

	out := ResultPage{
		Query:        query,
		Page:         page,
		TotalResults: len(matches),
		TotalPages:   int(math.Ceil(float64(len(matches)) / float64(pageSize))),
		Results:      []Summary{},
	}
	start := (page - 1) * pageSize
	if start >= len(matches) {
		return out
	}
	end := min(start+pageSize, len(matches))
	out.Results = lo.Map(matches[start:end], func(m Movie, _ int) Summary {
		return Summary{ID: m.ID, Title: m.Title, ReleaseDate: m.ReleaseDate, Rating: m.Rating}
	})
	return out
}
