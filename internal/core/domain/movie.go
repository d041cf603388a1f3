package domain

import (
	"strings"
	"unicode/utf8"
)

// Movie is a catalog entry. Genres is a set; order carries no meaning.
type Movie struct {
	ID       string
	UUID     string
	Title    string
	Year     int
	Summary  string
	Director string
	Genres   []Genre
}

func (m *Movie) GenreNames() []string {
	names := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		names = append(names, g.Name)
	}
	return names
}

// HasGenre reports whether the movie is tagged with the genre identified by uuid.
func (m *Movie) HasGenre(uuid string) bool {
	for _, g := range m.Genres {
		if g.UUID == uuid {
			return true
		}
	}
	return false
}

// Validate checks field constraints shared by create and update.
func (m *Movie) Validate() error {
	switch {
	case strings.TrimSpace(m.Title) == "":
		return NewValidationError("title", "This field may not be blank.")
	case utf8.RuneCountInString(m.Title) > MaxNameLength:
		return NewValidationError("title", "Ensure this field has no more than 255 characters.")
	case m.Year < 0 || m.Year > 32767:
		return NewValidationError("year", "Ensure this value is between 0 and 32767.")
	case strings.TrimSpace(m.Summary) == "":
		return NewValidationError("summary", "This field may not be blank.")
	case strings.TrimSpace(m.Director) == "":
		return NewValidationError("director", "This field may not be blank.")
	case utf8.RuneCountInString(m.Director) > MaxNameLength:
		return NewValidationError("director", "Ensure this field has no more than 255 characters.")
	}
	return nil
}

// DedupeNames drops repeated names, keeping first occurrence order.
func DedupeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
