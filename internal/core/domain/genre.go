package domain

import (
	"strings"
	"unicode/utf8"
)

const MaxNameLength = 255

// Genre is a unique, named movie category.
type Genre struct {
	ID   string
	UUID string
	Name string
}

// ValidateGenreName rejects blank names and names longer than MaxNameLength.
func ValidateGenreName(name string) error {
	if strings.TrimSpace(name) == "" {
		return NewValidationError("name", "This field may not be blank.")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return NewValidationError("name", "Ensure this field has no more than 255 characters.")
	}
	return nil
}
