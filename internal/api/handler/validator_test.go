package handler

import (
	"errors"
	"strings"
	"testing"

	"github.com/moviestore/rental-api/internal/core/domain"
)

func TestValidator_MovieRequest(t *testing.T) {
	v := NewValidator()
	year := 40000

	err := v.Validate(&createMovieRequest{
		Title:    strings.Repeat("t", 256),
		Year:     &year,
		Director: "Nolan",
	})

	var verrs domain.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation errors, got %v", err)
	}

	got := map[string]string{}
	for _, fe := range verrs {
		got[fe.Field] = fe.Message
	}
	want := map[string]string{
		"title":   "Ensure this field has no more than 255 characters.",
		"year":    "Ensure this value is less than or equal to 32767.",
		"summary": "This field is required.",
	}
	for field, msg := range want {
		if got[field] != msg {
			t.Errorf("%s: expected %q, got %q", field, msg, got[field])
		}
	}
	if len(got) != len(want) {
		t.Errorf("unexpected fields: %v", got)
	}
}

func TestValidator_YearZeroIsAccepted(t *testing.T) {
	year := 0
	err := NewValidator().Validate(&createMovieRequest{Title: "t", Year: &year, Summary: "s", Director: "d"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidator_PartialUpdateSkipsAbsentFields(t *testing.T) {
	if err := NewValidator().Validate(&updateMovieRequest{}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}
