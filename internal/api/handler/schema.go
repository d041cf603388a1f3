package handler

import "time"

// errorResponse documents the envelope rendered by the API error handler.
type errorResponse struct {
	Code     string `json:"code"     example:"not_found"`
	Detail   string `json:"detail"   example:"Not found."`
	Messages []any  `json:"messages,omitempty"`
}

// --- Auth ---

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type tokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// --- Genres ---

type createGenreRequest struct {
	Name string `json:"name" validate:"required"`
}

type updateGenreRequest struct {
	Name *string `json:"name"`
}

type genreResponse struct {
	URL  string `json:"url"`
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// --- Movies ---

type createMovieRequest struct {
	Title    string   `json:"title"    validate:"required,max=255"`
	Year     *int     `json:"year"     validate:"required,gte=0,lte=32767"`
	Summary  string   `json:"summary"  validate:"required"`
	Director string   `json:"director" validate:"required,max=255"`
	Genres   []string `json:"genres"`
}

type updateMovieRequest struct {
	Title    *string   `json:"title"    validate:"omitnil,max=255"`
	Year     *int      `json:"year"     validate:"omitnil,gte=0,lte=32767"`
	Summary  *string   `json:"summary"`
	Director *string   `json:"director" validate:"omitnil,max=255"`
	Genres   *[]string `json:"genres"`
}

type movieResponse struct {
	URL      string   `json:"url"`
	UUID     string   `json:"uuid"`
	Title    string   `json:"title"`
	Year     int      `json:"year"`
	Summary  string   `json:"summary"`
	Director string   `json:"director"`
	Genres   []string `json:"genres"`
}

// --- Rentals ---

type createRentalRequest struct {
	Movie string `json:"movie" validate:"required"`
}

type returnRentalRequest struct {
	Returned *bool `json:"returned"`
}

type basicUserResponse struct {
	UUID      string `json:"uuid"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// rentalResponse carries fee only while the rental is active and payment
// only once it is returned.
type rentalResponse struct {
	URL        string             `json:"url"`
	UUID       string             `json:"uuid"`
	User       *basicUserResponse `json:"user"`
	Movie      *movieResponse     `json:"movie"`
	RentalDate time.Time          `json:"rental_date"`
	ReturnDate *time.Time         `json:"return_date"`
	Returned   bool               `json:"returned"`
	Payment    *float64           `json:"payment"`
	Fee        *float64           `json:"fee,omitempty"`
}

// --- Users ---

type userResponse struct {
	URL         string     `json:"url"`
	UUID        string     `json:"uuid"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Role        string     `json:"role"`
	IsStaff     bool       `json:"is_staff"`
	IsSuperuser bool       `json:"is_superuser"`
	IsActive    bool       `json:"is_active"`
	DateJoined  time.Time  `json:"date_joined"`
	LastLogin   *time.Time `json:"last_login"`
}
