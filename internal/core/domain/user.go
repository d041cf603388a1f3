package domain

import (
	"strings"
	"time"
)

// Role is the coarse privilege level the permission table is keyed on.
type Role string

const (
	RoleRegular Role = "regular"
	RoleAdmin   Role = "admin"
)

// User is a registered account. Email is the login identifier.
type User struct {
	ID           string
	UUID         string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	IsStaff      bool
	IsSuperuser  bool
	IsActive     bool
	DateJoined   time.Time
	LastLogin    *time.Time
}

// IsAdmin reports whether the account carries staff or superuser privileges.
func (u *User) IsAdmin() bool {
	return u.IsStaff || u.IsSuperuser
}

func (u *User) Role() Role {
	if u.IsAdmin() {
		return RoleAdmin
	}
	return RoleRegular
}

// NormalizeEmail is the canonical stored form of a login email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Actor is the authenticated principal attached to a request.
// A nil *Actor is an anonymous caller.
type Actor struct {
	UserID string
	UUID   string
	Email  string
	Role   Role
}

func NewActor(u *User) *Actor {
	return &Actor{UserID: u.ID, UUID: u.UUID, Email: u.Email, Role: u.Role()}
}

func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// Owns reports whether the actor is the user identified by userUUID.
func (a *Actor) Owns(userUUID string) bool {
	return a != nil && a.UUID != "" && a.UUID == userUUID
}
