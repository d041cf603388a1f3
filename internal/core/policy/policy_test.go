package policy

import (
	"errors"
	"testing"

	"github.com/moviestore/rental-api/internal/core/domain"
)

var (
	alice = &domain.Actor{UUID: "alice", Role: domain.RoleRegular}
	bob   = &domain.Actor{UUID: "bob", Role: domain.RoleRegular}
	admin = &domain.Actor{UUID: "admin", Role: domain.RoleAdmin}
)

func TestCheckCollection(t *testing.T) {
	cases := []struct {
		res   Resource
		act   Action
		actor *domain.Actor
		want  error
	}{
		{Genre, List, nil, domain.ErrUnauthenticated},
		{Genre, List, alice, nil},
		{Genre, Retrieve, alice, nil},
		{Genre, Create, alice, domain.ErrPermissionDenied},
		{Genre, PartialUpdate, alice, domain.ErrPermissionDenied},
		{Genre, Destroy, alice, domain.ErrPermissionDenied},
		{Genre, Create, admin, nil},
		{Movie, List, alice, nil},
		{Movie, Library, alice, nil},
		{Movie, Library, nil, domain.ErrUnauthenticated},
		{Movie, Create, alice, domain.ErrPermissionDenied},
		{Movie, Destroy, admin, nil},
		{Rental, List, alice, nil},
		{Rental, Create, alice, nil},
		{Rental, PartialUpdate, alice, nil},
		{Rental, Destroy, alice, domain.ErrPermissionDenied},
		{Rental, Destroy, admin, nil},
		{Rental, Create, nil, domain.ErrUnauthenticated},
		{User, List, alice, domain.ErrPermissionDenied},
		{User, Retrieve, admin, nil},
		{User, List, nil, domain.ErrUnauthenticated},
	}

	for _, tc := range cases {
		got := CheckCollection(tc.res, tc.act, tc.actor)
		if !errors.Is(got, tc.want) {
			t.Errorf("CheckCollection(%s, %s, %v) = %v, want %v", tc.res, tc.act, tc.actor, got, tc.want)
		}
	}
}

func TestCheckObject_Rental(t *testing.T) {
	cases := []struct {
		act   Action
		actor *domain.Actor
		owner string
		want  error
	}{
		{Retrieve, alice, "alice", nil},
		{Retrieve, bob, "alice", domain.ErrPermissionDenied},
		{Retrieve, admin, "alice", nil},
		{PartialUpdate, alice, "alice", nil},
		{PartialUpdate, bob, "alice", domain.ErrPermissionDenied},
		{PartialUpdate, admin, "alice", nil},
		{Destroy, alice, "alice", domain.ErrPermissionDenied},
		{Destroy, admin, "alice", nil},
		{Create, bob, "alice", nil},
		{List, bob, "alice", domain.ErrPermissionDenied},
		{Retrieve, nil, "alice", domain.ErrUnauthenticated},
	}

	for _, tc := range cases {
		got := CheckObject(Rental, tc.act, tc.actor, tc.owner)
		if got != tc.want {
			t.Errorf("CheckObject(rental, %s, %v, %s) = %v, want %v", tc.act, tc.actor, tc.owner, got, tc.want)
		}
	}
}

func TestCheckObject_FallsBackForUnownedResources(t *testing.T) {
	if err := CheckObject(Movie, Destroy, alice, ""); err != domain.ErrPermissionDenied {
		t.Fatalf("expected movie destroy to be admin-only, got %v", err)
	}
	if err := CheckObject(Genre, Retrieve, bob, ""); err != nil {
		t.Fatalf("expected genre retrieve allowed, got %v", err)
	}
}
