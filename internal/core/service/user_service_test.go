package service

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/moviestore/rental-api/internal/core/domain"
	"github.com/moviestore/rental-api/internal/core/ports"
	"github.com/moviestore/rental-api/internal/infrastructure/db/memory"
)

func TestUserService_Create(t *testing.T) {
	svc := NewUserService(memory.NewStore().Repositories().Users, discardLogger)
	ctx := context.Background()

	u, err := svc.Create(ctx, ports.CreateUserInput{Email: " Carol@Example.COM ", Password: "pw", FirstName: "Carol"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Email != "carol@example.com" || !u.IsActive || u.IsAdmin() {
		t.Fatalf("unexpected user %+v", u)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("pw")) != nil {
		t.Fatal("password not hashed correctly")
	}
	if _, err := svc.Create(ctx, ports.CreateUserInput{Email: "carol@example.com", Password: "x"}); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	var verr *domain.ValidationError
	if _, err := svc.Create(ctx, ports.CreateUserInput{Email: "not-an-email", Password: "x"}); !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUserService_CreateRejectsInvalidEmail(t *testing.T) {
	svc := NewUserService(memory.NewStore().Repositories().Users, discardLogger)

	for _, email := range []string{"", "   ", "not-an-email", "Carol <carol@example.com>", "carol@", "@example.com"} {
		_, err := svc.Create(context.Background(), ports.CreateUserInput{Email: email, Password: "pw"})
		var verr *domain.ValidationError
		if !errors.As(err, &verr) || verr.Field != "email" {
			t.Errorf("email %q: expected email validation error, got %v", email, err)
		}
	}
}

func TestUserService_EnsureAdmin(t *testing.T) {
	svc := NewUserService(memory.NewStore().Repositories().Users, discardLogger)
	ctx := context.Background()

	regular, _ := svc.Create(ctx, ports.CreateUserInput{Email: "ops@example.com", Password: "pw"})
	promoted, err := svc.EnsureAdmin(ctx, "ops@example.com", "ignored")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if promoted.UUID != regular.UUID || !promoted.IsSuperuser {
		t.Fatalf("expected existing user to be promoted, got %+v", promoted)
	}

	fresh, err := svc.EnsureAdmin(ctx, "root@example.com", "pw")
	if err != nil || !fresh.IsAdmin() {
		t.Fatalf("expected new admin, got %+v, %v", fresh, err)
	}
}

func TestUserService_ListAndGet(t *testing.T) {
	svc := NewUserService(memory.NewStore().Repositories().Users, discardLogger)
	ctx := context.Background()
	for _, e := range []string{"zed@example.com", "amy@example.com", "bob@other.org"} {
		_, _ = svc.Create(ctx, ports.CreateUserInput{Email: e, Password: "pw"})
	}

	page, _ := svc.List(ctx, ports.UserQuery{})
	if page.Count != 3 || page.Items[0].Email != "amy@example.com" {
		t.Fatalf("expected email ordering, got %d / %s", page.Count, page.Items[0].Email)
	}
	page, _ = svc.List(ctx, ports.UserQuery{Search: "example", OrderBy: "-email"})
	if page.Count != 2 || page.Items[0].Email != "zed@example.com" {
		t.Fatalf("unexpected search result %d", page.Count)
	}

	if _, err := svc.Get(ctx, page.Items[0].UUID); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := svc.Get(ctx, "nope"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
