// Command create-user adds an account to the configured datastore.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/moviestore/rental-api/internal/app"
	"github.com/moviestore/rental-api/internal/core/ports"
	"github.com/moviestore/rental-api/internal/core/service"
	"github.com/moviestore/rental-api/internal/pkg/config"
	"github.com/moviestore/rental-api/pkg/logger"
)

func main() {
	var (
		email     string
		password  string
		firstName string
		lastName  string
		admin     bool
	)

	flag.StringVar(&email, "email", "", "Email address used to log in")
	flag.StringVar(&password, "password", "", "Password for the account")
	flag.StringVar(&firstName, "first-name", "", "First name")
	flag.StringVar(&lastName, "last-name", "", "Last name")
	flag.BoolVar(&admin, "admin", false, "Grant staff and superuser flags")
	flag.Parse()

	if strings.TrimSpace(email) == "" {
		fatalf("--email is required")
	}
	if password == "" {
		fatalf("--password is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		fatalf("%v", err)
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true})

	storage, err := app.OpenStorage(ctx, cfg, log)
	if err != nil {
		fatalf("open datastore: %v", err)
	}
	defer storage.Close(context.Background())

	users := service.NewUserService(storage.Repos.Users, log)
	user, err := users.Create(ctx, ports.CreateUserInput{
		Email:     email,
		Password:  password,
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		IsStaff:   admin,
		IsSuper:   admin,
	})
	if err != nil {
		fatalf("user creation failed: %v", err)
	}
	fmt.Printf("User %s created with uuid %s (%s)\n", user.Email, user.UUID, user.Role())
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
