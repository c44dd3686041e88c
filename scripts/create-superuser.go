// Command create-superuser seeds an administrative account. Intended for
// fresh deployments, where the first staff user cannot be created through
// the API itself.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/recipebox/recipebox/internal/auth"
	"github.com/recipebox/recipebox/internal/model"
	"github.com/recipebox/recipebox/internal/repository"
)

type output struct {
	UserID      int64  `json:"user_id"`
	Email       string `json:"email"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		email       = flag.String("email", "", "Email address for the superuser")
		password    = flag.String("password", os.Getenv("SUPERUSER_PASSWORD"), "Password (falls back to SUPERUSER_PASSWORD)")
		firstName   = flag.String("first-name", "", "Optional first name")
		lastName    = flag.String("last-name", "", "Optional last name")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	normalized := model.NormalizeEmail(*email)
	if normalized == "" || !strings.Contains(normalized, "@") {
		fmt.Fprintln(os.Stderr, "a valid --email is required")
		os.Exit(1)
	}

	if utf8.RuneCountInString(*password) < 5 {
		fmt.Fprintln(os.Stderr, "password must be at least 5 characters")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	hash, err := auth.HashPassword(*password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash password:", err)
		os.Exit(1)
	}

	user := &model.User{
		Email:        normalized,
		PasswordHash: hash,
		FirstName:    *firstName,
		LastName:     *lastName,
		IsActive:     true,
		IsStaff:      true,
		IsSuperuser:  true,
	}

	if err := repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			fmt.Fprintf(os.Stderr, "email %s is already registered\n", normalized)
		} else {
			fmt.Fprintln(os.Stderr, "create user:", err)
		}
		os.Exit(1)
	}

	out := output{
		UserID:      user.ID,
		Email:       user.Email,
		IsStaff:     user.IsStaff,
		IsSuperuser: user.IsSuperuser,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Printf("superuser %s created (id %d)\n", out.Email, out.UserID)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}
