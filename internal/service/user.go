// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"github.com/recipebox/recipebox/internal/auth"
	"github.com/recipebox/recipebox/internal/cache"
	"github.com/recipebox/recipebox/internal/metrics"
	"github.com/recipebox/recipebox/internal/model"
	"github.com/recipebox/recipebox/internal/repository"
)

// Account and token errors.
var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password too short")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrTokenNotFound      = errors.New("auth token not found")
)

// Email validation: one @, no whitespace, dotted domain. Deliverability is
// not checked.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	minPasswordLength = 5
	maxEmailLength    = 254
)

// UserService handles registration, profiles, and bearer tokens.
type UserService struct {
	repo     *repository.Repository
	cache    *cache.Cache
	tokenTTL time.Duration
	metrics  metrics.Recorder
}

// NewUserService creates a new UserService. A zero tokenTTL issues tokens
// that never expire.
func NewUserService(repo *repository.Repository, cache *cache.Cache, tokenTTL time.Duration, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		repo:     repo,
		cache:    cache,
		tokenTTL: tokenTTL,
		metrics:  recorder,
	}
}

// RegisterInput defines input for creating an account.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register creates a new active account with a hashed password.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	email := model.NormalizeEmail(input.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		IsActive:     true,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncUserRegistered()

	return user, nil
}

// IssueToken verifies credentials and mints a new bearer token. The
// plaintext is returned exactly once; only its hash is stored. Every
// failure mode (unknown email, wrong password, inactive account) reports
// the same error so responses do not leak which part was wrong.
func (s *UserService) IssueToken(ctx context.Context, email, password string) (string, *model.AuthToken, error) {
	email = model.NormalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to get user: %w", err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return "", nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok || !user.IsActive {
		return "", nil, ErrInvalidCredentials
	}

	// A hash written under an older cost profile is upgraded here, the only
	// point where the plaintext is at hand. Best effort; the old hash keeps
	// verifying if the write fails.
	if auth.NeedsRehash(user.PasswordHash) {
		if rehash, err := auth.HashPassword(password); err == nil {
			_ = s.repo.UpdateUserPasswordHash(ctx, user.ID, rehash)
		}
	}

	generated, err := auth.GenerateToken()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	token := &model.AuthToken{
		ID:          ulid.Make().String(),
		UserID:      user.ID,
		TokenHash:   generated.Hash,
		TokenPrefix: generated.Prefix,
		CreatedAt:   time.Now().UTC(),
	}
	if s.tokenTTL > 0 {
		expiresAt := time.Now().UTC().Add(s.tokenTTL)
		token.ExpiresAt = &expiresAt
	}

	if err := s.repo.CreateAuthToken(ctx, token); err != nil {
		return "", nil, fmt.Errorf("failed to create auth token: %w", err)
	}

	s.metrics.IncTokenIssued()

	return generated.Plaintext, token, nil
}

// GetProfile retrieves the account behind an authenticated request.
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

// UpdateProfileInput defines input for a partial profile update. Nil fields
// are left untouched.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Password  *string
}

// UpdateProfile applies a partial update to the caller's own account.
// A new password is validated and re-hashed before storage.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if input.Password != nil {
		if err := validatePassword(*input.Password); err != nil {
			return nil, err
		}
		hash, err := auth.HashPassword(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

// RevokeToken deletes the bearer token behind the authenticated request and
// evicts its cached auth context, so revocation takes effect before the
// cache entry would expire.
func (s *UserService) RevokeToken(ctx context.Context, authCtx *model.AuthContext) error {
	if err := s.repo.DeleteAuthToken(ctx, authCtx.TokenID); err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return ErrTokenNotFound
		}
		return err
	}

	if s.cache != nil && authCtx.CacheKey != "" {
		// Best effort; the cached entry still dies on its own TTL.
		_ = s.cache.DeleteAuthContext(ctx, authCtx.CacheKey)
	}

	s.metrics.IncTokenRevoked()

	return nil
}

func validateEmail(email string) error {
	if email == "" || len(email) > maxEmailLength || !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return ErrWeakPassword
	}
	return nil
}
