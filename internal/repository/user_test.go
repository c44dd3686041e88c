package repository

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/recipebox/recipebox/internal/model"
	"github.com/recipebox/recipebox/internal/testutil"
)

func TestRepository_CreateAndGetUser(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	user := testutil.NewTestUser(t, testutil.UniqueEmail(t, "create"))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.ID == 0 {
		t.Fatalf("expected generated user id")
	}
	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps to be set")
	}

	byID, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get user by id: %v", err)
	}
	if byID.Email != user.Email {
		t.Fatalf("email mismatch: %q vs %q", byID.Email, user.Email)
	}
	if byID.FirstName != user.FirstName || byID.LastName != user.LastName {
		t.Fatalf("name mismatch: %q %q vs %q %q", byID.FirstName, byID.LastName, user.FirstName, user.LastName)
	}
	if !byID.IsActive {
		t.Fatalf("expected new user to be active")
	}
	if byID.IsStaff || byID.IsSuperuser {
		t.Fatalf("expected new user to have no staff flags")
	}

	byEmail, err := repo.GetUserByEmail(ctx, user.Email)
	if err != nil {
		t.Fatalf("get user by email: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Fatalf("id mismatch: %d vs %d", byEmail.ID, user.ID)
	}
}

func TestRepository_GetUserByEmail_CaseInsensitive(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	user := testutil.NewTestUser(t, testutil.UniqueEmail(t, "case"))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	found, err := repo.GetUserByEmail(ctx, strings.ToUpper(user.Email))
	if err != nil {
		t.Fatalf("get user by upper-cased email: %v", err)
	}
	if found.ID != user.ID {
		t.Fatalf("id mismatch: %d vs %d", found.ID, user.ID)
	}
}

func TestRepository_CreateUser_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	user := testutil.NewTestUser(t, testutil.UniqueEmail(t, "dup"))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	exact := testutil.NewTestUser(t, user.Email)
	if err := repo.CreateUser(ctx, exact); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}

	cased := testutil.NewTestUser(t, strings.ToUpper(user.Email))
	if err := repo.CreateUser(ctx, cased); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists for case variant, got %v", err)
	}
}

func TestRepository_GetUser_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	if _, err := repo.GetUserByID(ctx, 999999); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound by id, got %v", err)
	}
	if _, err := repo.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound by email, got %v", err)
	}
}

func TestRepository_UpdateUser(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	user := createTestUser(t, ctx, repo, "update")

	user.FirstName = "Updated"
	user.LastName = "Name"
	user.PasswordHash = "new-hash"
	if err := repo.UpdateUser(ctx, user); err != nil {
		t.Fatalf("update user: %v", err)
	}

	updated, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get updated user: %v", err)
	}
	if updated.FirstName != "Updated" || updated.LastName != "Name" {
		t.Fatalf("name not persisted: %q %q", updated.FirstName, updated.LastName)
	}
	if updated.PasswordHash != "new-hash" {
		t.Fatalf("password hash not persisted")
	}
	if updated.UpdatedAt.Before(updated.CreatedAt) {
		t.Fatalf("updated_at %v before created_at %v", updated.UpdatedAt, updated.CreatedAt)
	}
}

func TestRepository_UpdateUser_Deactivate(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	user := createTestUser(t, ctx, repo, "deactivate")

	user.IsActive = false
	if err := repo.UpdateUser(ctx, user); err != nil {
		t.Fatalf("deactivate user: %v", err)
	}

	updated, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get updated user: %v", err)
	}
	if updated.IsActive {
		t.Fatalf("expected user to be inactive")
	}
}

func TestRepository_UpdateUser_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	ghost := testutil.NewTestUser(t, testutil.UniqueEmail(t, "ghost"))
	ghost.ID = 999999
	if err := repo.UpdateUser(ctx, ghost); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRepository_UpdateUserPasswordHash(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	user := createTestUser(t, ctx, repo, "rehash")

	if err := repo.UpdateUserPasswordHash(ctx, user.ID, "upgraded-hash"); err != nil {
		t.Fatalf("update password hash: %v", err)
	}

	updated, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get updated user: %v", err)
	}
	if updated.PasswordHash != "upgraded-hash" {
		t.Fatalf("password hash not persisted: %q", updated.PasswordHash)
	}
	if updated.FirstName != user.FirstName || updated.Email != user.Email {
		t.Fatalf("other fields changed: %q %q", updated.FirstName, updated.Email)
	}

	if err := repo.UpdateUserPasswordHash(ctx, 999999, "x"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func newTestRepository(t *testing.T, ctx context.Context) *Repository {
	t.Helper()

	dbURL := testutil.RequireEnv(t, "DATABASE_URL")
	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return repo
}

func createTestUser(t *testing.T, ctx context.Context, repo *Repository, prefix string) *model.User {
	t.Helper()

	user := testutil.NewTestUser(t, testutil.UniqueEmail(t, prefix))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("create %s user: %v", prefix, err)
	}
	return user
}
