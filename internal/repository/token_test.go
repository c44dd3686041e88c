package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/recipebox/recipebox/internal/testutil"
)

func TestRepository_CreateAndLookupAuthToken(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	user := createTestUser(t, ctx, repo, "token")
	token := testutil.NewTestAuthToken(t, user.ID)

	if err := repo.CreateAuthToken(ctx, token); err != nil {
		t.Fatalf("create auth token: %v", err)
	}
	if token.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be set")
	}

	candidates, err := repo.GetAuthTokensByPrefix(ctx, token.TokenPrefix)
	if err != nil {
		t.Fatalf("get tokens by prefix: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].ID != token.ID {
		t.Fatalf("id mismatch: %q vs %q", candidates[0].ID, token.ID)
	}
	if candidates[0].UserID != user.ID {
		t.Fatalf("user id mismatch: %d vs %d", candidates[0].UserID, user.ID)
	}
	if candidates[0].TokenHash != token.TokenHash {
		t.Fatalf("token hash mismatch")
	}
	if candidates[0].LastUsedAt != nil {
		t.Fatalf("expected last_used_at to start unset")
	}
}

func TestRepository_GetAuthTokensByPrefix_SharedPrefix(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	user := createTestUser(t, ctx, repo, "shared")

	first := testutil.NewTestAuthToken(t, user.ID)
	second := testutil.NewTestAuthToken(t, user.ID)
	if err := repo.CreateAuthToken(ctx, first); err != nil {
		t.Fatalf("create first token: %v", err)
	}
	if err := repo.CreateAuthToken(ctx, second); err != nil {
		t.Fatalf("create second token: %v", err)
	}

	candidates, err := repo.GetAuthTokensByPrefix(ctx, first.TokenPrefix)
	if err != nil {
		t.Fatalf("get tokens by prefix: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
}

func TestRepository_GetAuthTokensByPrefix_ExcludesExpired(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	user := createTestUser(t, ctx, repo, "expiry")

	expired := testutil.NewTestAuthToken(t, user.ID)
	past := time.Now().UTC().Add(-time.Hour)
	expired.ExpiresAt = &past

	live := testutil.NewTestAuthToken(t, user.ID)
	future := time.Now().UTC().Add(time.Hour)
	live.ExpiresAt = &future

	forever := testutil.NewTestAuthToken(t, user.ID)

	if err := repo.CreateAuthToken(ctx, expired); err != nil {
		t.Fatalf("create expired token: %v", err)
	}
	if err := repo.CreateAuthToken(ctx, live); err != nil {
		t.Fatalf("create live token: %v", err)
	}
	if err := repo.CreateAuthToken(ctx, forever); err != nil {
		t.Fatalf("create non-expiring token: %v", err)
	}

	candidates, err := repo.GetAuthTokensByPrefix(ctx, expired.TokenPrefix)
	if err != nil {
		t.Fatalf("get tokens by prefix: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected expired token to be excluded, got %d candidates", len(candidates))
	}
	for _, c := range candidates {
		if c.ID == expired.ID {
			t.Fatalf("expired token %q returned as candidate", c.ID)
		}
	}
}

func TestRepository_DeleteAuthToken(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	user := createTestUser(t, ctx, repo, "revoke")
	token := testutil.NewTestAuthToken(t, user.ID)
	if err := repo.CreateAuthToken(ctx, token); err != nil {
		t.Fatalf("create auth token: %v", err)
	}

	if err := repo.DeleteAuthToken(ctx, token.ID); err != nil {
		t.Fatalf("delete auth token: %v", err)
	}

	candidates, err := repo.GetAuthTokensByPrefix(ctx, token.TokenPrefix)
	if err != nil {
		t.Fatalf("get tokens by prefix: %v", err)
	}
	if len(candidates) != 0 {
		t.Fatalf("expected no candidates after delete, got %d", len(candidates))
	}

	if err := repo.DeleteAuthToken(ctx, token.ID); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound, got %v", err)
	}
}

func TestRepository_UpdateAuthTokenLastUsed(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	user := createTestUser(t, ctx, repo, "lastused")
	token := testutil.NewTestAuthToken(t, user.ID)
	if err := repo.CreateAuthToken(ctx, token); err != nil {
		t.Fatalf("create auth token: %v", err)
	}

	if err := repo.UpdateAuthTokenLastUsed(ctx, token.ID); err != nil {
		t.Fatalf("update last used: %v", err)
	}

	candidates, err := repo.GetAuthTokensByPrefix(ctx, token.TokenPrefix)
	if err != nil {
		t.Fatalf("get tokens by prefix: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].LastUsedAt == nil {
		t.Fatalf("expected last_used_at to be set")
	}
	if time.Since(*candidates[0].LastUsedAt) > time.Minute {
		t.Fatalf("last_used_at not recent: %v", candidates[0].LastUsedAt)
	}
}
