package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/recipebox/recipebox/internal/model"
)

// Common errors for auth token repository operations.
var (
	ErrTokenNotFound = errors.New("auth token not found")
)

// CreateAuthToken inserts a new bearer token row.
func (r *Repository) CreateAuthToken(ctx context.Context, token *model.AuthToken) error {
	query := `
		INSERT INTO auth_tokens (id, user_id, token_hash, token_prefix, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		token.ID,
		token.UserID,
		token.TokenHash,
		token.TokenPrefix,
		token.ExpiresAt,
		token.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create auth token: %w", err)
	}

	return nil
}

// GetAuthTokensByPrefix retrieves all live tokens matching a prefix.
// Used during authentication to find candidate tokens for verification;
// expired rows never qualify.
func (r *Repository) GetAuthTokensByPrefix(ctx context.Context, prefix string) ([]*model.AuthToken, error) {
	query := `
		SELECT id, user_id, token_hash, token_prefix, expires_at, last_used_at, created_at
		FROM auth_tokens
		WHERE token_prefix = $1 AND (expires_at IS NULL OR expires_at > NOW())
	`

	rows, err := r.pool.Query(ctx, query, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to get auth tokens by prefix: %w", err)
	}
	defer rows.Close()

	var tokens []*model.AuthToken
	for rows.Next() {
		token, err := scanAuthTokenFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan auth token: %w", err)
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating auth tokens: %w", err)
	}

	return tokens, nil
}

// DeleteAuthToken removes a token row, revoking it.
func (r *Repository) DeleteAuthToken(ctx context.Context, id string) error {
	query := `DELETE FROM auth_tokens WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete auth token: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTokenNotFound
	}

	return nil
}

// UpdateAuthTokenLastUsed updates the last_used_at timestamp.
// Should be called asynchronously after successful authentication.
func (r *Repository) UpdateAuthTokenLastUsed(ctx context.Context, id string) error {
	query := `
		UPDATE auth_tokens
		SET last_used_at = $2
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update auth token last used: %w", err)
	}

	return nil
}

// scanAuthTokenFromRows scans a row from pgx.Rows into an AuthToken model.
func scanAuthTokenFromRows(rows pgx.Rows) (*model.AuthToken, error) {
	var token model.AuthToken
	err := rows.Scan(
		&token.ID,
		&token.UserID,
		&token.TokenHash,
		&token.TokenPrefix,
		&token.ExpiresAt,
		&token.LastUsedAt,
		&token.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &token, nil
}
