package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/recipebox/recipebox/internal/auth"
	"github.com/recipebox/recipebox/internal/cache"
	"github.com/recipebox/recipebox/internal/model"
	"github.com/recipebox/recipebox/internal/repository"
)

const (
	// minAuthDuration is the minimum time spent before rejecting a token,
	// so failures reveal nothing about how far verification got.
	minAuthDuration = 200 * time.Millisecond
)

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger     *slog.Logger
	Repository *repository.Repository
	Cache      *cache.Cache
}

// Auth returns a middleware that authenticates API requests with a bearer
// token. The token is parsed, checked against the auth-context cache, and
// on a miss verified against the stored hashes sharing its prefix. The
// resulting auth context is injected into the request.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()

			deny := func(reason string) {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", reason),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				// Pad rejections to a uniform duration.
				if elapsed := time.Since(startTime); elapsed < minAuthDuration {
					time.Sleep(minAuthDuration - elapsed)
				}
				writeAuthError(w)
			}

			token := extractToken(r)
			if token == "" {
				deny("missing_token")
				return
			}

			parsed, err := auth.ParseToken(token)
			if err != nil {
				deny("invalid_format")
				return
			}

			// Check cache first
			cacheKey := auth.QuickHash(token)
			authCtx, _ := cfg.Cache.GetAuthContext(r.Context(), cacheKey)

			if authCtx != nil {
				cfg.Logger.Info("authentication successful",
					slog.String("token_id", authCtx.TokenID),
					slog.Int64("user_id", authCtx.UserID),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Bool("cache_hit", true),
					slog.String("request_id", GetRequestID(r.Context())),
				)

				ctx := auth.ContextWithAuth(r.Context(), authCtx)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			// Cache miss - collect candidates by prefix. Expired rows never
			// come back from this lookup.
			candidates, err := cfg.Repository.GetAuthTokensByPrefix(r.Context(), parsed.Prefix)
			if err != nil {
				cfg.Logger.Error("database error during auth",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				deny("database_error")
				return
			}

			// Verify against each candidate (handles prefix collisions)
			var matched *model.AuthToken
			for _, candidate := range candidates {
				ok, err := auth.VerifyPassword(token, candidate.TokenHash)
				if err != nil {
					continue
				}
				if ok {
					matched = candidate
					break
				}
			}

			if matched == nil {
				deny("invalid_token")
				return
			}

			user, err := cfg.Repository.GetUserByID(r.Context(), matched.UserID)
			if err != nil || !user.IsActive {
				deny("inactive_account")
				return
			}

			authCtx = &model.AuthContext{
				UserID:   user.ID,
				TokenID:  matched.ID,
				Email:    user.Email,
				IsStaff:  user.IsStaff,
				CacheKey: cacheKey,
			}

			// Cache the result
			_ = cfg.Cache.SetAuthContext(r.Context(), cacheKey, authCtx)

			// Touch last_used_at off the request path; the detached context
			// survives the response being written.
			touchCtx := context.WithoutCancel(r.Context())
			go func() {
				_ = cfg.Repository.UpdateAuthTokenLastUsed(touchCtx, matched.ID)
			}()

			cfg.Logger.Info("authentication successful",
				slog.String("token_id", authCtx.TokenID),
				slog.Int64("user_id", authCtx.UserID),
				slog.String("ip", r.RemoteAddr),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.Bool("cache_hit", false),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := auth.ContextWithAuth(r.Context(), authCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken extracts the bearer token from the request. Both
// "Authorization: Bearer <token>" and "Authorization: Token <token>" are
// accepted.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if strings.HasPrefix(authHeader, "Token ") {
		return strings.TrimPrefix(authHeader, "Token ")
	}
	return ""
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Invalid or missing token"}}`))
}
