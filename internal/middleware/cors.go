// Package middleware provides HTTP middleware for the Recipebox API.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig holds CORS configuration options.
type CORSConfig struct {
	// AllowedOrigins lists origins allowed to make cross-origin requests.
	// An entry like "*.example.com" matches any subdomain of example.com
	// but never the bare domain; a single "*" allows every origin. Empty
	// denies all cross-origin requests.
	AllowedOrigins []string

	// AllowedMethods specifies the allowed HTTP methods.
	AllowedMethods []string

	// AllowedHeaders specifies the allowed request headers.
	AllowedHeaders []string

	// ExposedHeaders lists response headers the browser may read.
	ExposedHeaders []string

	// AllowCredentials permits cookies and Authorization headers on
	// cross-origin requests. Must not be combined with a "*" origin.
	AllowCredentials bool

	// MaxAge is the Access-Control-Max-Age value in seconds.
	MaxAge int
}

// DefaultCORSConfig returns defaults for the JSON API: every method the
// routes use, the headers clients actually send, and no origins until the
// deployment sets CORS_ALLOWED_ORIGINS.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Content-Type",
			"Authorization",
			"X-Request-ID",
			"Accept",
			"Accept-Language",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
		},
		AllowCredentials: false,
		MaxAge:           86400, // 24 hours
	}
}

// cors is the precomputed form of a CORSConfig: joined header values plus
// an origin matcher split into exact entries and wildcard host suffixes.
type cors struct {
	exactOrigins     map[string]struct{}
	wildcardSuffixes []string
	methods          string
	headers          string
	exposed          string
	maxAge           string
	credentials      bool
}

func newCORS(cfg CORSConfig) *cors {
	c := &cors{
		exactOrigins: make(map[string]struct{}, len(cfg.AllowedOrigins)),
		methods:      strings.Join(cfg.AllowedMethods, ", "),
		headers:      strings.Join(cfg.AllowedHeaders, ", "),
		exposed:      strings.Join(cfg.ExposedHeaders, ", "),
		credentials:  cfg.AllowCredentials,
	}
	if cfg.MaxAge > 0 {
		c.maxAge = strconv.Itoa(cfg.MaxAge)
	}

	for _, origin := range cfg.AllowedOrigins {
		origin = strings.ToLower(strings.TrimSpace(origin))
		if origin == "" {
			continue
		}
		if suffix, ok := strings.CutPrefix(origin, "*"); ok {
			c.wildcardSuffixes = append(c.wildcardSuffixes, suffix)
			continue
		}
		c.exactOrigins[origin] = struct{}{}
	}

	return c
}

// allowsOrigin reports whether the Origin header value may make
// cross-origin requests. Matching is case-insensitive.
func (c *cors) allowsOrigin(origin string) bool {
	origin = strings.ToLower(origin)
	if _, ok := c.exactOrigins[origin]; ok {
		return true
	}

	if len(c.wildcardSuffixes) == 0 {
		return false
	}

	// Wildcard entries match on the host part, so "*.example.com" accepts
	// "https://app.example.com" but not "https://example.com" or
	// "https://notexample.com".
	_, host, found := strings.Cut(origin, "://")
	if !found {
		return false
	}
	for _, suffix := range c.wildcardSuffixes {
		if suffix == "" {
			return true // bare "*"
		}
		if strings.HasSuffix(host, suffix) && len(host) > len(suffix) {
			return true
		}
	}

	return false
}

// CORS returns a middleware that handles Cross-Origin Resource Sharing.
// Preflight OPTIONS requests are answered here and never reach the routes;
// requests from origins outside the allowlist pass through without CORS
// headers, which makes the browser block the response.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	c := newCORS(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			// Same-origin requests carry no Origin header.
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()

			// The response differs by Origin whether the check passes or
			// not, so caches must key on it either way.
			h.Add("Vary", "Origin")

			if !c.allowsOrigin(origin) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			h.Set("Access-Control-Allow-Origin", origin)
			if c.credentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			if c.exposed != "" {
				h.Set("Access-Control-Expose-Headers", c.exposed)
			}

			if r.Method == http.MethodOptions {
				h.Set("Access-Control-Allow-Methods", c.methods)
				h.Set("Access-Control-Allow-Headers", c.headers)
				h.Add("Vary", "Access-Control-Request-Method")
				h.Add("Vary", "Access-Control-Request-Headers")
				if c.maxAge != "" {
					h.Set("Access-Control-Max-Age", c.maxAge)
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
