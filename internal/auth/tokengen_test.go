package auth

import (
	"strings"
	"testing"
)

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	token, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	// Check plaintext format
	if !strings.HasPrefix(token.Plaintext, "rcp_") {
		t.Errorf("Token should start with rcp_, got: %s", token.Plaintext)
	}

	// Check prefix length
	if len(token.Prefix) != TokenPrefixLen {
		t.Errorf("Prefix should be %d chars, got: %d", TokenPrefixLen, len(token.Prefix))
	}

	// Check hash is not empty and in PHC format
	if token.Hash == "" {
		t.Error("Hash should not be empty")
	}
	if !strings.HasPrefix(token.Hash, "$argon2id$v=") {
		t.Errorf("Hash should be in PHC format, got: %s", token.Hash)
	}

	// Verify plaintext contains prefix
	if !strings.Contains(token.Plaintext, token.Prefix) {
		t.Error("Plaintext should contain prefix")
	}

	// The generated plaintext must round-trip through the parser
	parsed, err := ParseToken(token.Plaintext)
	if err != nil {
		t.Fatalf("ParseToken failed on generated token: %v", err)
	}
	if parsed.Prefix != token.Prefix {
		t.Errorf("Parsed prefix = %s, want %s", parsed.Prefix, token.Prefix)
	}
}

func TestGenerateToken_HashVerifies(t *testing.T) {
	t.Parallel()

	token, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	match, err := VerifyPassword(token.Plaintext, token.Hash)
	if err != nil {
		t.Fatalf("VerifyPassword failed: %v", err)
	}
	if !match {
		t.Error("Generated token should verify against its own hash")
	}
}

func TestGenerateToken_UniquePrefixes(t *testing.T) {
	t.Parallel()

	const numTokens = 100
	prefixes := make(map[string]bool, numTokens)

	for i := 0; i < numTokens; i++ {
		token, err := GenerateToken()
		if err != nil {
			t.Fatalf("GenerateToken failed: %v", err)
		}

		if prefixes[token.Prefix] {
			t.Errorf("Duplicate prefix found: %s (iteration %d)", token.Prefix, i)
		}
		prefixes[token.Prefix] = true
	}

	// Verify all prefixes are unique (high probability)
	if len(prefixes) != numTokens {
		t.Errorf("Expected %d unique prefixes, got %d", numTokens, len(prefixes))
	}
}

func TestGenerateToken_UniqueSecrets(t *testing.T) {
	t.Parallel()

	const numTokens = 100
	secrets := make(map[string]bool, numTokens)

	for i := 0; i < numTokens; i++ {
		token, err := GenerateToken()
		if err != nil {
			t.Fatalf("GenerateToken failed: %v", err)
		}

		// Extract secret from plaintext (last 32 chars after final underscore)
		parts := strings.Split(token.Plaintext, "_")
		if len(parts) != 3 {
			t.Fatalf("Expected 3 parts in token, got %d", len(parts))
		}
		secret := parts[2]

		if secrets[secret] {
			t.Errorf("Duplicate secret found at iteration %d", i)
		}
		secrets[secret] = true
	}

	if len(secrets) != numTokens {
		t.Errorf("Expected %d unique secrets, got %d", numTokens, len(secrets))
	}
}

func TestParseToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		token      string
		wantPrefix string
		wantErr    error
	}{
		{
			name:       "valid token",
			token:      "rcp_abc123_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b",
			wantPrefix: "abc123",
			wantErr:    nil,
		},
		{
			name:    "wrong scheme",
			token:   "pk_live_abc123_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b",
			wantErr: ErrInvalidTokenFormat,
		},
		{
			name:    "prefix too short",
			token:   "rcp_abc12_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b",
			wantErr: ErrInvalidTokenFormat,
		},
		{
			name:    "secret too short",
			token:   "rcp_abc123_4f8d2e1b9c7a5f3d2e1b",
			wantErr: ErrInvalidTokenFormat,
		},
		{
			name:    "uppercase hex rejected",
			token:   "rcp_ABC123_4F8D2E1B9C7A5F3D2E1B9C7A5F3D2E1B",
			wantErr: ErrInvalidTokenFormat,
		},
		{
			name:    "non-hex characters",
			token:   "rcp_zzz999_zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz",
			wantErr: ErrInvalidTokenFormat,
		},
		{
			name:    "empty",
			token:   "",
			wantErr: ErrInvalidTokenFormat,
		},
		{
			name:    "trailing garbage",
			token:   "rcp_abc123_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b extra",
			wantErr: ErrInvalidTokenFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			parsed, err := ParseToken(tt.token)
			if err != tt.wantErr {
				t.Fatalf("ParseToken(%q) error = %v, want %v", tt.token, err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if parsed.Prefix != tt.wantPrefix {
				t.Errorf("Prefix = %s, want %s", parsed.Prefix, tt.wantPrefix)
			}
			if len(parsed.Secret) != TokenSecretLen {
				t.Errorf("Secret length = %d, want %d", len(parsed.Secret), TokenSecretLen)
			}
		})
	}
}

func TestValidateTokenFormat(t *testing.T) {
	t.Parallel()

	if !ValidateTokenFormat("rcp_abc123_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b") {
		t.Error("Valid token should pass format validation")
	}
	if ValidateTokenFormat("Bearer rcp_abc123_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b") {
		t.Error("Token with scheme prefix should fail format validation")
	}
}
