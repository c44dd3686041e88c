package model

import "testing"

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already normalized", "user@example.com", "user@example.com"},
		{"uppercase domain", "user@EXAMPLE.COM", "user@example.com"},
		{"mixed case domain", "user@Example.Com", "user@example.com"},
		{"local part case preserved", "User@EXAMPLE.com", "User@example.com"},
		{"surrounding whitespace", "  user@example.com  ", "user@example.com"},
		{"no at sign passes through", "not-an-email", "not-an-email"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeEmail(tt.input); got != tt.want {
				t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestUser_FullName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		user User
		want string
	}{
		{"both parts", User{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}, "Ada Lovelace"},
		{"first only", User{FirstName: "Ada", Email: "ada@example.com"}, "Ada"},
		{"last only", User{LastName: "Lovelace", Email: "ada@example.com"}, "Lovelace"},
		{"falls back to email", User{Email: "ada@example.com"}, "ada@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.FullName(); got != tt.want {
				t.Errorf("FullName() = %q, want %q", got, tt.want)
			}
		})
	}
}
