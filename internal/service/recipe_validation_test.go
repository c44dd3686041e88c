package service

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestValidateTitle(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		want    string
		wantErr error
	}{
		{"blank", "", "", ErrInvalidTitle},
		{"whitespace_only", "   ", "", ErrInvalidTitle},
		{"too_long", strings.Repeat("x", 256), "", ErrInvalidTitle},
		{"max_length", strings.Repeat("x", 255), strings.Repeat("x", 255), nil},
		{"valid", "Pancakes", "Pancakes", nil},
		{"trimmed", "  Tacos  ", "Tacos", nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := validateTitle(test.title)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
			if got != test.want {
				t.Fatalf("expected title %q, got %q", test.want, got)
			}
		})
	}
}

func TestValidatePrice(t *testing.T) {
	tests := []struct {
		name    string
		price   string
		wantErr error
	}{
		{"empty", "", ErrInvalidPrice},
		{"negative", "-1.00", ErrInvalidPrice},
		{"letters", "abc", ErrInvalidPrice},
		{"three_decimals", "1.123", ErrInvalidPrice},
		{"missing_int_part", ".50", ErrInvalidPrice},
		{"trailing_dot", "5.", ErrInvalidPrice},
		{"embedded_space", "5 .00", ErrInvalidPrice},
		{"too_many_int_digits", "123456789.00", ErrInvalidPrice},
		{"max_int_digits", "99999999.99", nil},
		{"integer", "7", nil},
		{"one_decimal", "7.5", nil},
		{"two_decimals", "12.50", nil},
		{"zero", "0", nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := validatePrice(test.price)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
		})
	}
}

func TestValidateLabelName(t *testing.T) {
	tests := []struct {
		name    string
		label   string
		want    string
		wantErr error
	}{
		{"blank", "", "", ErrInvalidLabelName},
		{"whitespace_only", " \t ", "", ErrInvalidLabelName},
		{"too_long", strings.Repeat("n", 256), "", ErrInvalidLabelName},
		{"valid", "Vegan", "Vegan", nil},
		{"trimmed", " Comfort food ", "Comfort food", nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := validateLabelName(test.label)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
			if got != test.want {
				t.Fatalf("expected name %q, got %q", test.want, got)
			}
		})
	}
}

func TestCreateRecipeValidationErrors(t *testing.T) {
	svc := &RecipeService{}

	valid := CreateRecipeInput{
		Title:           "Lentil soup",
		Price:           "4.50",
		DurationMinutes: 30,
	}

	tests := []struct {
		name    string
		mutate  func(*CreateRecipeInput)
		wantErr error
	}{
		{
			name:    "blank_title",
			mutate:  func(in *CreateRecipeInput) { in.Title = "  " },
			wantErr: ErrInvalidTitle,
		},
		{
			name:    "bad_price",
			mutate:  func(in *CreateRecipeInput) { in.Price = "4,50" },
			wantErr: ErrInvalidPrice,
		},
		{
			name:    "zero_duration",
			mutate:  func(in *CreateRecipeInput) { in.DurationMinutes = 0 },
			wantErr: ErrInvalidDuration,
		},
		{
			name:    "negative_duration",
			mutate:  func(in *CreateRecipeInput) { in.DurationMinutes = -5 },
			wantErr: ErrInvalidDuration,
		},
		{
			name:    "blank_tag",
			mutate:  func(in *CreateRecipeInput) { in.Tags = []string{"Vegan", ""} },
			wantErr: ErrInvalidLabelName,
		},
		{
			name:    "blank_ingredient",
			mutate:  func(in *CreateRecipeInput) { in.Ingredients = []string{"  "} },
			wantErr: ErrInvalidLabelName,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			input := valid
			test.mutate(&input)
			_, err := svc.CreateRecipe(context.Background(), input)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
		})
	}
}

func TestImageExtension(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"jpeg", "jpg"},
		{"png", "png"},
		{"gif", "gif"},
		{"webp", "webp"},
	}

	for _, test := range tests {
		if got := imageExtension(test.format); got != test.want {
			t.Fatalf("imageExtension(%q) = %q, want %q", test.format, got, test.want)
		}
	}
}
