// Package model defines domain entities for the application.
package model

import "time"

// Recipe represents a recipe entity. Price is carried as a decimal string
// ("12.50") end to end so no float rounding ever touches money; the column
// is NUMERIC(10,2).
type Recipe struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Price           string    `json:"price"`
	DurationMinutes int       `json:"duration_minutes"`
	ImagePath       *string   `json:"-"` // storage key, not a URL
	Tags            []Label   `json:"tags"`
	Ingredients     []Label   `json:"ingredients"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// HasImage returns true when an uploaded image is attached.
func (r *Recipe) HasImage() bool {
	return r.ImagePath != nil && *r.ImagePath != ""
}
