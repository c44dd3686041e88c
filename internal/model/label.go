// Package model defines domain entities for the application.
package model

import "time"

// LabelKind selects one of the two label vocabularies attached to recipes.
// Tags and ingredients share shape and behavior; everything that differs
// between them is keyed off this value.
type LabelKind string

const (
	LabelKindTag        LabelKind = "tag"
	LabelKindIngredient LabelKind = "ingredient"
)

// IsValid checks if the label kind is one of the known vocabularies.
func (k LabelKind) IsValid() bool {
	return k == LabelKindTag || k == LabelKindIngredient
}

// Plural returns the kind's plural form, as used in routes and log fields.
func (k LabelKind) Plural() string {
	switch k {
	case LabelKindTag:
		return "tags"
	case LabelKindIngredient:
		return "ingredients"
	default:
		return string(k)
	}
}

// Label represents an owner-scoped tag or ingredient. Names are unique per
// owner and kind, matched exactly (case matters).
type Label struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
