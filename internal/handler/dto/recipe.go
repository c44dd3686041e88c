package dto

import (
	"time"

	"github.com/recipebox/recipebox/internal/model"
)

// LabelInput is a nested tag or ingredient descriptor inside a recipe
// payload. Only the name matters; existing labels are matched by it.
type LabelInput struct {
	Name string `json:"name"`
}

// CreateRecipeRequest represents the request body for creating a recipe.
type CreateRecipeRequest struct {
	Title           string       `json:"title"`
	Description     string       `json:"description,omitempty"`
	Price           string       `json:"price"`
	DurationMinutes int          `json:"duration_minutes"`
	Tags            []LabelInput `json:"tags,omitempty"`
	Ingredients     []LabelInput `json:"ingredients,omitempty"`
}

// UpdateRecipeRequest represents the request body for updating a recipe.
// A nil label list means the key was absent and the links stay untouched;
// a present empty list clears them. Owner fields in the payload are
// ignored, never honored.
type UpdateRecipeRequest struct {
	Title           *string       `json:"title,omitempty"`
	Description     *string       `json:"description,omitempty"`
	Price           *string       `json:"price,omitempty"`
	DurationMinutes *int          `json:"duration_minutes,omitempty"`
	Tags            *[]LabelInput `json:"tags,omitempty"`
	Ingredients     *[]LabelInput `json:"ingredients,omitempty"`
}

// RecipeResponse represents a recipe in list responses. Description and
// image stay detail-only.
type RecipeResponse struct {
	ID              int64           `json:"id"`
	Title           string          `json:"title"`
	Price           string          `json:"price"`
	DurationMinutes int             `json:"duration_minutes"`
	Tags            []LabelResponse `json:"tags"`
	Ingredients     []LabelResponse `json:"ingredients"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// RecipeDetailResponse represents a recipe in detail responses. Image is
// a serveable URL, null until an upload attaches one.
type RecipeDetailResponse struct {
	ID              int64           `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Price           string          `json:"price"`
	DurationMinutes int             `json:"duration_minutes"`
	Image           *string         `json:"image"`
	Tags            []LabelResponse `json:"tags"`
	Ingredients     []LabelResponse `json:"ingredients"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// RecipeListResponse represents a list of recipes.
type RecipeListResponse struct {
	Data []RecipeResponse `json:"data"`
}

// RecipeImageResponse is returned by the image upload endpoint.
type RecipeImageResponse struct {
	ID    int64  `json:"id"`
	Image string `json:"image"`
}

// Names returns the plain name list for a nested label payload.
func Names(labels []LabelInput) []string {
	names := make([]string, len(labels))
	for i, label := range labels {
		names[i] = label.Name
	}
	return names
}

// ToRecipeResponse converts a Recipe model to RecipeResponse DTO.
func ToRecipeResponse(recipe *model.Recipe) *RecipeResponse {
	return &RecipeResponse{
		ID:              recipe.ID,
		Title:           recipe.Title,
		Price:           recipe.Price,
		DurationMinutes: recipe.DurationMinutes,
		Tags:            ToLabelResponses(recipe.Tags),
		Ingredients:     ToLabelResponses(recipe.Ingredients),
		CreatedAt:       recipe.CreatedAt,
		UpdatedAt:       recipe.UpdatedAt,
	}
}

// ToRecipeDetailResponse converts a Recipe model to RecipeDetailResponse
// DTO. imageURL resolves the stored key; "" means no image and serializes
// as null.
func ToRecipeDetailResponse(recipe *model.Recipe, imageURL string) *RecipeDetailResponse {
	response := &RecipeDetailResponse{
		ID:              recipe.ID,
		Title:           recipe.Title,
		Description:     recipe.Description,
		Price:           recipe.Price,
		DurationMinutes: recipe.DurationMinutes,
		Tags:            ToLabelResponses(recipe.Tags),
		Ingredients:     ToLabelResponses(recipe.Ingredients),
		CreatedAt:       recipe.CreatedAt,
		UpdatedAt:       recipe.UpdatedAt,
	}
	if imageURL != "" {
		response.Image = &imageURL
	}
	return response
}

// ToRecipeListResponse converts a slice of Recipe models to
// RecipeListResponse.
func ToRecipeListResponse(recipes []*model.Recipe) *RecipeListResponse {
	responses := make([]RecipeResponse, len(recipes))
	for i, recipe := range recipes {
		responses[i] = *ToRecipeResponse(recipe)
	}
	return &RecipeListResponse{Data: responses}
}
