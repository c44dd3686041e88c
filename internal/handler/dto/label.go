package dto

import (
	"time"

	"github.com/recipebox/recipebox/internal/model"
)

// CreateLabelRequest represents the request body for creating or renaming
// a tag or ingredient.
type CreateLabelRequest struct {
	Name string `json:"name"`
}

// LabelResponse represents a tag or ingredient in API responses.
type LabelResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// LabelListResponse represents a list of tags or ingredients.
type LabelListResponse struct {
	Data []LabelResponse `json:"data"`
}

// ToLabelResponse converts a Label model to LabelResponse DTO.
func ToLabelResponse(label *model.Label) *LabelResponse {
	return &LabelResponse{
		ID:        label.ID,
		Name:      label.Name,
		CreatedAt: label.CreatedAt,
	}
}

// ToLabelResponses converts an attached label set, keeping it an empty
// array rather than null when the set is empty.
func ToLabelResponses(labels []model.Label) []LabelResponse {
	responses := make([]LabelResponse, len(labels))
	for i := range labels {
		responses[i] = *ToLabelResponse(&labels[i])
	}
	return responses
}

// ToLabelListResponse converts a slice of Label models to
// LabelListResponse.
func ToLabelListResponse(labels []*model.Label) *LabelListResponse {
	responses := make([]LabelResponse, len(labels))
	for i, label := range labels {
		responses[i] = *ToLabelResponse(label)
	}
	return &LabelListResponse{Data: responses}
}
