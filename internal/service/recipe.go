package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"strings"
	"unicode/utf8"

	// Registered decoders determine which upload formats are accepted.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/google/uuid"
	"github.com/recipebox/recipebox/internal/metrics"
	"github.com/recipebox/recipebox/internal/model"
	"github.com/recipebox/recipebox/internal/repository"
	"github.com/recipebox/recipebox/internal/storage"
)

// Recipe errors.
var (
	ErrRecipeNotFound   = errors.New("recipe not found")
	ErrInvalidTitle     = errors.New("invalid recipe title")
	ErrInvalidPrice     = errors.New("invalid price")
	ErrInvalidDuration  = errors.New("invalid duration")
	ErrInvalidLabelName = errors.New("invalid label name")
	ErrUnsupportedImage = errors.New("unsupported image format")
)

const (
	maxTitleLength = 255
	maxLabelLength = 255
	// NUMERIC(10,2) holds eight integer digits.
	maxPriceIntDigits = 8
)

// Image keys live under one directory with a generated name, so client
// filenames never reach the filesystem.
const imageKeyDir = "recipes"

// RecipeService handles recipe business logic, including the nested
// tag/ingredient reconciliation performed by the repository and image
// attachment through the configured storage backend.
type RecipeService struct {
	repo    *repository.Repository
	store   storage.Storage
	metrics metrics.Recorder
}

// NewRecipeService creates a new RecipeService.
func NewRecipeService(repo *repository.Repository, store storage.Storage, recorder metrics.Recorder) *RecipeService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &RecipeService{
		repo:    repo,
		store:   store,
		metrics: recorder,
	}
}

// CreateRecipeInput defines input for creating a recipe. Tag and ingredient
// entries are names; existing labels owned by the caller are linked, missing
// ones are created.
type CreateRecipeInput struct {
	UserID          int64
	Title           string
	Description     string
	Price           string
	DurationMinutes int
	Tags            []string
	Ingredients     []string
}

// CreateRecipe validates input and creates the recipe with its label links
// in a single transaction.
func (s *RecipeService) CreateRecipe(ctx context.Context, input CreateRecipeInput) (*model.Recipe, error) {
	title, err := validateTitle(input.Title)
	if err != nil {
		return nil, err
	}
	if err := validatePrice(input.Price); err != nil {
		return nil, err
	}
	if input.DurationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}
	tags, err := validateLabelNames(input.Tags)
	if err != nil {
		return nil, err
	}
	ingredients, err := validateLabelNames(input.Ingredients)
	if err != nil {
		return nil, err
	}

	recipe := &model.Recipe{
		UserID:          input.UserID,
		Title:           title,
		Description:     input.Description,
		Price:           input.Price,
		DurationMinutes: input.DurationMinutes,
	}

	if err := s.repo.CreateRecipe(ctx, recipe, tags, ingredients); err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	s.metrics.IncRecipeCreated()
	s.metrics.ObserveLabelsReconciled(metrics.KindTag, len(tags))
	s.metrics.ObserveLabelsReconciled(metrics.KindIngredient, len(ingredients))

	return recipe, nil
}

// GetRecipe retrieves one of the caller's recipes. Another user's recipe
// reports not-found, never forbidden.
func (s *RecipeService) GetRecipe(ctx context.Context, userID, id int64) (*model.Recipe, error) {
	recipe, err := s.repo.GetRecipeByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	return recipe, nil
}

// ListRecipesInput defines input for listing recipes. Ids within one list
// are inclusive-or; both lists set means recipes matching each.
type ListRecipesInput struct {
	UserID        int64
	TagIDs        []int64
	IngredientIDs []int64
}

// ListRecipes retrieves the caller's recipes, newest first.
func (s *RecipeService) ListRecipes(ctx context.Context, input ListRecipesInput) ([]*model.Recipe, error) {
	filter := repository.RecipeFilter{
		UserID:        input.UserID,
		TagIDs:        input.TagIDs,
		IngredientIDs: input.IngredientIDs,
	}

	recipes, err := s.repo.ListRecipes(ctx, filter)
	if err != nil {
		return nil, err
	}

	return recipes, nil
}

// UpdateRecipeInput defines input for updating a recipe. Nil scalar fields
// are left untouched. A nil label list leaves the links alone; a present
// list replaces them entirely, so an empty list clears every link.
type UpdateRecipeInput struct {
	Title           *string
	Description     *string
	Price           *string
	DurationMinutes *int
	Tags            *[]string
	Ingredients     *[]string
}

// UpdateRecipe applies a partial update to one of the caller's recipes.
func (s *RecipeService) UpdateRecipe(ctx context.Context, userID, id int64, input UpdateRecipeInput) (*model.Recipe, error) {
	recipe, err := s.repo.GetRecipeByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	if input.Title != nil {
		title, err := validateTitle(*input.Title)
		if err != nil {
			return nil, err
		}
		recipe.Title = title
	}
	if input.Description != nil {
		recipe.Description = *input.Description
	}
	if input.Price != nil {
		if err := validatePrice(*input.Price); err != nil {
			return nil, err
		}
		recipe.Price = *input.Price
	}
	if input.DurationMinutes != nil {
		if *input.DurationMinutes <= 0 {
			return nil, ErrInvalidDuration
		}
		recipe.DurationMinutes = *input.DurationMinutes
	}

	tags, err := validateLabelList(input.Tags)
	if err != nil {
		return nil, err
	}
	ingredients, err := validateLabelList(input.Ingredients)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateRecipe(ctx, recipe, tags, ingredients); err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	s.metrics.IncRecipeUpdated()
	if tags != nil {
		s.metrics.ObserveLabelsReconciled(metrics.KindTag, len(*tags))
	}
	if ingredients != nil {
		s.metrics.ObserveLabelsReconciled(metrics.KindIngredient, len(*ingredients))
	}

	return recipe, nil
}

// DeleteRecipe removes one of the caller's recipes. Its labels survive as
// unassigned entries; an attached image file is removed best effort.
func (s *RecipeService) DeleteRecipe(ctx context.Context, userID, id int64) error {
	recipe, err := s.repo.GetRecipeByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return ErrRecipeNotFound
		}
		return err
	}

	if err := s.repo.DeleteRecipe(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return ErrRecipeNotFound
		}
		return err
	}

	if recipe.HasImage() && s.store != nil {
		if err := s.store.Delete(ctx, *recipe.ImagePath); err != nil {
			// The row is gone; an orphaned file is acceptable.
			_ = err
		}
	}

	s.metrics.IncRecipeDeleted()

	return nil
}

// AttachImage decodes and stores an uploaded image for one of the caller's
// recipes, then records its storage key. The stored filename is generated;
// the client's filename is never used. A previously attached file is
// removed best effort after the new key is persisted.
func (s *RecipeService) AttachImage(ctx context.Context, userID, id int64, upload io.Reader) (*model.Recipe, error) {
	recipe, err := s.repo.GetRecipeByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	data, err := io.ReadAll(upload)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		s.metrics.IncImageRejected()
		return nil, ErrUnsupportedImage
	}

	key := fmt.Sprintf("%s/%s.%s", imageKeyDir, uuid.New().String(), imageExtension(format))
	if err := s.store.Save(ctx, key, bytes.NewReader(data), imageContentType(format)); err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	if err := s.repo.SetRecipeImage(ctx, userID, id, key); err != nil {
		// Roll back the stored file so a failed update leaves no orphan.
		_ = s.store.Delete(ctx, key)
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	if recipe.HasImage() && *recipe.ImagePath != key {
		if err := s.store.Delete(ctx, *recipe.ImagePath); err != nil {
			_ = err
		}
	}

	recipe.ImagePath = &key
	s.metrics.IncImageUploaded()

	return recipe, nil
}

// ImageURL resolves a recipe's stored image key to a serveable URL, or ""
// when no image is attached.
func (s *RecipeService) ImageURL(recipe *model.Recipe) string {
	if recipe == nil || !recipe.HasImage() || s.store == nil {
		return ""
	}
	return s.store.URL(*recipe.ImagePath)
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" || utf8.RuneCountInString(title) > maxTitleLength {
		return "", ErrInvalidTitle
	}
	return title, nil
}

// validatePrice accepts a non-negative decimal string with at most two
// fraction digits, e.g. "5", "5.2", "12.50". The value is passed to the
// database as text so no float conversion happens anywhere.
func validatePrice(price string) error {
	intPart, fracPart, hasFrac := strings.Cut(price, ".")
	if !isDigits(intPart) || len(intPart) > maxPriceIntDigits {
		return ErrInvalidPrice
	}
	if hasFrac && (!isDigits(fracPart) || len(fracPart) > 2) {
		return ErrInvalidPrice
	}
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// validateLabelNames trims each submitted name and rejects blank or
// oversized entries. Case is preserved; matching against existing labels
// is exact.
func validateLabelNames(names []string) ([]string, error) {
	if len(names) == 0 {
		return names, nil
	}
	cleaned := make([]string, 0, len(names))
	for _, name := range names {
		name, err := validateLabelName(name)
		if err != nil {
			return nil, err
		}
		cleaned = append(cleaned, name)
	}
	return cleaned, nil
}

// validateLabelList is the pointer form used by partial updates: nil stays
// nil (links untouched), an empty list stays empty (links cleared).
func validateLabelList(names *[]string) (*[]string, error) {
	if names == nil {
		return nil, nil
	}
	cleaned, err := validateLabelNames(*names)
	if err != nil {
		return nil, err
	}
	return &cleaned, nil
}

func imageExtension(format string) string {
	if format == "jpeg" {
		return "jpg"
	}
	return format
}

func imageContentType(format string) string {
	return "image/" + format
}
