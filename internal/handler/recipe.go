package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/recipebox/recipebox/internal/auth"
	"github.com/recipebox/recipebox/internal/handler/dto"
	"github.com/recipebox/recipebox/internal/service"
)

// RecipeHandler handles HTTP requests for recipe operations. Every route
// is scoped to the authenticated caller; other users' recipes are
// indistinguishable from missing ones.
type RecipeHandler struct {
	svc    *service.RecipeService
	logger *slog.Logger
}

// NewRecipeHandler creates a new RecipeHandler.
func NewRecipeHandler(svc *service.RecipeService, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /api/v1/recipes. Optional ?tags= and ?ingredients=
// take comma-separated label ids; ids within one list are inclusive-or,
// both lists together must each match.
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())
	query := r.URL.Query()

	tagIDs, err := parseIDList(query.Get("tags"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_FILTER", "tags must be comma-separated numeric ids")
		return
	}
	ingredientIDs, err := parseIDList(query.Get("ingredients"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_FILTER", "ingredients must be comma-separated numeric ids")
		return
	}

	input := service.ListRecipesInput{
		UserID:        authCtx.UserID,
		TagIDs:        tagIDs,
		IngredientIDs: ingredientIDs,
	}

	recipes, err := h.svc.ListRecipes(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToRecipeListResponse(recipes))
}

// Create handles POST /api/v1/recipes.
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	var req dto.CreateRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	input := service.CreateRecipeInput{
		UserID:          authCtx.UserID,
		Title:           req.Title,
		Description:     req.Description,
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
		Tags:            dto.Names(req.Tags),
		Ingredients:     dto.Names(req.Ingredients),
	}

	recipe, err := h.svc.CreateRecipe(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("recipe_created",
		"recipe_id", recipe.ID,
		"user_id", recipe.UserID,
		"tags", len(recipe.Tags),
		"ingredients", len(recipe.Ingredients),
	)

	writeJSON(w, http.StatusCreated, dto.ToRecipeDetailResponse(recipe, h.svc.ImageURL(recipe)))
}

// Get handles GET /api/v1/recipes/{id}.
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	id, err := parseID(r)
	if err != nil {
		h.writeError(w, http.StatusNotFound, "RECIPE_NOT_FOUND", "Recipe not found")
		return
	}

	recipe, err := h.svc.GetRecipe(r.Context(), authCtx.UserID, id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToRecipeDetailResponse(recipe, h.svc.ImageURL(recipe)))
}

// Update handles PATCH /api/v1/recipes/{id}. Absent keys stay untouched;
// a present empty label list clears that link set. Owner fields in the
// payload are discarded.
func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeUpdate(w, r)
	if !ok {
		return
	}
	h.update(w, r, req)
}

// UpdateFull handles PUT /api/v1/recipes/{id}: the same update path, but
// the scalar fields a recipe cannot exist without must be present.
func (h *RecipeHandler) UpdateFull(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeUpdate(w, r)
	if !ok {
		return
	}
	if req.Title == nil || req.Price == nil || req.DurationMinutes == nil {
		h.writeError(w, http.StatusBadRequest, "MISSING_FIELDS", "title, price and duration_minutes are required")
		return
	}
	h.update(w, r, req)
}

func (h *RecipeHandler) decodeUpdate(w http.ResponseWriter, r *http.Request) (*dto.UpdateRecipeRequest, bool) {
	var req dto.UpdateRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return nil, false
	}
	return &req, true
}

func (h *RecipeHandler) update(w http.ResponseWriter, r *http.Request, req *dto.UpdateRecipeRequest) {
	authCtx := auth.MustAuthFromContext(r.Context())

	id, err := parseID(r)
	if err != nil {
		h.writeError(w, http.StatusNotFound, "RECIPE_NOT_FOUND", "Recipe not found")
		return
	}

	input := service.UpdateRecipeInput{
		Title:           req.Title,
		Description:     req.Description,
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
	}
	if req.Tags != nil {
		tags := dto.Names(*req.Tags)
		input.Tags = &tags
	}
	if req.Ingredients != nil {
		ingredients := dto.Names(*req.Ingredients)
		input.Ingredients = &ingredients
	}

	recipe, err := h.svc.UpdateRecipe(r.Context(), authCtx.UserID, id, input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("recipe_updated",
		"recipe_id", recipe.ID,
		"user_id", recipe.UserID,
		"tags_replaced", req.Tags != nil,
		"ingredients_replaced", req.Ingredients != nil,
	)

	writeJSON(w, http.StatusOK, dto.ToRecipeDetailResponse(recipe, h.svc.ImageURL(recipe)))
}

// Delete handles DELETE /api/v1/recipes/{id}.
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	id, err := parseID(r)
	if err != nil {
		h.writeError(w, http.StatusNotFound, "RECIPE_NOT_FOUND", "Recipe not found")
		return
	}

	if err := h.svc.DeleteRecipe(r.Context(), authCtx.UserID, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("recipe_deleted",
		"recipe_id", id,
		"user_id", authCtx.UserID,
	)

	w.WriteHeader(http.StatusNoContent)
}

// UploadImage handles POST /api/v1/recipes/{id}/image. The upload is the
// multipart field "image"; any decodable jpeg/png/gif/webp body is
// accepted and replaces a previously attached file.
func (h *RecipeHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	id, err := parseID(r)
	if err != nil {
		h.writeError(w, http.StatusNotFound, "RECIPE_NOT_FOUND", "Recipe not found")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			h.writeError(w, http.StatusRequestEntityTooLarge, "IMAGE_TOO_LARGE", "Uploaded image exceeds the size limit")
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			h.writeError(w, http.StatusBadRequest, "MISSING_IMAGE", "Multipart field 'image' is required")
		default:
			h.writeError(w, http.StatusBadRequest, "INVALID_UPLOAD", "Malformed multipart request")
		}
		return
	}
	defer file.Close()

	recipe, err := h.svc.AttachImage(r.Context(), authCtx.UserID, id, file)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("recipe_image_uploaded",
		"recipe_id", recipe.ID,
		"user_id", recipe.UserID,
	)

	writeJSON(w, http.StatusOK, dto.RecipeImageResponse{
		ID:    recipe.ID,
		Image: h.svc.ImageURL(recipe),
	})
}

// handleServiceError maps service errors to HTTP responses.
func (h *RecipeHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrRecipeNotFound):
		h.writeError(w, http.StatusNotFound, "RECIPE_NOT_FOUND", "Recipe not found")
	case errors.Is(err, service.ErrInvalidTitle):
		h.writeError(w, http.StatusBadRequest, "INVALID_TITLE", "Title must be non-blank and at most 255 characters")
	case errors.Is(err, service.ErrInvalidPrice):
		h.writeError(w, http.StatusBadRequest, "INVALID_PRICE", "Price must be a non-negative decimal with at most two decimal places")
	case errors.Is(err, service.ErrInvalidDuration):
		h.writeError(w, http.StatusBadRequest, "INVALID_DURATION", "Duration must be a positive number of minutes")
	case errors.Is(err, service.ErrInvalidLabelName):
		h.writeError(w, http.StatusBadRequest, "INVALID_LABEL", "Label names must be non-blank and at most 255 characters")
	case errors.Is(err, service.ErrUnsupportedImage):
		h.writeError(w, http.StatusBadRequest, "INVALID_IMAGE", "Upload must be a jpeg, png, gif or webp image")
	default:
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes an error response.
func (h *RecipeHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
