package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/recipebox/recipebox/internal/auth"
	"github.com/recipebox/recipebox/internal/handler/dto"
	"github.com/recipebox/recipebox/internal/model"
	"github.com/recipebox/recipebox/internal/service"
)

// LabelHandler handles HTTP requests for one label vocabulary. The same
// handler type serves /api/v1/tags and /api/v1/ingredients; the kind it
// was built with decides which.
type LabelHandler struct {
	svc    *service.LabelService
	kind   model.LabelKind
	logger *slog.Logger
}

// NewLabelHandler creates a new LabelHandler for one label kind.
func NewLabelHandler(svc *service.LabelService, kind model.LabelKind, logger *slog.Logger) *LabelHandler {
	return &LabelHandler{
		svc:    svc,
		kind:   kind,
		logger: logger,
	}
}

// List handles GET /api/v1/tags and GET /api/v1/ingredients. With
// ?assigned_only=1 only labels linked to at least one of the caller's
// recipes are returned.
func (h *LabelHandler) List(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	assignedOnly, _ := strconv.ParseBool(r.URL.Query().Get("assigned_only"))

	labels, err := h.svc.ListLabels(r.Context(), h.kind, authCtx.UserID, assignedOnly)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToLabelListResponse(labels))
}

// Create handles POST /api/v1/tags and POST /api/v1/ingredients.
func (h *LabelHandler) Create(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	var req dto.CreateLabelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	label, err := h.svc.CreateLabel(r.Context(), h.kind, authCtx.UserID, req.Name)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info(string(h.kind)+"_created",
		"label_id", label.ID,
		"user_id", label.UserID,
	)

	writeJSON(w, http.StatusCreated, dto.ToLabelResponse(label))
}

// Update handles PATCH /api/v1/tags/{id} and /api/v1/ingredients/{id}.
// Renaming is the only mutation a label supports.
func (h *LabelHandler) Update(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	id, err := parseID(r)
	if err != nil {
		h.writeError(w, http.StatusNotFound, h.errCode("NOT_FOUND"), h.displayName()+" not found")
		return
	}

	var req dto.CreateLabelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	label, err := h.svc.RenameLabel(r.Context(), h.kind, authCtx.UserID, id, req.Name)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info(string(h.kind)+"_renamed",
		"label_id", label.ID,
		"user_id", label.UserID,
	)

	writeJSON(w, http.StatusOK, dto.ToLabelResponse(label))
}

// Delete handles DELETE /api/v1/tags/{id} and /api/v1/ingredients/{id}.
// Recipes linked to the label lose the link, nothing else.
func (h *LabelHandler) Delete(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	id, err := parseID(r)
	if err != nil {
		h.writeError(w, http.StatusNotFound, h.errCode("NOT_FOUND"), h.displayName()+" not found")
		return
	}

	if err := h.svc.DeleteLabel(r.Context(), h.kind, authCtx.UserID, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info(string(h.kind)+"_deleted",
		"label_id", id,
		"user_id", authCtx.UserID,
	)

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps service errors to HTTP responses.
func (h *LabelHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrLabelNotFound):
		h.writeError(w, http.StatusNotFound, h.errCode("NOT_FOUND"), h.displayName()+" not found")
	case errors.Is(err, service.ErrLabelNameTaken):
		h.writeError(w, http.StatusBadRequest, h.errCode("NAME_TAKEN"), h.displayName()+" with this name already exists")
	case errors.Is(err, service.ErrInvalidLabelName):
		h.writeError(w, http.StatusBadRequest, "INVALID_LABEL", "Name must be non-blank and at most 255 characters")
	default:
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

func (h *LabelHandler) displayName() string {
	if h.kind == model.LabelKindIngredient {
		return "Ingredient"
	}
	return "Tag"
}

func (h *LabelHandler) errCode(suffix string) string {
	return strings.ToUpper(string(h.kind)) + "_" + suffix
}

// writeError writes an error response.
func (h *LabelHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
