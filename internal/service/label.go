package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/recipebox/recipebox/internal/metrics"
	"github.com/recipebox/recipebox/internal/model"
	"github.com/recipebox/recipebox/internal/repository"
)

// Label errors.
var (
	ErrLabelNotFound  = errors.New("label not found")
	ErrLabelNameTaken = errors.New("label name already exists")
)

// LabelService handles tag and ingredient business logic. The two
// vocabularies behave identically; every method takes the kind it operates
// on.
type LabelService struct {
	repo    *repository.Repository
	metrics metrics.Recorder
}

// NewLabelService creates a new LabelService.
func NewLabelService(repo *repository.Repository, recorder metrics.Recorder) *LabelService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &LabelService{
		repo:    repo,
		metrics: recorder,
	}
}

// ListLabels retrieves the caller's labels of one kind ordered by
// descending name. With assignedOnly set, only labels linked to at least
// one recipe are returned, each exactly once.
func (s *LabelService) ListLabels(ctx context.Context, kind model.LabelKind, userID int64, assignedOnly bool) ([]*model.Label, error) {
	labels, err := s.repo.ListLabels(ctx, kind, userID, assignedOnly)
	if err != nil {
		return nil, err
	}

	return labels, nil
}

// CreateLabel creates a label owned by the caller. Names are unique per
// owner and kind, compared exactly.
func (s *LabelService) CreateLabel(ctx context.Context, kind model.LabelKind, userID int64, name string) (*model.Label, error) {
	name, err := validateLabelName(name)
	if err != nil {
		return nil, err
	}

	label := &model.Label{
		UserID: userID,
		Name:   name,
	}

	if err := s.repo.CreateLabel(ctx, kind, label); err != nil {
		if errors.Is(err, repository.ErrLabelExists) {
			return nil, ErrLabelNameTaken
		}
		return nil, fmt.Errorf("failed to create %s: %w", kind, err)
	}

	s.metrics.IncLabelCreated(string(kind))

	return label, nil
}

// RenameLabel changes a label's name. Recipes linked to it keep their link;
// another owner's label reports not-found.
func (s *LabelService) RenameLabel(ctx context.Context, kind model.LabelKind, userID, id int64, name string) (*model.Label, error) {
	name, err := validateLabelName(name)
	if err != nil {
		return nil, err
	}

	label, err := s.repo.UpdateLabelName(ctx, kind, userID, id, name)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrLabelNotFound):
			return nil, ErrLabelNotFound
		case errors.Is(err, repository.ErrLabelExists):
			return nil, ErrLabelNameTaken
		}
		return nil, err
	}

	return label, nil
}

// DeleteLabel removes one of the caller's labels; its recipe links cascade
// away while the recipes themselves survive.
func (s *LabelService) DeleteLabel(ctx context.Context, kind model.LabelKind, userID, id int64) error {
	if err := s.repo.DeleteLabel(ctx, kind, userID, id); err != nil {
		if errors.Is(err, repository.ErrLabelNotFound) {
			return ErrLabelNotFound
		}
		return err
	}

	s.metrics.IncLabelDeleted(string(kind))

	return nil
}

func validateLabelName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxLabelLength {
		return "", ErrInvalidLabelName
	}
	return name, nil
}
