package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/recipebox/recipebox/internal/model"
)

func TestRepository_CreateLabel(t *testing.T) {
	for _, kind := range []model.LabelKind{model.LabelKindTag, model.LabelKindIngredient} {
		t.Run(string(kind), func(t *testing.T) {
			ctx := context.Background()
			repo := newTestRepository(t, ctx)

			user := createTestUser(t, ctx, repo, "label")

			label := &model.Label{UserID: user.ID, Name: "Vegan"}
			if err := repo.CreateLabel(ctx, kind, label); err != nil {
				t.Fatalf("create label: %v", err)
			}
			if label.ID == 0 {
				t.Fatalf("expected generated label id")
			}
			if label.CreatedAt.IsZero() {
				t.Fatalf("expected created_at to be set")
			}

			duplicate := &model.Label{UserID: user.ID, Name: "Vegan"}
			if err := repo.CreateLabel(ctx, kind, duplicate); !errors.Is(err, ErrLabelExists) {
				t.Fatalf("expected ErrLabelExists, got %v", err)
			}

			other := createTestUser(t, ctx, repo, "other")
			theirs := &model.Label{UserID: other.ID, Name: "Vegan"}
			if err := repo.CreateLabel(ctx, kind, theirs); err != nil {
				t.Fatalf("same name for another user should succeed: %v", err)
			}
			if theirs.ID == label.ID {
				t.Fatalf("expected distinct rows per user")
			}
		})
	}
}

func TestRepository_CreateLabel_SameNameAcrossKinds(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	user := createTestUser(t, ctx, repo, "kinds")

	tag := &model.Label{UserID: user.ID, Name: "Ginger"}
	if err := repo.CreateLabel(ctx, model.LabelKindTag, tag); err != nil {
		t.Fatalf("create tag: %v", err)
	}

	ingredient := &model.Label{UserID: user.ID, Name: "Ginger"}
	if err := repo.CreateLabel(ctx, model.LabelKindIngredient, ingredient); err != nil {
		t.Fatalf("tags and ingredients are separate namespaces: %v", err)
	}
}

func TestRepository_ListLabels_OrdersByNameDesc(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	user := createTestUser(t, ctx, repo, "order")
	other := createTestUser(t, ctx, repo, "outsider")

	for _, name := range []string{"Apple", "Zest", "Mango"} {
		if err := repo.CreateLabel(ctx, model.LabelKindTag, &model.Label{UserID: user.ID, Name: name}); err != nil {
			t.Fatalf("create label %q: %v", name, err)
		}
	}
	if err := repo.CreateLabel(ctx, model.LabelKindTag, &model.Label{UserID: other.ID, Name: "Banana"}); err != nil {
		t.Fatalf("create outsider label: %v", err)
	}

	labels, err := repo.ListLabels(ctx, model.LabelKindTag, user.ID, false)
	if err != nil {
		t.Fatalf("list labels: %v", err)
	}

	want := []string{"Zest", "Mango", "Apple"}
	if len(labels) != len(want) {
		t.Fatalf("expected %d labels, got %d", len(want), len(labels))
	}
	for i, name := range want {
		if labels[i].Name != name {
			t.Fatalf("position %d: expected %q, got %q", i, name, labels[i].Name)
		}
	}
}

func TestRepository_ListLabels_AssignedOnly(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	user := createTestUser(t, ctx, repo, "assigned")

	if err := repo.CreateLabel(ctx, model.LabelKindTag, &model.Label{UserID: user.ID, Name: "Unused"}); err != nil {
		t.Fatalf("create unassigned label: %v", err)
	}

	// Two recipes sharing one tag; DISTINCT must collapse it to one row.
	createTestRecipe(t, ctx, repo, user.ID, "Pancakes", []string{"Breakfast"}, nil)
	createTestRecipe(t, ctx, repo, user.ID, "Omelette", []string{"Breakfast"}, nil)

	assigned, err := repo.ListLabels(ctx, model.LabelKindTag, user.ID, true)
	if err != nil {
		t.Fatalf("list assigned labels: %v", err)
	}
	if len(assigned) != 1 {
		t.Fatalf("expected 1 assigned label, got %d", len(assigned))
	}
	if assigned[0].Name != "Breakfast" {
		t.Fatalf("expected Breakfast, got %q", assigned[0].Name)
	}

	all, err := repo.ListLabels(ctx, model.LabelKindTag, user.ID, false)
	if err != nil {
		t.Fatalf("list all labels: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 labels without the filter, got %d", len(all))
	}
}

func TestRepository_UpdateLabelName(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	user := createTestUser(t, ctx, repo, "rename")

	label := &model.Label{UserID: user.ID, Name: "Sumer"}
	if err := repo.CreateLabel(ctx, model.LabelKindTag, label); err != nil {
		t.Fatalf("create label: %v", err)
	}

	renamed, err := repo.UpdateLabelName(ctx, model.LabelKindTag, user.ID, label.ID, "Summer")
	if err != nil {
		t.Fatalf("rename label: %v", err)
	}
	if renamed.ID != label.ID {
		t.Fatalf("rename must not change the id: %d vs %d", renamed.ID, label.ID)
	}
	if renamed.Name != "Summer" {
		t.Fatalf("expected Summer, got %q", renamed.Name)
	}
}

func TestRepository_UpdateLabelName_Conflict(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	user := createTestUser(t, ctx, repo, "conflict")

	first := &model.Label{UserID: user.ID, Name: "Vegan"}
	if err := repo.CreateLabel(ctx, model.LabelKindTag, first); err != nil {
		t.Fatalf("create first label: %v", err)
	}
	second := &model.Label{UserID: user.ID, Name: "Dessert"}
	if err := repo.CreateLabel(ctx, model.LabelKindTag, second); err != nil {
		t.Fatalf("create second label: %v", err)
	}

	if _, err := repo.UpdateLabelName(ctx, model.LabelKindTag, user.ID, second.ID, "Vegan"); !errors.Is(err, ErrLabelExists) {
		t.Fatalf("expected ErrLabelExists, got %v", err)
	}
}

func TestRepository_UpdateLabelName_WrongOwner(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	owner := createTestUser(t, ctx, repo, "owner")
	intruder := createTestUser(t, ctx, repo, "intruder")

	label := &model.Label{UserID: owner.ID, Name: "Private"}
	if err := repo.CreateLabel(ctx, model.LabelKindTag, label); err != nil {
		t.Fatalf("create label: %v", err)
	}

	if _, err := repo.UpdateLabelName(ctx, model.LabelKindTag, intruder.ID, label.ID, "Stolen"); !errors.Is(err, ErrLabelNotFound) {
		t.Fatalf("expected ErrLabelNotFound, got %v", err)
	}

	labels, err := repo.ListLabels(ctx, model.LabelKindTag, owner.ID, false)
	if err != nil {
		t.Fatalf("list labels: %v", err)
	}
	if len(labels) != 1 || labels[0].Name != "Private" {
		t.Fatalf("label should be untouched, got %+v", labels)
	}
}

func TestRepository_DeleteLabel(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	user := createTestUser(t, ctx, repo, "delete")

	recipe := createTestRecipe(t, ctx, repo, user.ID, "Curry", []string{"Spicy"}, nil)
	if len(recipe.Tags) != 1 {
		t.Fatalf("expected 1 tag on recipe, got %d", len(recipe.Tags))
	}

	if err := repo.DeleteLabel(ctx, model.LabelKindTag, user.ID, recipe.Tags[0].ID); err != nil {
		t.Fatalf("delete label: %v", err)
	}

	// The link row cascades away; the recipe itself survives.
	got, err := repo.GetRecipeByID(ctx, user.ID, recipe.ID)
	if err != nil {
		t.Fatalf("get recipe after label delete: %v", err)
	}
	if len(got.Tags) != 0 {
		t.Fatalf("expected no tags after delete, got %d", len(got.Tags))
	}

	if err := repo.DeleteLabel(ctx, model.LabelKindTag, user.ID, recipe.Tags[0].ID); !errors.Is(err, ErrLabelNotFound) {
		t.Fatalf("expected ErrLabelNotFound on second delete, got %v", err)
	}
}

func TestRepository_DeleteLabel_WrongOwner(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	owner := createTestUser(t, ctx, repo, "owner")
	intruder := createTestUser(t, ctx, repo, "intruder")

	label := &model.Label{UserID: owner.ID, Name: "Keep"}
	if err := repo.CreateLabel(ctx, model.LabelKindIngredient, label); err != nil {
		t.Fatalf("create label: %v", err)
	}

	if err := repo.DeleteLabel(ctx, model.LabelKindIngredient, intruder.ID, label.ID); !errors.Is(err, ErrLabelNotFound) {
		t.Fatalf("expected ErrLabelNotFound, got %v", err)
	}
}

func TestRepository_GetOrCreateLabel_ReusesExistingRow(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	user := createTestUser(t, ctx, repo, "reuse")

	first, err := getOrCreateLabel(ctx, repo.Pool(), model.LabelKindTag, user.ID, "Vegan")
	if err != nil {
		t.Fatalf("first getOrCreateLabel: %v", err)
	}
	second, err := getOrCreateLabel(ctx, repo.Pool(), model.LabelKindTag, user.ID, "Vegan")
	if err != nil {
		t.Fatalf("second getOrCreateLabel: %v", err)
	}
	if first != second {
		t.Fatalf("expected the same row, got %d and %d", first, second)
	}

	labels, err := repo.ListLabels(ctx, model.LabelKindTag, user.ID, false)
	if err != nil {
		t.Fatalf("list labels: %v", err)
	}
	if len(labels) != 1 {
		t.Fatalf("expected 1 row, got %d", len(labels))
	}
}

func TestRepository_GetOrCreateLabel_IsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	user := createTestUser(t, ctx, repo, "casing")

	lower, err := getOrCreateLabel(ctx, repo.Pool(), model.LabelKindTag, user.ID, "vegan")
	if err != nil {
		t.Fatalf("lower-case getOrCreateLabel: %v", err)
	}
	upper, err := getOrCreateLabel(ctx, repo.Pool(), model.LabelKindTag, user.ID, "Vegan")
	if err != nil {
		t.Fatalf("upper-case getOrCreateLabel: %v", err)
	}
	if lower == upper {
		t.Fatalf("matching is case sensitive; expected two rows")
	}
}
