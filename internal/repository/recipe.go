package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"github.com/recipebox/recipebox/internal/model"
)

// Common errors for recipe repository operations.
var (
	ErrRecipeNotFound = errors.New("recipe not found")
)

// RecipeFilter defines filters for listing recipes. Ids within one list are
// inclusive-or; a recipe must match every non-empty list.
type RecipeFilter struct {
	UserID        int64
	TagIDs        []int64
	IngredientIDs []int64
}

// CreateRecipe inserts a recipe and reconciles its label lists in a single
// transaction. Submitted names that already exist for the owner are linked,
// not duplicated.
func (r *Repository) CreateRecipe(ctx context.Context, recipe *model.Recipe, tags, ingredients []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO recipes (user_id, title, description, price, duration_minutes)
		VALUES ($1, $2, $3, $4::numeric, $5)
		RETURNING id, price::text, created_at, updated_at
	`

	err = tx.QueryRow(ctx, query,
		recipe.UserID,
		recipe.Title,
		recipe.Description,
		recipe.Price,
		recipe.DurationMinutes,
	).Scan(&recipe.ID, &recipe.Price, &recipe.CreatedAt, &recipe.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create recipe: %w", err)
	}

	if err := replaceRecipeLabels(ctx, tx, model.LabelKindTag, recipe, tags); err != nil {
		return err
	}
	if err := replaceRecipeLabels(ctx, tx, model.LabelKindIngredient, recipe, ingredients); err != nil {
		return err
	}

	if err := attachLabels(ctx, tx, []*model.Recipe{recipe}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetRecipeByID retrieves one of the user's recipes with labels attached.
// Another user's recipe reports not found.
func (r *Repository) GetRecipeByID(ctx context.Context, userID, id int64) (*model.Recipe, error) {
	query := `
		SELECT id, user_id, title, description, price::text, duration_minutes, image_path, created_at, updated_at
		FROM recipes
		WHERE id = $1 AND user_id = $2
	`

	recipe, err := scanRecipe(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	if err := attachLabels(ctx, r.pool, []*model.Recipe{recipe}); err != nil {
		return nil, err
	}

	return recipe, nil
}

// ListRecipes retrieves the user's recipes, most recent first. Label
// filters join through the link tables; DISTINCT keeps a recipe from
// appearing once per matching link.
func (r *Repository) ListRecipes(ctx context.Context, filter RecipeFilter) ([]*model.Recipe, error) {
	query := `
		SELECT DISTINCT r.id, r.user_id, r.title, r.description, r.price::text, r.duration_minutes, r.image_path, r.created_at, r.updated_at
		FROM recipes r`

	if len(filter.TagIDs) > 0 {
		query += `
		JOIN recipe_tags rt ON rt.recipe_id = r.id`
	}
	if len(filter.IngredientIDs) > 0 {
		query += `
		JOIN recipe_ingredients ri ON ri.recipe_id = r.id`
	}

	query += `
		WHERE r.user_id = $1`
	args := []any{filter.UserID}
	argIndex := 2

	if len(filter.TagIDs) > 0 {
		query += fmt.Sprintf(" AND rt.tag_id = ANY($%d)", argIndex)
		args = append(args, pq.Array(filter.TagIDs))
		argIndex++
	}

	if len(filter.IngredientIDs) > 0 {
		query += fmt.Sprintf(" AND ri.ingredient_id = ANY($%d)", argIndex)
		args = append(args, pq.Array(filter.IngredientIDs))
		argIndex++
	}

	query += " ORDER BY r.id DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []*model.Recipe
	for rows.Next() {
		recipe, err := scanRecipeFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, recipe)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipes: %w", err)
	}

	if err := attachLabels(ctx, r.pool, recipes); err != nil {
		return nil, err
	}

	return recipes, nil
}

// UpdateRecipe persists scalar fields and, for each non-nil list,
// reconciles the label set. A nil list leaves that set untouched; a
// pointer to an empty slice clears it. Everything happens in one
// transaction, so readers never observe a half-replaced label set.
func (r *Repository) UpdateRecipe(ctx context.Context, recipe *model.Recipe, tags, ingredients *[]string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE recipes
		SET title = $3, description = $4, price = $5::numeric, duration_minutes = $6, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING price::text, updated_at
	`

	err = tx.QueryRow(ctx, query,
		recipe.ID,
		recipe.UserID,
		recipe.Title,
		recipe.Description,
		recipe.Price,
		recipe.DurationMinutes,
	).Scan(&recipe.Price, &recipe.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRecipeNotFound
		}
		return fmt.Errorf("failed to update recipe: %w", err)
	}

	if tags != nil {
		if err := replaceRecipeLabels(ctx, tx, model.LabelKindTag, recipe, *tags); err != nil {
			return err
		}
	}
	if ingredients != nil {
		if err := replaceRecipeLabels(ctx, tx, model.LabelKindIngredient, recipe, *ingredients); err != nil {
			return err
		}
	}

	if err := attachLabels(ctx, tx, []*model.Recipe{recipe}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteRecipe removes one of the user's recipes; link rows cascade away.
func (r *Repository) DeleteRecipe(ctx context.Context, userID, id int64) error {
	query := `DELETE FROM recipes WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrRecipeNotFound
	}

	return nil
}

// SetRecipeImage points the recipe at a new stored image.
func (r *Repository) SetRecipeImage(ctx context.Context, userID, id int64, path string) error {
	query := `
		UPDATE recipes
		SET image_path = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.pool.Exec(ctx, query, id, userID, path)
	if err != nil {
		return fmt.Errorf("failed to set recipe image: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrRecipeNotFound
	}

	return nil
}

// replaceRecipeLabels implements full-replacement semantics for one label
// kind: drop every existing link, then resolve each submitted name with
// getOrCreateLabel and link it. Duplicate names within one submission
// collapse via ON CONFLICT DO NOTHING on the link row.
func replaceRecipeLabels(ctx context.Context, q querier, kind model.LabelKind, recipe *model.Recipe, names []string) error {
	unlink := fmt.Sprintf(`DELETE FROM %s WHERE recipe_id = $1`, labelLinkTable(kind))
	if _, err := q.Exec(ctx, unlink, recipe.ID); err != nil {
		return fmt.Errorf("failed to clear recipe %s: %w", kind.Plural(), err)
	}

	link := fmt.Sprintf(`
		INSERT INTO %s (recipe_id, %s)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, labelLinkTable(kind), labelLinkColumn(kind))

	for _, name := range names {
		labelID, err := getOrCreateLabel(ctx, q, kind, recipe.UserID, name)
		if err != nil {
			return err
		}
		if _, err := q.Exec(ctx, link, recipe.ID, labelID); err != nil {
			return fmt.Errorf("failed to link %s: %w", kind, err)
		}
	}

	return nil
}

// attachLabels loads tags and ingredients for a batch of recipes with one
// query per kind.
func attachLabels(ctx context.Context, q querier, recipes []*model.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(recipes))
	byID := make(map[int64]*model.Recipe, len(recipes))
	for _, recipe := range recipes {
		recipe.Tags = []model.Label{}
		recipe.Ingredients = []model.Label{}
		ids = append(ids, recipe.ID)
		byID[recipe.ID] = recipe
	}

	for _, kind := range []model.LabelKind{model.LabelKindTag, model.LabelKindIngredient} {
		query := fmt.Sprintf(`
			SELECT rl.recipe_id, l.id, l.user_id, l.name, l.created_at
			FROM %s rl
			JOIN %s l ON l.id = rl.%s
			WHERE rl.recipe_id = ANY($1)
			ORDER BY l.id
		`, labelLinkTable(kind), labelTable(kind), labelLinkColumn(kind))

		rows, err := q.Query(ctx, query, pq.Array(ids))
		if err != nil {
			return fmt.Errorf("failed to load recipe %s: %w", kind.Plural(), err)
		}

		for rows.Next() {
			var recipeID int64
			var label model.Label
			if err := rows.Scan(&recipeID, &label.ID, &label.UserID, &label.Name, &label.CreatedAt); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan recipe %s: %w", kind, err)
			}

			recipe, ok := byID[recipeID]
			if !ok {
				continue
			}
			if kind == model.LabelKindTag {
				recipe.Tags = append(recipe.Tags, label)
			} else {
				recipe.Ingredients = append(recipe.Ingredients, label)
			}
		}
		rows.Close()

		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating recipe %s: %w", kind.Plural(), err)
		}
	}

	return nil
}

// scanRecipe scans a single row into a Recipe model.
func scanRecipe(row pgx.Row) (*model.Recipe, error) {
	var recipe model.Recipe
	err := row.Scan(
		&recipe.ID,
		&recipe.UserID,
		&recipe.Title,
		&recipe.Description,
		&recipe.Price,
		&recipe.DurationMinutes,
		&recipe.ImagePath,
		&recipe.CreatedAt,
		&recipe.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// scanRecipeFromRows scans a row from pgx.Rows into a Recipe model.
func scanRecipeFromRows(rows pgx.Rows) (*model.Recipe, error) {
	var recipe model.Recipe
	err := rows.Scan(
		&recipe.ID,
		&recipe.UserID,
		&recipe.Title,
		&recipe.Description,
		&recipe.Price,
		&recipe.DurationMinutes,
		&recipe.ImagePath,
		&recipe.CreatedAt,
		&recipe.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}
