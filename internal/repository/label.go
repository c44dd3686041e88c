package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/recipebox/recipebox/internal/model"
)

// Common errors for label repository operations.
var (
	ErrLabelNotFound = errors.New("label not found")
	ErrLabelExists   = errors.New("label name already exists")
)

// labelTable maps a label kind to its table. The set is closed, so the
// names below are the only strings ever interpolated into label queries.
func labelTable(kind model.LabelKind) string {
	if kind == model.LabelKindIngredient {
		return "ingredients"
	}
	return "tags"
}

// labelLinkTable maps a label kind to its recipe link table.
func labelLinkTable(kind model.LabelKind) string {
	if kind == model.LabelKindIngredient {
		return "recipe_ingredients"
	}
	return "recipe_tags"
}

// labelLinkColumn maps a label kind to its column in the link table.
func labelLinkColumn(kind model.LabelKind) string {
	if kind == model.LabelKindIngredient {
		return "ingredient_id"
	}
	return "tag_id"
}

// CreateLabel inserts a new label for a user.
func (r *Repository) CreateLabel(ctx context.Context, kind model.LabelKind, label *model.Label) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, name)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, labelTable(kind))

	err := r.pool.QueryRow(ctx, query, label.UserID, label.Name).
		Scan(&label.ID, &label.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrLabelExists
		}
		return fmt.Errorf("failed to create %s: %w", kind, err)
	}

	return nil
}

// ListLabels retrieves a user's labels ordered by name descending. With
// assignedOnly set, only labels linked to at least one of the user's
// recipes are returned, each exactly once.
func (r *Repository) ListLabels(ctx context.Context, kind model.LabelKind, userID int64, assignedOnly bool) ([]*model.Label, error) {
	var query string
	if assignedOnly {
		query = fmt.Sprintf(`
			SELECT DISTINCT l.id, l.user_id, l.name, l.created_at
			FROM %s l
			JOIN %s rl ON rl.%s = l.id
			WHERE l.user_id = $1
			ORDER BY l.name DESC
		`, labelTable(kind), labelLinkTable(kind), labelLinkColumn(kind))
	} else {
		query = fmt.Sprintf(`
			SELECT id, user_id, name, created_at
			FROM %s
			WHERE user_id = $1
			ORDER BY name DESC
		`, labelTable(kind))
	}

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind.Plural(), err)
	}
	defer rows.Close()

	var labels []*model.Label
	for rows.Next() {
		label, err := scanLabelFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", kind, err)
		}
		labels = append(labels, label)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", kind.Plural(), err)
	}

	return labels, nil
}

// UpdateLabelName renames a label. The lookup is owner-scoped; a label that
// exists but belongs to someone else reports not found.
func (r *Repository) UpdateLabelName(ctx context.Context, kind model.LabelKind, userID, id int64, name string) (*model.Label, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $3
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, name, created_at
	`, labelTable(kind))

	label, err := scanLabel(r.pool.QueryRow(ctx, query, id, userID, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLabelNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrLabelExists
		}
		return nil, fmt.Errorf("failed to rename %s: %w", kind, err)
	}

	return label, nil
}

// DeleteLabel removes a label; link rows cascade away with it.
func (r *Repository) DeleteLabel(ctx context.Context, kind model.LabelKind, userID, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, labelTable(kind))

	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}

	if result.RowsAffected() == 0 {
		return ErrLabelNotFound
	}

	return nil
}

// getOrCreateLabel resolves a name to a label id for the given owner,
// creating the row when it does not exist yet. ON CONFLICT DO NOTHING
// returns no row when another writer got there first, in which case the
// loser re-reads inside the same transaction. Exactly one row per
// (owner, name) survives concurrent calls.
func getOrCreateLabel(ctx context.Context, q querier, kind model.LabelKind, userID int64, name string) (int64, error) {
	insert := fmt.Sprintf(`
		INSERT INTO %s (user_id, name)
		VALUES ($1, $2)
		ON CONFLICT (user_id, name) DO NOTHING
		RETURNING id
	`, labelTable(kind))

	var id int64
	err := q.QueryRow(ctx, insert, userID, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to create %s: %w", kind, err)
	}

	// Lost the insert race or the label predates this write; look it up.
	sel := fmt.Sprintf(`SELECT id FROM %s WHERE user_id = $1 AND name = $2`, labelTable(kind))
	if err := q.QueryRow(ctx, sel, userID, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to resolve %s %q: %w", kind, name, err)
	}

	return id, nil
}

// scanLabel scans a single row into a Label model.
func scanLabel(row pgx.Row) (*model.Label, error) {
	var label model.Label
	err := row.Scan(
		&label.ID,
		&label.UserID,
		&label.Name,
		&label.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &label, nil
}

// scanLabelFromRows scans a row from pgx.Rows into a Label model.
func scanLabelFromRows(rows pgx.Rows) (*model.Label, error) {
	var label model.Label
	err := rows.Scan(
		&label.ID,
		&label.UserID,
		&label.Name,
		&label.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &label, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	// PostgreSQL error code 23505 is unique_violation
	return err != nil && (contains(err.Error(), "23505") || contains(err.Error(), "unique"))
}

// contains checks if a string contains a substring.
func contains(s, substr string) bool {
	return len(s) >= len(substr) && searchString(s, substr)
}

// searchString is a simple string search.
func searchString(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
