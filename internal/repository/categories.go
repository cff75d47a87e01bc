package repository

import (
	"database/sql"
	"fmt"

	"github.com/dkovalev/transactions-api/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// FindCategoryByTitle retrieves a category by exact title.
// Returns (nil, nil) when no category matches.
func (r *Repository) FindCategoryByTitle(title string) (*models.Category, error) {
	category := &models.Category{}
	query := `
		SELECT id, title, created_at, updated_at
		FROM categories
		WHERE title = $1`
	err := r.db.QueryRow(query, title).
		Scan(&category.ID, &category.Title, &category.CreatedAt, &category.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return category, nil
}

// FindCategoriesByTitles retrieves all categories whose title is in titles
func (r *Repository) FindCategoriesByTitles(titles []string) ([]models.Category, error) {
	query := `
		SELECT id, title, created_at, updated_at
		FROM categories
		WHERE title = ANY($1)`
	rows, err := r.db.Query(query, pq.Array(titles))
	if err != nil {
		return nil, fmt.Errorf("failed to find categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Title, &category.CreatedAt, &category.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}
	return categories, nil
}

// CreateCategory creates a new category in the database
func (r *Repository) CreateCategory(category *models.Category) error {
	query := `
		INSERT INTO categories (id, title, created_at, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(query, uuid.New().String(), category.Title).
		Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// CreateCategories creates all given categories in a single statement.
// The slice is updated in place with generated ids and timestamps.
func (r *Repository) CreateCategories(categories []models.Category) error {
	if len(categories) == 0 {
		return nil
	}

	query := `
		INSERT INTO categories (id, title, created_at, updated_at)
		SELECT unnest($1::uuid[]), unnest($2::text[]), CURRENT_TIMESTAMP, CURRENT_TIMESTAMP
		RETURNING id, created_at, updated_at`

	ids := make([]string, len(categories))
	titles := make([]string, len(categories))
	for i, c := range categories {
		ids[i] = uuid.New().String()
		titles[i] = c.Title
	}

	rows, err := r.db.Query(query, pq.Array(ids), pq.Array(titles))
	if err != nil {
		return fmt.Errorf("failed to create categories: %w", err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		if i >= len(categories) {
			return fmt.Errorf("unexpected extra row creating categories")
		}
		c := &categories[i]
		if err := rows.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan created category: %w", err)
		}
		i++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read created categories: %w", err)
	}
	return nil
}
