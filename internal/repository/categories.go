package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/communitysquad/eventhub/internal/model"
)

// CategoryRepository handles persistence for event categories.
type CategoryRepository struct {
	db *pgxpool.Pool
}

// NewCategoryRepository constructs a CategoryRepository.
func NewCategoryRepository(db *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts a new category in Active status.
func (r *CategoryRepository) Create(ctx context.Context, c *model.Category) error {
	c.Status = model.StatusActive
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	err := r.db.QueryRow(ctx,
		`INSERT INTO categories (title, color, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		c.Title, c.Color, c.Status, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// Save persists title, color and status of an existing category.
func (r *CategoryRepository) Save(ctx context.Context, c *model.Category) error {
	c.UpdatedAt = time.Now().UTC()
	tag, err := r.db.Exec(ctx,
		`UPDATE categories SET title = $1, color = $2, status = $3, updated_at = $4 WHERE id = $5`,
		c.Title, c.Color, c.Status, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID returns a category by primary key or ErrNotFound, regardless of
// status.
func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	var c model.Category
	err := r.db.QueryRow(ctx,
		`SELECT id, title, color, status, created_at, updated_at
		 FROM categories WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Title, &c.Color, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

// ListActive returns all categories in Active status.
func (r *CategoryRepository) ListActive(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, color, status, created_at, updated_at
		 FROM categories
		 WHERE status = $1
		 ORDER BY id`,
		model.StatusActive,
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Title, &c.Color, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// SummariesByIDs resolves the trimmed category shape for a set of ids, used
// to assemble event listings.
func (r *CategoryRepository) SummariesByIDs(ctx context.Context, ids []int64) (map[int64]model.CategorySummary, error) {
	summaries := make(map[int64]model.CategorySummary, len(ids))
	if len(ids) == 0 {
		return summaries, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, title, color FROM categories WHERE id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("get category summaries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s model.CategorySummary
		if err := rows.Scan(&s.ID, &s.Title, &s.Color); err != nil {
			return nil, fmt.Errorf("scan category summary: %w", err)
		}
		summaries[s.ID] = s
	}
	return summaries, rows.Err()
}
