package service

import (
	"context"

	"github.com/communitysquad/eventhub/internal/model"
)

// CategoryService owns category CRUD. Removal is a soft delete.
type CategoryService struct {
	categories CategoryStore
}

// NewCategoryService constructs a CategoryService.
func NewCategoryService(categories CategoryStore) *CategoryService {
	return &CategoryService{categories: categories}
}

// List returns categories in Active status.
func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	return s.categories.ListActive(ctx)
}

// Get returns a single category by id.
func (s *CategoryService) Get(ctx context.Context, id int64) (*model.Category, error) {
	return s.categories.GetByID(ctx, id)
}

// Create inserts a new category.
func (s *CategoryService) Create(ctx context.Context, req model.CreateCategoryRequest) (*model.Category, error) {
	category := &model.Category{Title: req.Title, Color: req.Color}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Update replaces title and color of an existing category.
func (s *CategoryService) Update(ctx context.Context, id int64, req model.CreateCategoryRequest) (*model.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Title = req.Title
	category.Color = req.Color
	if err := s.categories.Save(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Remove soft-deletes a category; its events keep referencing it.
func (s *CategoryService) Remove(ctx context.Context, id int64) error {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return err
	}
	category.Status = model.StatusInactive
	return s.categories.Save(ctx, category)
}
