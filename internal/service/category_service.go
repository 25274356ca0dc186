package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/amabee/property-rental/internal/domain"
	"github.com/amabee/property-rental/internal/repository"

	"go.uber.org/zap"
)

// CategoryService category CRUD
type CategoryService struct {
	repo   repository.CategoriesRepository
	logger *zap.Logger
}

func NewCategoryService(repo repository.CategoriesRepository, logger *zap.Logger) *CategoryService {
	return &CategoryService{repo: repo, logger: logger}
}

// CreateCategoryRequest createCategory payload
type CreateCategoryRequest struct {
	Name string `json:"name"`
}

func (r *CreateCategoryRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return required("name")
	}
	return nil
}

// UpdateCategoryRequest updateCategory payload
type UpdateCategoryRequest struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (r *UpdateCategoryRequest) Validate() error {
	if r.ID <= 0 {
		return required("id")
	}
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return required("name")
	}
	return nil
}

func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	cats, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return cats, nil
}

func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (int64, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}
	id, err := s.repo.CreateCategory(ctx, req.Name)
	if err != nil {
		return 0, err
	}
	s.logger.Info("Category created", zap.Int64("category_id", id), zap.String("name", req.Name))
	return id, nil
}

func (s *CategoryService) Update(ctx context.Context, req UpdateCategoryRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return s.repo.UpdateCategory(ctx, domain.Category{ID: req.ID, Name: req.Name})
}

func (s *CategoryService) Delete(ctx context.Context, req IDRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if err := s.repo.DeleteCategory(ctx, req.ID); err != nil {
		return err
	}
	s.logger.Info("Category deleted", zap.Int64("category_id", req.ID))
	return nil
}

// IDRequest payload of every delete operation
type IDRequest struct {
	ID int64 `json:"id"`
}

func (r *IDRequest) Validate() error {
	if r.ID <= 0 {
		return required("id")
	}
	return nil
}
