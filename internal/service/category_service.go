package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"expense-api/internal/domain"
	"expense-api/internal/repository"
)

const (
	maxCategoryNameLength  = 60
	maxCategoryColorLength = 16
)

// CategoryService administra las categorias de cada usuario.
type CategoryService struct {
	logger     *zap.Logger
	categories repository.CategoryRepository
}

func NewCategoryService(logger *zap.Logger, categories repository.CategoryRepository) *CategoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{logger: logger, categories: categories}
}

type CategoryInput struct {
	Name  string
	Color *string
}

func (s *CategoryService) List(ctx context.Context, userID string) ([]domain.Category, error) {
	return s.categories.List(ctx, userID)
}

func (s *CategoryService) Create(ctx context.Context, userID string, input CategoryInput) (domain.Category, error) {
	name := strings.TrimSpace(input.Name)
	color := normalizeColor(input.Color)

	verr := &ValidationError{}
	verr.Merge(validateCategoryName(name))
	if color != nil && utf8.RuneCountInString(*color) > maxCategoryColorLength {
		verr.Add("color", "Color is too long")
	}
	if err := verr.OrNil(); err != nil {
		return domain.Category{}, err
	}

	exists, err := s.categories.ExistsByName(ctx, userID, name)
	if err != nil {
		return domain.Category{}, err
	}
	if exists {
		return domain.Category{}, ErrCategoryExists
	}

	category := domain.Category{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Color:     color,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.categories.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.Category{}, ErrCategoryExists
		}
		return domain.Category{}, err
	}
	return category, nil
}

func (s *CategoryService) Rename(ctx context.Context, userID, id, name string) error {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return err
	}
	if !isUUID(id) {
		return ErrNotFound
	}
	ok, err := s.categories.Rename(ctx, userID, id, name)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrCategoryExists
		}
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Delete desvincula los gastos de la categoria y borra su presupuesto antes de eliminarla.
func (s *CategoryService) Delete(ctx context.Context, userID, id string) error {
	if !isUUID(id) {
		return ErrNotFound
	}
	ok, err := s.categories.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func validateCategoryName(name string) error {
	switch n := utf8.RuneCountInString(name); {
	case n == 0:
		return fieldError("name", "Name is required")
	case n > maxCategoryNameLength:
		return fieldError("name", "Name is too long")
	}
	return nil
}

func normalizeColor(color *string) *string {
	if color == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*color)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
