package service

import (
	"context"
	"math"

	"go.uber.org/zap"

	"expense-api/internal/domain"
	"expense-api/internal/repository"
)

// BudgetService define topes mensuales por categoria.
type BudgetService struct {
	logger  *zap.Logger
	budgets repository.BudgetRepository
}

func NewBudgetService(logger *zap.Logger, budgets repository.BudgetRepository) *BudgetService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BudgetService{logger: logger, budgets: budgets}
}

// List devuelve todas las categorias del usuario, con Amount nil si no tienen tope.
func (s *BudgetService) List(ctx context.Context, userID string) ([]domain.Budget, error) {
	return s.budgets.List(ctx, userID)
}

func (s *BudgetService) Upsert(ctx context.Context, userID, categoryID string, amount float64) error {
	if categoryID == "" {
		return fieldError("category_id", "Category is required")
	}
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fieldError("amount", "Amount must be 0 or greater")
	}
	if !isUUID(categoryID) {
		return ErrNotFound
	}
	ok, err := s.budgets.Upsert(ctx, userID, categoryID, amount)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Delete es idempotente: informa si habia un tope que borrar.
func (s *BudgetService) Delete(ctx context.Context, userID, categoryID string) (bool, error) {
	if !isUUID(categoryID) {
		return false, nil
	}
	return s.budgets.Delete(ctx, userID, categoryID)
}
