package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"expense-api/internal/domain"
	"expense-api/internal/repository"
)

const (
	maxNoteLength       = 280
	defaultExpenseLimit = 100
	maxExpenseLimit     = 500
)

// ExpenseService registra y consulta gastos.
type ExpenseService struct {
	logger     *zap.Logger
	expenses   repository.ExpenseRepository
	categories repository.CategoryRepository
}

func NewExpenseService(logger *zap.Logger, expenses repository.ExpenseRepository, categories repository.CategoryRepository) *ExpenseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpenseService{logger: logger, expenses: expenses, categories: categories}
}

type ExpenseInput struct {
	Amount     float64
	IncurredOn string
	CategoryID *string
	Note       string
}

// ExpensePatchInput distingue campos ausentes (nil) de presentes.
// ClearCategory indica un category_id explicito en null.
type ExpensePatchInput struct {
	Amount        *float64
	IncurredOn    *string
	CategoryID    *string
	ClearCategory bool
	Note          *string
}

type ExpenseQuery struct {
	From  string
	To    string
	Limit int
}

func (s *ExpenseService) List(ctx context.Context, userID string, query ExpenseQuery) ([]domain.Expense, error) {
	verr := &ValidationError{}
	from, errFrom := time.Parse(domain.DateLayout, strings.TrimSpace(query.From))
	to, errTo := time.Parse(domain.DateLayout, strings.TrimSpace(query.To))
	if errFrom != nil || errTo != nil {
		verr.Add("query", "from/to must be YYYY-MM-DD")
	} else if from.After(to) {
		verr.Add("query", "from must not be after to")
	}

	limit := query.Limit
	if limit == 0 {
		limit = defaultExpenseLimit
	}
	if limit < 1 || limit > maxExpenseLimit {
		verr.Add("limit", "Limit must be between 1 and 500")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	return s.expenses.List(ctx, userID, domain.ExpenseFilter{From: from, To: to, Limit: limit})
}

func (s *ExpenseService) Create(ctx context.Context, userID string, input ExpenseInput) (domain.Expense, error) {
	verr := &ValidationError{}
	verr.Merge(validateAmount(input.Amount))
	incurredOn, err := parseDate("incurred_on", input.IncurredOn)
	verr.Merge(err)
	verr.Merge(validateNote(input.Note))

	var categoryID *string
	if input.CategoryID != nil && strings.TrimSpace(*input.CategoryID) != "" {
		id := strings.TrimSpace(*input.CategoryID)
		if err := s.checkCategory(ctx, userID, id); err != nil {
			if !errors.Is(err, ErrInvalidInput) {
				return domain.Expense{}, err
			}
			verr.Merge(err)
		}
		categoryID = &id
	}
	if err := verr.OrNil(); err != nil {
		return domain.Expense{}, err
	}

	expense := domain.Expense{
		ID:         uuid.NewString(),
		UserID:     userID,
		CategoryID: categoryID,
		Amount:     input.Amount,
		Note:       strings.TrimSpace(input.Note),
		IncurredOn: incurredOn,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.expenses.Create(ctx, expense); err != nil {
		return domain.Expense{}, err
	}
	return expense, nil
}

// Update aplica solo los campos presentes. Un patch vacio sobre un gasto propio no hace nada.
func (s *ExpenseService) Update(ctx context.Context, userID, id string, input ExpensePatchInput) error {
	if !isUUID(id) {
		return ErrNotFound
	}

	var patch domain.ExpensePatch
	verr := &ValidationError{}
	if input.Amount != nil {
		verr.Merge(validateAmount(*input.Amount))
		patch.Amount = input.Amount
	}
	if input.IncurredOn != nil {
		d, err := parseDate("incurred_on", *input.IncurredOn)
		verr.Merge(err)
		patch.IncurredOn = &d
	}
	if input.Note != nil {
		note := strings.TrimSpace(*input.Note)
		verr.Merge(validateNote(note))
		patch.Note = &note
	}
	switch {
	case input.ClearCategory:
		patch.ClearCategory = true
	case input.CategoryID != nil:
		categoryID := strings.TrimSpace(*input.CategoryID)
		if err := s.checkCategory(ctx, userID, categoryID); err != nil {
			if !errors.Is(err, ErrInvalidInput) {
				return err
			}
			verr.Merge(err)
		}
		patch.CategoryID = &categoryID
	}
	if err := verr.OrNil(); err != nil {
		return err
	}

	ok, err := s.expenses.Update(ctx, userID, id, patch)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *ExpenseService) Delete(ctx context.Context, userID, id string) error {
	if !isUUID(id) {
		return ErrNotFound
	}
	ok, err := s.expenses.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// checkCategory exige que la categoria exista y pertenezca al usuario.
func (s *ExpenseService) checkCategory(ctx context.Context, userID, categoryID string) error {
	if !isUUID(categoryID) {
		return fieldError("category_id", "Invalid category id")
	}
	if _, err := s.categories.GetByID(ctx, userID, categoryID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fieldError("category_id", "Invalid category id")
		}
		return err
	}
	return nil
}

func validateAmount(amount float64) error {
	if !(amount > 0) {
		return fieldError("amount", "Amount must be greater than 0")
	}
	return nil
}

func validateNote(note string) error {
	if utf8.RuneCountInString(note) > maxNoteLength {
		return fieldError("note", "Note too long")
	}
	return nil
}

func parseDate(field, raw string) (time.Time, error) {
	d, err := time.Parse(domain.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fieldError(field, "Date must be YYYY-MM-DD")
	}
	return d, nil
}
