package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"expense-api/internal/domain"
	"expense-api/internal/repository"
)

const maxGoalNameLength = 80

// GoalService administra metas de ahorro.
type GoalService struct {
	logger *zap.Logger
	goals  repository.GoalRepository
}

func NewGoalService(logger *zap.Logger, goals repository.GoalRepository) *GoalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GoalService{logger: logger, goals: goals}
}

type GoalInput struct {
	Name         string
	TargetAmount float64
	TargetDate   *string
}

func (s *GoalService) List(ctx context.Context, userID string) ([]domain.Goal, error) {
	return s.goals.List(ctx, userID)
}

func (s *GoalService) Create(ctx context.Context, userID string, input GoalInput) (domain.Goal, error) {
	goal, err := buildGoal(input)
	if err != nil {
		return domain.Goal{}, err
	}
	goal.ID = uuid.NewString()
	goal.UserID = userID
	goal.CreatedAt = time.Now().UTC()
	if err := s.goals.Create(ctx, goal); err != nil {
		return domain.Goal{}, err
	}
	return goal, nil
}

func (s *GoalService) Update(ctx context.Context, userID, id string, input GoalInput) (domain.Goal, error) {
	goal, err := buildGoal(input)
	if err != nil {
		return domain.Goal{}, err
	}
	if !isUUID(id) {
		return domain.Goal{}, ErrNotFound
	}
	goal.ID = id
	goal.UserID = userID
	ok, err := s.goals.Update(ctx, goal)
	if err != nil {
		return domain.Goal{}, err
	}
	if !ok {
		return domain.Goal{}, ErrNotFound
	}
	return goal, nil
}

func (s *GoalService) Delete(ctx context.Context, userID, id string) error {
	if !isUUID(id) {
		return ErrNotFound
	}
	ok, err := s.goals.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func buildGoal(input GoalInput) (domain.Goal, error) {
	name := strings.TrimSpace(input.Name)
	verr := &ValidationError{}
	switch n := utf8.RuneCountInString(name); {
	case n == 0:
		verr.Add("name", "Name is required")
	case n > maxGoalNameLength:
		verr.Add("name", "Name is too long")
	}
	if !(input.TargetAmount > 0) {
		verr.Add("target_amount", "Target amount must be greater than 0")
	}

	var targetDate *time.Time
	if input.TargetDate != nil && strings.TrimSpace(*input.TargetDate) != "" {
		d, err := parseDate("target_date", *input.TargetDate)
		if err != nil {
			verr.Merge(err)
		} else {
			targetDate = &d
		}
	}
	if err := verr.OrNil(); err != nil {
		return domain.Goal{}, err
	}
	return domain.Goal{
		Name:         name,
		TargetAmount: input.TargetAmount,
		TargetDate:   targetDate,
	}, nil
}
