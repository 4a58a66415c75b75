package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"expense-api/internal/domain"
	"expense-api/internal/repository"
)

const monthLayout = "2006-01"

const uncategorizedName = "Uncategorized"

// DashboardService arma el resumen mensual de ingreso, gasto, presupuestos y metas.
type DashboardService struct {
	logger   *zap.Logger
	users    repository.UserRepository
	expenses repository.ExpenseRepository
	budgets  repository.BudgetRepository
	goals    repository.GoalRepository
	now      func() time.Time
}

func NewDashboardService(
	logger *zap.Logger,
	users repository.UserRepository,
	expenses repository.ExpenseRepository,
	budgets repository.BudgetRepository,
	goals repository.GoalRepository,
) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		logger:   logger,
		users:    users,
		expenses: expenses,
		budgets:  budgets,
		goals:    goals,
		now:      time.Now,
	}
}

// Summary calcula el resumen de month (YYYY-MM). Vacio usa el mes UTC actual.
func (s *DashboardService) Summary(ctx context.Context, userID, month string) (domain.MonthSummary, error) {
	start, err := s.parseMonth(month)
	if err != nil {
		return domain.MonthSummary{}, err
	}
	end := start.AddDate(0, 1, -1)

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.MonthSummary{}, ErrNotFound
		}
		return domain.MonthSummary{}, err
	}
	totals, err := s.expenses.TotalsByCategory(ctx, userID, start, end)
	if err != nil {
		return domain.MonthSummary{}, err
	}
	budgets, err := s.budgets.List(ctx, userID)
	if err != nil {
		return domain.MonthSummary{}, err
	}
	goals, err := s.goals.List(ctx, userID)
	if err != nil {
		return domain.MonthSummary{}, err
	}

	summary := domain.MonthSummary{
		Month:         start.Format(monthLayout),
		Currency:      user.Currency,
		MonthlyIncome: user.MonthlyIncome,
		Categories:    buildCategorySpend(budgets, totals),
		Goals:         []domain.GoalProgress{},
	}
	for _, t := range totals {
		summary.TotalSpent += t.Total
	}
	summary.TotalSpent = round2(summary.TotalSpent)
	summary.Leftover = round2(user.MonthlyIncome - summary.TotalSpent)
	summary.OverBudget = summary.TotalSpent > user.MonthlyIncome
	if user.MonthlyIncome > 0 {
		summary.UsagePct = round2(clamp(summary.TotalSpent/user.MonthlyIncome*100, 0, 100))
	}

	remaining := math.Max(0, summary.Leftover)
	for _, g := range goals {
		summary.Goals = append(summary.Goals, goalProgress(g, remaining, user.MonthlyIncome))
	}
	return summary, nil
}

func (s *DashboardService) parseMonth(month string) (time.Time, error) {
	month = strings.TrimSpace(month)
	if month == "" {
		now := s.now().UTC()
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	}
	start, err := time.Parse(monthLayout, month)
	if err != nil {
		return time.Time{}, fieldError("month", "Month must be YYYY-MM")
	}
	return start, nil
}

// buildCategorySpend cruza los gastos con todas las categorias y agrega un grupo sin categoria si corresponde.
func buildCategorySpend(budgets []domain.Budget, totals []repository.CategoryTotal) []domain.CategorySpend {
	spentByCategory := make(map[string]float64, len(totals))
	var uncategorized float64
	for _, t := range totals {
		if t.CategoryID == nil {
			uncategorized += t.Total
			continue
		}
		spentByCategory[*t.CategoryID] += t.Total
	}

	out := make([]domain.CategorySpend, 0, len(budgets)+1)
	for _, b := range budgets {
		id := b.CategoryID
		spend := domain.CategorySpend{
			CategoryID:   &id,
			CategoryName: b.CategoryName,
			Spent:        round2(spentByCategory[id]),
			Budget:       b.Amount,
		}
		if b.Amount != nil && *b.Amount > 0 {
			pct := round2(spend.Spent / *b.Amount * 100)
			spend.UsagePct = &pct
			spend.OverBudget = spend.Spent > *b.Amount
		}
		out = append(out, spend)
	}
	if uncategorized > 0 {
		out = append(out, domain.CategorySpend{
			CategoryName: uncategorizedName,
			Spent:        round2(uncategorized),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Spent > out[j].Spent
	})
	return out
}

func goalProgress(goal domain.Goal, remaining, income float64) domain.GoalProgress {
	progress := domain.GoalProgress{
		GoalID:       goal.ID,
		Name:         goal.Name,
		TargetAmount: goal.TargetAmount,
		Remaining:    round2(remaining),
		OnTrack:      remaining >= goal.TargetAmount,
		ToGoal:       round2(math.Max(0, goal.TargetAmount-remaining)),
		Cushion:      round2(math.Max(0, remaining-goal.TargetAmount)),
	}
	if income > 0 {
		progress.GoalPctOfIncome = round2(goal.TargetAmount / income * 100)
	}
	return progress
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
