package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"expense-api/internal/domain"
	"expense-api/internal/events"
	"expense-api/internal/repository"
)

type mockUserRepo struct {
	usersByID    map[string]domain.User
	usersByEmail map[string]string
	usersByAuth  map[string]string
	createErr    error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[string]domain.User),
		usersByEmail: make(map[string]string),
		usersByAuth:  make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	key := strings.ToLower(user.Email)
	if _, exists := m.usersByEmail[key]; exists {
		return repository.ErrDuplicate
	}
	m.usersByID[user.ID] = user
	m.usersByEmail[key] = user.ID
	if user.AuthProvider != "" && user.AuthSubject != "" {
		m.usersByAuth[user.AuthProvider+"|"+user.AuthSubject] = user.ID
	}
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	id, ok := m.usersByEmail[strings.ToLower(email)]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(ctx, id)
}

func (m *mockUserRepo) GetByAuth(ctx context.Context, provider, subject string) (domain.User, error) {
	id, ok := m.usersByAuth[provider+"|"+subject]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(ctx, id)
}

func (m *mockUserRepo) LinkOAuth(_ context.Context, id, provider, subject string) error {
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.AuthProvider = provider
	user.AuthSubject = subject
	m.usersByID[id] = user
	m.usersByAuth[provider+"|"+subject] = id
	return nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.PasswordHash = passwordHash
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) UpdateProfile(_ context.Context, id, displayName string, monthlyIncome float64, currency string) error {
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.DisplayName = displayName
	user.MonthlyIncome = monthlyIncome
	user.Currency = currency
	m.usersByID[id] = user
	return nil
}

type mockCategoryRepo struct {
	items         map[string]domain.Category
	createManyErr error
	onDelete      func(userID, id string)
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{items: make(map[string]domain.Category)}
}

func (m *mockCategoryRepo) List(_ context.Context, userID string) ([]domain.Category, error) {
	out := []domain.Category{}
	for _, c := range m.items {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (m *mockCategoryRepo) GetByID(_ context.Context, userID, id string) (domain.Category, error) {
	c, ok := m.items[id]
	if !ok || c.UserID != userID {
		return domain.Category{}, pgx.ErrNoRows
	}
	return c, nil
}

func (m *mockCategoryRepo) ExistsByName(_ context.Context, userID, name string) (bool, error) {
	for _, c := range m.items {
		if c.UserID == userID && strings.EqualFold(c.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCategoryRepo) Create(ctx context.Context, category domain.Category) error {
	if exists, _ := m.ExistsByName(ctx, category.UserID, category.Name); exists {
		return repository.ErrDuplicate
	}
	m.items[category.ID] = category
	return nil
}

func (m *mockCategoryRepo) CreateMany(ctx context.Context, categories []domain.Category) error {
	if m.createManyErr != nil {
		return m.createManyErr
	}
	for _, c := range categories {
		if err := m.Create(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockCategoryRepo) Rename(_ context.Context, userID, id, name string) (bool, error) {
	c, ok := m.items[id]
	if !ok || c.UserID != userID {
		return false, nil
	}
	for otherID, other := range m.items {
		if otherID != id && other.UserID == userID && strings.EqualFold(other.Name, name) {
			return false, repository.ErrDuplicate
		}
	}
	c.Name = name
	m.items[id] = c
	return true, nil
}

func (m *mockCategoryRepo) Delete(_ context.Context, userID, id string) (bool, error) {
	c, ok := m.items[id]
	if !ok || c.UserID != userID {
		return false, nil
	}
	if m.onDelete != nil {
		m.onDelete(userID, id)
	}
	delete(m.items, id)
	return true, nil
}

type mockExpenseRepo struct {
	items  map[string]domain.Expense
	totals []repository.CategoryTotal

	lastFilter domain.ExpenseFilter
	lastPatch  domain.ExpensePatch
	lastFrom   time.Time
	lastTo     time.Time
}

func newMockExpenseRepo() *mockExpenseRepo {
	return &mockExpenseRepo{items: make(map[string]domain.Expense)}
}

func (m *mockExpenseRepo) List(_ context.Context, userID string, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	m.lastFilter = filter
	out := []domain.Expense{}
	for _, e := range m.items {
		if e.UserID == userID && !e.IncurredOn.Before(filter.From) && !e.IncurredOn.After(filter.To) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockExpenseRepo) Create(_ context.Context, expense domain.Expense) error {
	m.items[expense.ID] = expense
	return nil
}

func (m *mockExpenseRepo) Update(_ context.Context, userID, id string, patch domain.ExpensePatch) (bool, error) {
	e, ok := m.items[id]
	if !ok || e.UserID != userID {
		return false, nil
	}
	m.lastPatch = patch
	if patch.Amount != nil {
		e.Amount = *patch.Amount
	}
	if patch.IncurredOn != nil {
		e.IncurredOn = *patch.IncurredOn
	}
	if patch.ClearCategory {
		e.CategoryID = nil
	} else if patch.CategoryID != nil {
		categoryID := *patch.CategoryID
		e.CategoryID = &categoryID
	}
	if patch.Note != nil {
		e.Note = *patch.Note
	}
	m.items[e.ID] = e
	return true, nil
}

func (m *mockExpenseRepo) Delete(_ context.Context, userID, id string) (bool, error) {
	e, ok := m.items[id]
	if !ok || e.UserID != userID {
		return false, nil
	}
	delete(m.items, id)
	return true, nil
}

func (m *mockExpenseRepo) Exists(_ context.Context, userID, id string) (bool, error) {
	e, ok := m.items[id]
	return ok && e.UserID == userID, nil
}

func (m *mockExpenseRepo) TotalsByCategory(_ context.Context, _ string, from, to time.Time) ([]repository.CategoryTotal, error) {
	m.lastFrom = from
	m.lastTo = to
	return m.totals, nil
}

type mockBudgetRepo struct {
	categories *mockCategoryRepo
	amounts    map[string]float64
}

func newMockBudgetRepo(categories *mockCategoryRepo) *mockBudgetRepo {
	return &mockBudgetRepo{categories: categories, amounts: make(map[string]float64)}
}

func (m *mockBudgetRepo) List(ctx context.Context, userID string) ([]domain.Budget, error) {
	cats, _ := m.categories.List(ctx, userID)
	out := []domain.Budget{}
	for _, c := range cats {
		b := domain.Budget{CategoryID: c.ID, CategoryName: c.Name}
		if amount, ok := m.amounts[userID+"|"+c.ID]; ok {
			a := amount
			b.Amount = &a
		}
		out = append(out, b)
	}
	return out, nil
}

func (m *mockBudgetRepo) Upsert(ctx context.Context, userID, categoryID string, amount float64) (bool, error) {
	if _, err := m.categories.GetByID(ctx, userID, categoryID); err != nil {
		return false, nil
	}
	m.amounts[userID+"|"+categoryID] = amount
	return true, nil
}

func (m *mockBudgetRepo) Delete(_ context.Context, userID, categoryID string) (bool, error) {
	key := userID + "|" + categoryID
	_, ok := m.amounts[key]
	delete(m.amounts, key)
	return ok, nil
}

type mockGoalRepo struct {
	items map[string]domain.Goal
}

func newMockGoalRepo() *mockGoalRepo {
	return &mockGoalRepo{items: make(map[string]domain.Goal)}
}

func (m *mockGoalRepo) List(_ context.Context, userID string) ([]domain.Goal, error) {
	out := []domain.Goal{}
	for _, g := range m.items {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockGoalRepo) Create(_ context.Context, goal domain.Goal) error {
	m.items[goal.ID] = goal
	return nil
}

func (m *mockGoalRepo) Update(_ context.Context, goal domain.Goal) (bool, error) {
	existing, ok := m.items[goal.ID]
	if !ok || existing.UserID != goal.UserID {
		return false, nil
	}
	goal.CreatedAt = existing.CreatedAt
	m.items[goal.ID] = goal
	return true, nil
}

func (m *mockGoalRepo) Delete(_ context.Context, userID, id string) (bool, error) {
	g, ok := m.items[id]
	if !ok || g.UserID != userID {
		return false, nil
	}
	delete(m.items, id)
	return true, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error {
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}
