package http

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"expense-api/internal/domain"
	"expense-api/internal/repository"
)

type mockUserRepo struct {
	mu           sync.Mutex
	usersByID    map[string]domain.User
	usersByEmail map[string]string
	usersByAuth  map[string]string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[string]domain.User),
		usersByEmail: make(map[string]string),
		usersByAuth:  make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(user.Email)
	if _, ok := m.usersByEmail[key]; ok {
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
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	id, ok := m.usersByEmail[strings.ToLower(email)]
	m.mu.Unlock()
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(ctx, id)
}

func (m *mockUserRepo) GetByAuth(ctx context.Context, provider, subject string) (domain.User, error) {
	m.mu.Lock()
	id, ok := m.usersByAuth[provider+"|"+subject]
	m.mu.Unlock()
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(ctx, id)
}

func (m *mockUserRepo) LinkOAuth(_ context.Context, id, provider, subject string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
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
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.PasswordHash = passwordHash
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) UpdateProfile(_ context.Context, id, displayName string, monthlyIncome float64, currency string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
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
	items map[string]domain.Category
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

func (m *mockCategoryRepo) Create(_ context.Context, category domain.Category) error {
	m.items[category.ID] = category
	return nil
}

func (m *mockCategoryRepo) CreateMany(ctx context.Context, categories []domain.Category) error {
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
	c.Name = name
	m.items[id] = c
	return true, nil
}

func (m *mockCategoryRepo) Delete(_ context.Context, userID, id string) (bool, error) {
	c, ok := m.items[id]
	if !ok || c.UserID != userID {
		return false, nil
	}
	delete(m.items, id)
	return true, nil
}

type mockExpenseRepo struct {
	items     map[string]domain.Expense
	lastPatch domain.ExpensePatch
}

func newMockExpenseRepo() *mockExpenseRepo {
	return &mockExpenseRepo{items: make(map[string]domain.Expense)}
}

func (m *mockExpenseRepo) List(_ context.Context, userID string, _ domain.ExpenseFilter) ([]domain.Expense, error) {
	out := []domain.Expense{}
	for _, e := range m.items {
		if e.UserID == userID {
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

func (m *mockExpenseRepo) TotalsByCategory(_ context.Context, _ string, _, _ time.Time) ([]repository.CategoryTotal, error) {
	return nil, nil
}

type mockBudgetRepo struct {
	amounts map[string]float64
}

func (m *mockBudgetRepo) List(_ context.Context, _ string) ([]domain.Budget, error) {
	return []domain.Budget{}, nil
}

func (m *mockBudgetRepo) Upsert(_ context.Context, userID, categoryID string, amount float64) (bool, error) {
	if m.amounts == nil {
		m.amounts = make(map[string]float64)
	}
	m.amounts[userID+"|"+categoryID] = amount
	return true, nil
}

func (m *mockBudgetRepo) Delete(_ context.Context, userID, categoryID string) (bool, error) {
	_, ok := m.amounts[userID+"|"+categoryID]
	delete(m.amounts, userID+"|"+categoryID)
	return ok, nil
}

type mockGoalRepo struct{}

func (mockGoalRepo) List(_ context.Context, _ string) ([]domain.Goal, error) {
	return []domain.Goal{}, nil
}

func (mockGoalRepo) Create(_ context.Context, _ domain.Goal) error {
	return nil
}

func (mockGoalRepo) Update(_ context.Context, _ domain.Goal) (bool, error) {
	return false, nil
}

func (mockGoalRepo) Delete(_ context.Context, _, _ string) (bool, error) {
	return false, nil
}
