package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"expense-api/internal/domain"
)

type ExpenseRepository interface {
	List(ctx context.Context, userID string, filter domain.ExpenseFilter) ([]domain.Expense, error)
	Create(ctx context.Context, expense domain.Expense) error
	Update(ctx context.Context, userID, id string, patch domain.ExpensePatch) (bool, error)
	Delete(ctx context.Context, userID, id string) (bool, error)
	Exists(ctx context.Context, userID, id string) (bool, error)
	TotalsByCategory(ctx context.Context, userID string, from, to time.Time) ([]CategoryTotal, error)
}

// CategoryTotal es el gasto agregado de una categoria; CategoryID nil agrupa los gastos sin categoria.
type CategoryTotal struct {
	CategoryID   *string
	CategoryName *string
	Total        float64
}

type PgExpenseRepository struct {
	pool *pgxpool.Pool
}

func NewPgExpenseRepository(pool *pgxpool.Pool) *PgExpenseRepository {
	return &PgExpenseRepository{pool: pool}
}

func (r *PgExpenseRepository) List(ctx context.Context, userID string, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	const query = `
		SELECT e.id, e.user_id, e.category_id, c.name, c.color, e.amount, e.note, e.incurred_on, e.created_at
		FROM expenses e
		LEFT JOIN categories c ON c.id = e.category_id
		WHERE e.user_id = $1 AND e.incurred_on BETWEEN $2 AND $3
		ORDER BY e.incurred_on DESC, e.created_at DESC
		LIMIT $4
	`
	rows, err := r.pool.Query(ctx, query, userID, filter.From, filter.To, filter.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := []domain.Expense{}
	for rows.Next() {
		var (
			e    domain.Expense
			note *string
		)
		err = rows.Scan(
			&e.ID,
			&e.UserID,
			&e.CategoryID,
			&e.CategoryName,
			&e.CategoryColor,
			&e.Amount,
			&note,
			&e.IncurredOn,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		e.Note = derefString(note)
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *PgExpenseRepository) Create(ctx context.Context, expense domain.Expense) error {
	const query = `
		INSERT INTO expenses (id, user_id, category_id, amount, note, incurred_on, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		expense.ID,
		expense.UserID,
		expense.CategoryID,
		expense.Amount,
		nullString(expense.Note),
		expense.IncurredOn,
		expense.CreatedAt,
	)
	return err
}

// Update arma el SET solo con los campos presentes en el patch.
func (r *PgExpenseRepository) Update(ctx context.Context, userID, id string, patch domain.ExpensePatch) (bool, error) {
	sets := []string{}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Amount != nil {
		add("amount", *patch.Amount)
	}
	if patch.IncurredOn != nil {
		add("incurred_on", *patch.IncurredOn)
	}
	if patch.ClearCategory {
		add("category_id", nil)
	} else if patch.CategoryID != nil {
		add("category_id", *patch.CategoryID)
	}
	if patch.Note != nil {
		add("note", nullString(*patch.Note))
	}
	if len(sets) == 0 {
		return r.Exists(ctx, userID, id)
	}

	args = append(args, id, userID)
	query := fmt.Sprintf(
		"UPDATE expenses SET %s WHERE id = $%d AND user_id = $%d",
		strings.Join(sets, ", "), len(args)-1, len(args),
	)
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgExpenseRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgExpenseRepository) Exists(ctx context.Context, userID, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM expenses WHERE id = $1 AND user_id = $2)`,
		id, userID,
	).Scan(&exists)
	return exists, err
}

func (r *PgExpenseRepository) TotalsByCategory(ctx context.Context, userID string, from, to time.Time) ([]CategoryTotal, error) {
	const query = `
		SELECT e.category_id, c.name, SUM(e.amount)
		FROM expenses e
		LEFT JOIN categories c ON c.id = e.category_id
		WHERE e.user_id = $1 AND e.incurred_on BETWEEN $2 AND $3
		GROUP BY e.category_id, c.name
		ORDER BY SUM(e.amount) DESC
	`
	rows, err := r.pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []CategoryTotal
	for rows.Next() {
		var t CategoryTotal
		if err := rows.Scan(&t.CategoryID, &t.CategoryName, &t.Total); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
