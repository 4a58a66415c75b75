package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"expense-api/internal/domain"
)

type BudgetRepository interface {
	List(ctx context.Context, userID string) ([]domain.Budget, error)
	Upsert(ctx context.Context, userID, categoryID string, amount float64) (bool, error)
	Delete(ctx context.Context, userID, categoryID string) (bool, error)
}

type PgBudgetRepository struct {
	pool *pgxpool.Pool
}

func NewPgBudgetRepository(pool *pgxpool.Pool) *PgBudgetRepository {
	return &PgBudgetRepository{pool: pool}
}

// List devuelve todas las categorias del usuario con su presupuesto, si existe.
func (r *PgBudgetRepository) List(ctx context.Context, userID string) ([]domain.Budget, error) {
	const query = `
		SELECT c.id, c.name, b.amount
		FROM categories c
		LEFT JOIN budgets b ON b.user_id = c.user_id AND b.category_id = c.id
		WHERE c.user_id = $1
		ORDER BY lower(c.name)
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	budgets := []domain.Budget{}
	for rows.Next() {
		var b domain.Budget
		if err := rows.Scan(&b.CategoryID, &b.CategoryName, &b.Amount); err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// Upsert solo escribe si la categoria pertenece al usuario; devuelve false en caso contrario.
func (r *PgBudgetRepository) Upsert(ctx context.Context, userID, categoryID string, amount float64) (bool, error) {
	const query = `
		INSERT INTO budgets (user_id, category_id, amount)
		SELECT $1, c.id, $3
		FROM categories c
		WHERE c.id = $2 AND c.user_id = $1
		ON CONFLICT (user_id, category_id) DO UPDATE SET amount = EXCLUDED.amount
	`
	tag, err := r.pool.Exec(ctx, query, userID, categoryID, amount)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgBudgetRepository) Delete(ctx context.Context, userID, categoryID string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM budgets WHERE user_id = $1 AND category_id = $2`,
		userID, categoryID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
