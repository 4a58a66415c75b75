package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"expense-api/internal/domain"
)

type CategoryRepository interface {
	List(ctx context.Context, userID string) ([]domain.Category, error)
	GetByID(ctx context.Context, userID, id string) (domain.Category, error)
	ExistsByName(ctx context.Context, userID, name string) (bool, error)
	Create(ctx context.Context, category domain.Category) error
	CreateMany(ctx context.Context, categories []domain.Category) error
	Rename(ctx context.Context, userID, id, name string) (bool, error)
	Delete(ctx context.Context, userID, id string) (bool, error)
}

type PgCategoryRepository struct {
	pool *pgxpool.Pool
}

func NewPgCategoryRepository(pool *pgxpool.Pool) *PgCategoryRepository {
	return &PgCategoryRepository{pool: pool}
}

func (r *PgCategoryRepository) List(ctx context.Context, userID string) ([]domain.Category, error) {
	const query = `
		SELECT id, user_id, name, color, created_at
		FROM categories
		WHERE user_id = $1
		ORDER BY lower(name)
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *PgCategoryRepository) GetByID(ctx context.Context, userID, id string) (domain.Category, error) {
	const query = `
		SELECT id, user_id, name, color, created_at
		FROM categories
		WHERE id = $1 AND user_id = $2
	`
	var c domain.Category
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Category{}, err
	}
	return c, err
}

func (r *PgCategoryRepository) ExistsByName(ctx context.Context, userID, name string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM categories WHERE user_id = $1 AND lower(name) = lower($2))`
	var exists bool
	err := r.pool.QueryRow(ctx, query, userID, name).Scan(&exists)
	return exists, err
}

func (r *PgCategoryRepository) Create(ctx context.Context, category domain.Category) error {
	const query = `
		INSERT INTO categories (id, user_id, name, color, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		category.ID,
		category.UserID,
		category.Name,
		category.Color,
		category.CreatedAt,
	)
	return translateWriteErr(err)
}

// CreateMany inserta varias categorias en una sola transaccion.
func (r *PgCategoryRepository) CreateMany(ctx context.Context, categories []domain.Category) error {
	const query = `
		INSERT INTO categories (id, user_id, name, color, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, c := range categories {
			if _, err := tx.Exec(ctx, query, c.ID, c.UserID, c.Name, c.Color, c.CreatedAt); err != nil {
				return translateWriteErr(err)
			}
		}
		return nil
	})
}

func (r *PgCategoryRepository) Rename(ctx context.Context, userID, id, name string) (bool, error) {
	const query = `UPDATE categories SET name = $3 WHERE id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, userID, name)
	if err != nil {
		return false, translateWriteErr(err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete desvincula los gastos, elimina el presupuesto y borra la categoria en una transaccion.
func (r *PgCategoryRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	var deleted bool
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`UPDATE expenses SET category_id = NULL WHERE user_id = $1 AND category_id = $2`,
			userID, id,
		); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`DELETE FROM budgets WHERE user_id = $1 AND category_id = $2`,
			userID, id,
		); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM categories WHERE user_id = $1 AND id = $2`, userID, id)
		if err != nil {
			return err
		}
		deleted = tag.RowsAffected() > 0
		return nil
	})
	return deleted, err
}
