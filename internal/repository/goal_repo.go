package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"expense-api/internal/domain"
)

type GoalRepository interface {
	List(ctx context.Context, userID string) ([]domain.Goal, error)
	Create(ctx context.Context, goal domain.Goal) error
	Update(ctx context.Context, goal domain.Goal) (bool, error)
	Delete(ctx context.Context, userID, id string) (bool, error)
}

type PgGoalRepository struct {
	pool *pgxpool.Pool
}

func NewPgGoalRepository(pool *pgxpool.Pool) *PgGoalRepository {
	return &PgGoalRepository{pool: pool}
}

func (r *PgGoalRepository) List(ctx context.Context, userID string) ([]domain.Goal, error) {
	const query = `
		SELECT id, user_id, name, target_amount, target_date, created_at
		FROM goals
		WHERE user_id = $1
		ORDER BY target_date ASC NULLS LAST, created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := []domain.Goal{}
	for rows.Next() {
		var g domain.Goal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.TargetDate, &g.CreatedAt); err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (r *PgGoalRepository) Create(ctx context.Context, goal domain.Goal) error {
	const query = `
		INSERT INTO goals (id, user_id, name, target_amount, target_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		goal.ID,
		goal.UserID,
		goal.Name,
		goal.TargetAmount,
		goal.TargetDate,
		goal.CreatedAt,
	)
	return err
}

func (r *PgGoalRepository) Update(ctx context.Context, goal domain.Goal) (bool, error) {
	const query = `
		UPDATE goals
		SET name = $3, target_amount = $4, target_date = $5
		WHERE id = $1 AND user_id = $2
	`
	tag, err := r.pool.Exec(ctx, query, goal.ID, goal.UserID, goal.Name, goal.TargetAmount, goal.TargetDate)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgGoalRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM goals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
