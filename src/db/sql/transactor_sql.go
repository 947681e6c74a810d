package db

import (
	"context"
	"fmt"

	"forecast-server/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CreateTransactor appends a transactor to a scenario the user owns. The
// position defaults to the end of the scenario's list so new transactors
// tie-break after existing ones.
func CreateTransactor(ctx context.Context, pool *pgxpool.Pool, userID int, t *models.Transactor) (*models.Transactor, error) {
	owned, err := userOwnsScenario(ctx, pool, userID, t.ScenarioID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, fmt.Errorf("scenario not found")
	}

	query := `
		INSERT INTO transactors (scenario_id, description, value, is_addition, position)
		VALUES ($1, $2, $3, $4,
			(SELECT COALESCE(MAX(position) + 1, 0) FROM transactors WHERE scenario_id = $1))
		RETURNING id, scenario_id, description, value, is_addition, position, created_at, updated_at
	`
	var created models.Transactor
	err = pool.QueryRow(ctx, query, t.ScenarioID, t.Description, t.Value, t.IsAddition).
		Scan(&created.ID, &created.ScenarioID, &created.Description, &created.Value, &created.IsAddition, &created.Position, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func GetTransactorByID(ctx context.Context, pool *pgxpool.Pool, userID, transactorID int) (*models.Transactor, error) {
	query := `
		SELECT t.id, t.scenario_id, t.description, t.value, t.is_addition, t.position, t.created_at, t.updated_at
		FROM transactors t
		JOIN scenarios sc ON t.scenario_id = sc.id
		WHERE t.id = $1 AND sc.user_id = $2
	`
	var t models.Transactor
	err := pool.QueryRow(ctx, query, transactorID, userID).
		Scan(&t.ID, &t.ScenarioID, &t.Description, &t.Value, &t.IsAddition, &t.Position, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("transactor not found")
		}
		return nil, err
	}
	return &t, nil
}

// UpdateTransactor replaces the transactor's fields, including its position
// in the scenario list (the position is part of the scenario's meaning: it
// decides same-date tie-breaks).
func UpdateTransactor(ctx context.Context, pool *pgxpool.Pool, userID int, t *models.Transactor) (*models.Transactor, error) {
	query := `
		UPDATE transactors
		SET description = $1, value = $2, is_addition = $3, position = $4, updated_at = NOW()
		WHERE id = $5 AND scenario_id IN (SELECT id FROM scenarios WHERE user_id = $6)
		RETURNING id, scenario_id, description, value, is_addition, position, created_at, updated_at
	`
	var updated models.Transactor
	err := pool.QueryRow(ctx, query, t.Description, t.Value, t.IsAddition, t.Position, t.ID, userID).
		Scan(&updated.ID, &updated.ScenarioID, &updated.Description, &updated.Value, &updated.IsAddition, &updated.Position, &updated.CreatedAt, &updated.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("transactor not found")
		}
		return nil, err
	}
	return &updated, nil
}

// DeleteTransactor removes a transactor; its schedulers cascade with it.
func DeleteTransactor(ctx context.Context, pool *pgxpool.Pool, userID, transactorID int) error {
	query := `
		DELETE FROM transactors
		WHERE id = $1 AND scenario_id IN (SELECT id FROM scenarios WHERE user_id = $2)
	`
	cmd, err := pool.Exec(ctx, query, transactorID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("transactor not found")
	}
	return nil
}

func userOwnsScenario(ctx context.Context, pool *pgxpool.Pool, userID, scenarioID int) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM scenarios WHERE id = $1 AND user_id = $2)`, scenarioID, userID).Scan(&exists)
	return exists, err
}
