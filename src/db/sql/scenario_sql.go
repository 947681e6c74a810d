package db

import (
	"context"
	"fmt"
	"time"

	"forecast-server/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CreateScenario inserts a scenario together with any nested transactors
// and schedulers in one transaction, so a malformed nested record rolls
// back the whole create.
func CreateScenario(ctx context.Context, pool *pgxpool.Pool, scenario *models.Scenario) (*models.Scenario, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO scenarios (user_id, title, description, start_date, end_date, start_balance)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRow(ctx, query,
		scenario.UserID, scenario.Title, scenario.Description,
		scenario.StartDate, scenario.EndDate, scenario.StartBalance).
		Scan(&scenario.ID, &scenario.CreatedAt, &scenario.UpdatedAt)
	if err != nil {
		return nil, err
	}

	for i := range scenario.Transactors {
		t := &scenario.Transactors[i]
		t.ScenarioID = scenario.ID
		t.Position = i
		err = tx.QueryRow(ctx, `
			INSERT INTO transactors (scenario_id, description, value, is_addition, position)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at
		`, t.ScenarioID, t.Description, t.Value, t.IsAddition, t.Position).
			Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, err
		}

		for j := range t.Schedulers {
			s := &t.Schedulers[j]
			s.TransactorID = t.ID
			s.Position = j
			err = tx.QueryRow(ctx, `
				INSERT INTO schedulers (transactor_id, scheduler_code, start_date, step, day, nth_day, trigger_scheduler_id, position)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				RETURNING id, created_at, updated_at
			`, s.TransactorID, s.SchedulerCode, s.StartDate, s.Step, s.Day, s.NthDay, s.TriggerSchedulerID, s.Position).
				Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
			if err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return scenario, nil
}

// GetScenarioByID loads a scenario with its full transactor/scheduler tree,
// ordered by the stored positions.
func GetScenarioByID(ctx context.Context, pool *pgxpool.Pool, userID, scenarioID int) (*models.Scenario, error) {
	query := `
		SELECT id, user_id, title, description, start_date, end_date, start_balance, created_at, updated_at
		FROM scenarios WHERE id = $1 AND user_id = $2
	`
	var s models.Scenario
	err := pool.QueryRow(ctx, query, scenarioID, userID).
		Scan(&s.ID, &s.UserID, &s.Title, &s.Description, &s.StartDate, &s.EndDate, &s.StartBalance, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("scenario not found")
		}
		return nil, err
	}

	if err := loadTransactors(ctx, pool, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetAllScenariosForUser lists scenarios, optionally keeping only those
// whose default window overlaps [from, to]. Scenarios with open-ended
// windows always overlap.
func GetAllScenariosForUser(ctx context.Context, pool *pgxpool.Pool, userID int, from, to *time.Time) ([]models.Scenario, error) {
	query := `
		SELECT id, user_id, title, description, start_date, end_date, start_balance, created_at, updated_at
		FROM scenarios
		WHERE user_id = $1
		  AND ($2::date IS NULL OR end_date IS NULL OR end_date >= $2)
		  AND ($3::date IS NULL OR start_date IS NULL OR start_date <= $3)
		ORDER BY created_at DESC
	`
	rows, err := pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scenarios []models.Scenario
	for rows.Next() {
		var s models.Scenario
		err := rows.Scan(&s.ID, &s.UserID, &s.Title, &s.Description, &s.StartDate, &s.EndDate, &s.StartBalance, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range scenarios {
		if err := loadTransactors(ctx, pool, &scenarios[i]); err != nil {
			return nil, err
		}
	}
	return scenarios, nil
}

// UpdateScenario replaces the scalar fields of a scenario. Transactors and
// schedulers are managed through their own endpoints.
func UpdateScenario(ctx context.Context, pool *pgxpool.Pool, scenario *models.Scenario) (*models.Scenario, error) {
	query := `
		UPDATE scenarios
		SET title = $1, description = $2, start_date = $3, end_date = $4, start_balance = $5, updated_at = NOW()
		WHERE id = $6 AND user_id = $7
		RETURNING id, user_id, title, description, start_date, end_date, start_balance, created_at, updated_at
	`
	var s models.Scenario
	err := pool.QueryRow(ctx, query,
		scenario.Title, scenario.Description, scenario.StartDate, scenario.EndDate,
		scenario.StartBalance, scenario.ID, scenario.UserID).
		Scan(&s.ID, &s.UserID, &s.Title, &s.Description, &s.StartDate, &s.EndDate, &s.StartBalance, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("scenario not found")
		}
		return nil, err
	}

	if err := loadTransactors(ctx, pool, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteScenario removes a scenario; transactors and schedulers go with it
// through the ON DELETE CASCADE constraints.
func DeleteScenario(ctx context.Context, pool *pgxpool.Pool, userID, scenarioID int) error {
	query := `DELETE FROM scenarios WHERE id = $1 AND user_id = $2`
	cmd, err := pool.Exec(ctx, query, scenarioID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("scenario not found")
	}
	return nil
}

func loadTransactors(ctx context.Context, pool *pgxpool.Pool, s *models.Scenario) error {
	query := `
		SELECT id, scenario_id, description, value, is_addition, position, created_at, updated_at
		FROM transactors
		WHERE scenario_id = $1
		ORDER BY position, id
	`
	rows, err := pool.Query(ctx, query, s.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var t models.Transactor
		err := rows.Scan(&t.ID, &t.ScenarioID, &t.Description, &t.Value, &t.IsAddition, &t.Position, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return err
		}
		s.Transactors = append(s.Transactors, t)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range s.Transactors {
		if err := loadSchedulers(ctx, pool, &s.Transactors[i]); err != nil {
			return err
		}
	}
	return nil
}

func loadSchedulers(ctx context.Context, pool *pgxpool.Pool, t *models.Transactor) error {
	query := `
		SELECT id, transactor_id, scheduler_code, start_date, step, day, nth_day, trigger_scheduler_id, position, created_at, updated_at
		FROM schedulers
		WHERE transactor_id = $1
		ORDER BY position, id
	`
	rows, err := pool.Query(ctx, query, t.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var s models.Scheduler
		err := rows.Scan(&s.ID, &s.TransactorID, &s.SchedulerCode, &s.StartDate, &s.Step, &s.Day, &s.NthDay, &s.TriggerSchedulerID, &s.Position, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return err
		}
		t.Schedulers = append(t.Schedulers, s)
	}
	return rows.Err()
}
