package db

import (
	"context"
	"fmt"

	"forecast-server/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func CreateScheduler(ctx context.Context, pool *pgxpool.Pool, userID int, s *models.Scheduler) (*models.Scheduler, error) {
	query := `
		INSERT INTO schedulers (transactor_id, scheduler_code, start_date, step, day, nth_day, trigger_scheduler_id, position)
		SELECT $1, $2, $3, $4, $5, $6, $7,
			(SELECT COALESCE(MAX(position) + 1, 0) FROM schedulers WHERE transactor_id = $1)
		WHERE EXISTS (
			SELECT 1 FROM transactors t
			JOIN scenarios sc ON t.scenario_id = sc.id
			WHERE t.id = $1 AND sc.user_id = $8
		)
		RETURNING id, transactor_id, scheduler_code, start_date, step, day, nth_day, trigger_scheduler_id, position, created_at, updated_at
	`
	var created models.Scheduler
	err := pool.QueryRow(ctx, query,
		s.TransactorID, s.SchedulerCode, s.StartDate, s.Step, s.Day, s.NthDay, s.TriggerSchedulerID, userID).
		Scan(&created.ID, &created.TransactorID, &created.SchedulerCode, &created.StartDate, &created.Step, &created.Day, &created.NthDay, &created.TriggerSchedulerID, &created.Position, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("transactor not found")
		}
		return nil, err
	}
	return &created, nil
}

func GetSchedulerByID(ctx context.Context, pool *pgxpool.Pool, userID, schedulerID int) (*models.Scheduler, error) {
	query := `
		SELECT s.id, s.transactor_id, s.scheduler_code, s.start_date, s.step, s.day, s.nth_day, s.trigger_scheduler_id, s.position, s.created_at, s.updated_at
		FROM schedulers s
		JOIN transactors t ON s.transactor_id = t.id
		JOIN scenarios sc ON t.scenario_id = sc.id
		WHERE s.id = $1 AND sc.user_id = $2
	`
	var s models.Scheduler
	err := pool.QueryRow(ctx, query, schedulerID, userID).
		Scan(&s.ID, &s.TransactorID, &s.SchedulerCode, &s.StartDate, &s.Step, &s.Day, &s.NthDay, &s.TriggerSchedulerID, &s.Position, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("scheduler not found")
		}
		return nil, err
	}
	return &s, nil
}

func UpdateScheduler(ctx context.Context, pool *pgxpool.Pool, userID int, s *models.Scheduler) (*models.Scheduler, error) {
	query := `
		UPDATE schedulers
		SET scheduler_code = $1, start_date = $2, step = $3, day = $4, nth_day = $5, trigger_scheduler_id = $6, updated_at = NOW()
		WHERE id = $7 AND transactor_id IN (
			SELECT t.id FROM transactors t
			JOIN scenarios sc ON t.scenario_id = sc.id
			WHERE sc.user_id = $8
		)
		RETURNING id, transactor_id, scheduler_code, start_date, step, day, nth_day, trigger_scheduler_id, position, created_at, updated_at
	`
	var updated models.Scheduler
	err := pool.QueryRow(ctx, query,
		s.SchedulerCode, s.StartDate, s.Step, s.Day, s.NthDay, s.TriggerSchedulerID, s.ID, userID).
		Scan(&updated.ID, &updated.TransactorID, &updated.SchedulerCode, &updated.StartDate, &updated.Step, &updated.Day, &updated.NthDay, &updated.TriggerSchedulerID, &updated.Position, &updated.CreatedAt, &updated.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("scheduler not found")
		}
		return nil, err
	}
	return &updated, nil
}

func DeleteScheduler(ctx context.Context, pool *pgxpool.Pool, userID, schedulerID int) error {
	query := `
		DELETE FROM schedulers
		WHERE id = $1 AND transactor_id IN (
			SELECT t.id FROM transactors t
			JOIN scenarios sc ON t.scenario_id = sc.id
			WHERE sc.user_id = $2
		)
	`
	cmd, err := pool.Exec(ctx, query, schedulerID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("scheduler not found")
	}
	return nil
}

// GetScenarioIDForTransactor resolves which scenario a transactor belongs
// to, for cache invalidation after scheduler writes.
func GetScenarioIDForTransactor(ctx context.Context, pool *pgxpool.Pool, transactorID int) (int, error) {
	var scenarioID int
	err := pool.QueryRow(ctx, `SELECT scenario_id FROM transactors WHERE id = $1`, transactorID).Scan(&scenarioID)
	if err != nil {
		return 0, err
	}
	return scenarioID, nil
}

// GetScenarioIDForScheduler resolves a scheduler's owning scenario, for
// cache invalidation.
func GetScenarioIDForScheduler(ctx context.Context, pool *pgxpool.Pool, schedulerID int) (int, error) {
	var scenarioID int
	query := `
		SELECT t.scenario_id FROM schedulers s
		JOIN transactors t ON s.transactor_id = t.id
		WHERE s.id = $1
	`
	err := pool.QueryRow(ctx, query, schedulerID).Scan(&scenarioID)
	if err != nil {
		return 0, err
	}
	return scenarioID, nil
}
