package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	db "forecast-server/src/db"
	sql "forecast-server/src/db/sql"
	"forecast-server/src/engine"
	"forecast-server/src/models"
	"forecast-server/src/util"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type schedulerRequest struct {
	SchedulerCode      string  `json:"scheduler_code"`
	StartDate          *string `json:"start_date"`
	Step               *int    `json:"step"`
	Day                *int    `json:"day"`
	NthDay             *int    `json:"nth_day"`
	TriggerSchedulerID *int    `json:"trigger_scheduler_id"`
}

type transactorRequest struct {
	Description string             `json:"description"`
	Value       decimal.Decimal    `json:"value"`
	IsAddition  bool               `json:"is_addition"`
	Schedulers  []schedulerRequest `json:"schedulers"`
}

type scenarioRequest struct {
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	StartDate    *string             `json:"start_date"`
	EndDate      *string             `json:"end_date"`
	StartBalance decimal.Decimal     `json:"start_balance"`
	Transactors  []transactorRequest `json:"transactors"`
}

// parseBodyDate converts an optional YYYY-MM-DD body field to the stored
// time.Time form.
func parseBodyDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := engine.ParseDate(*s)
	if err != nil {
		return nil, err
	}
	t := time.UnixMilli(d.EpochMillis()).UTC()
	return &t, nil
}

func (sr schedulerRequest) toModel() (*models.Scheduler, error) {
	startDate, err := parseBodyDate(sr.StartDate)
	if err != nil {
		return nil, err
	}
	s := &models.Scheduler{
		SchedulerCode:      sr.SchedulerCode,
		StartDate:          startDate,
		Step:               sr.Step,
		Day:                sr.Day,
		NthDay:             sr.NthDay,
		TriggerSchedulerID: sr.TriggerSchedulerID,
	}
	if err := s.ToEngine().Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (sr scenarioRequest) toModel(userID int) (*models.Scenario, error) {
	startDate, err := parseBodyDate(sr.StartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := parseBodyDate(sr.EndDate)
	if err != nil {
		return nil, err
	}
	if startDate != nil && endDate != nil && endDate.Before(*startDate) {
		return nil, fmt.Errorf("%w: end_date is before start_date", engine.ErrInvalidRange)
	}

	scenario := &models.Scenario{
		UserID:       userID,
		Title:        sr.Title,
		Description:  sr.Description,
		StartDate:    startDate,
		EndDate:      endDate,
		StartBalance: sr.StartBalance,
	}
	for _, tr := range sr.Transactors {
		if tr.Value.IsNegative() {
			return nil, fmt.Errorf("%w: transactor value must not be negative", engine.ErrInvalidRule)
		}
		t := models.Transactor{
			Description: tr.Description,
			Value:       tr.Value,
			IsAddition:  tr.IsAddition,
		}
		for _, schedReq := range tr.Schedulers {
			sched, err := schedReq.toModel()
			if err != nil {
				return nil, err
			}
			t.Schedulers = append(t.Schedulers, *sched)
		}
		scenario.Transactors = append(scenario.Transactors, t)
	}
	return scenario, nil
}

func scenarioCacheKey(userID, scenarioID int) string {
	return fmt.Sprintf("scenario:%d:%d", userID, scenarioID)
}

func invalidateScenario(userID, scenarioID int) {
	db.DelScenarioCache(scenarioCacheKey(userID, scenarioID))
	db.ClearAllProjectionCaches()
}

func CreateScenario(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		var req scenarioRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode create scenario request body for user %d: %v", userID, err)
			util.RespondError(w, http.StatusBadRequest, "invalid request")
			return
		}
		scenario, err := req.toModel(int(userID))
		if err != nil {
			log.Printf("ERROR: Invalid scenario payload for user %d: %v", userID, err)
			util.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		created, err := sql.CreateScenario(r.Context(), pool, scenario)
		if err != nil {
			log.Printf("ERROR: Failed to create scenario for user %d: %v", userID, err)
			util.RespondError(w, http.StatusInternalServerError, "failed to create scenario")
			return
		}
		log.Printf("INFO: Created scenario id %d for user %d with %d transactors", created.ID, userID, len(created.Transactors))
		util.RespondOK(w, http.StatusCreated, created, "scenario created")
	}
}

func GetAllScenarios(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		var from, to *time.Time
		if raw := r.URL.Query().Get("from"); raw != "" {
			d, err := engine.ParseDateDMY(raw)
			if err != nil {
				log.Printf("ERROR: Invalid from param %q for user %d", raw, userID)
				util.RespondError(w, http.StatusBadRequest, "from must be DD/MM/YYYY")
				return
			}
			t := time.UnixMilli(d.EpochMillis()).UTC()
			from = &t
		}
		if raw := r.URL.Query().Get("to"); raw != "" {
			d, err := engine.ParseDateDMY(raw)
			if err != nil {
				log.Printf("ERROR: Invalid to param %q for user %d", raw, userID)
				util.RespondError(w, http.StatusBadRequest, "to must be DD/MM/YYYY")
				return
			}
			t := time.UnixMilli(d.EpochMillis()).UTC()
			to = &t
		}

		scenarios, err := sql.GetAllScenariosForUser(r.Context(), pool, int(userID), from, to)
		if err != nil {
			log.Printf("ERROR: Failed to get scenarios for user %d: %v", userID, err)
			util.RespondError(w, http.StatusInternalServerError, "failed to get scenarios")
			return
		}
		util.RespondOK(w, http.StatusOK, scenarios, "")
	}
}

func GetScenarioByID(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		scenarioIDStr := chi.URLParam(r, "scenario_id")
		scenarioID, err := strconv.Atoi(scenarioIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid scenario id param: %s", scenarioIDStr)
			util.RespondError(w, http.StatusBadRequest, "invalid scenario id")
			return
		}

		cacheKey := scenarioCacheKey(int(userID), scenarioID)
		if cached, found := db.Cache.Get(cacheKey); found {
			util.RespondOK(w, http.StatusOK, cached, "")
			return
		}

		scenario, err := sql.GetScenarioByID(r.Context(), pool, int(userID), scenarioID)
		if err != nil {
			log.Printf("ERROR: Scenario id %d not found for user %d: %v", scenarioID, userID, err)
			util.RespondError(w, http.StatusNotFound, "scenario not found")
			return
		}
		db.SetScenarioCache(cacheKey, scenario)
		util.RespondOK(w, http.StatusOK, scenario, "")
	}
}

func UpdateScenario(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		scenarioIDStr := chi.URLParam(r, "scenario_id")
		scenarioID, err := strconv.Atoi(scenarioIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid scenario id param: %s", scenarioIDStr)
			util.RespondError(w, http.StatusBadRequest, "invalid scenario id")
			return
		}
		var req scenarioRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode update scenario request body for user %d: %v", userID, err)
			util.RespondError(w, http.StatusBadRequest, "invalid request")
			return
		}
		scenario, err := req.toModel(int(userID))
		if err != nil {
			log.Printf("ERROR: Invalid scenario payload for user %d: %v", userID, err)
			util.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		scenario.ID = scenarioID

		updated, err := sql.UpdateScenario(r.Context(), pool, scenario)
		if err != nil {
			log.Printf("ERROR: Failed to update scenario id %d for user %d: %v", scenarioID, userID, err)
			util.RespondError(w, http.StatusInternalServerError, "failed to update scenario")
			return
		}
		invalidateScenario(int(userID), scenarioID)
		log.Printf("INFO: Updated scenario id %d for user %d", updated.ID, userID)
		util.RespondOK(w, http.StatusOK, updated, "scenario updated")
	}
}

func DeleteScenario(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		scenarioIDStr := chi.URLParam(r, "scenario_id")
		scenarioID, err := strconv.Atoi(scenarioIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid scenario id param: %s", scenarioIDStr)
			util.RespondError(w, http.StatusBadRequest, "invalid scenario id")
			return
		}
		err = sql.DeleteScenario(r.Context(), pool, int(userID), scenarioID)
		if err != nil {
			log.Printf("ERROR: Failed to delete scenario id %d for user %d: %v", scenarioID, userID, err)
			util.RespondError(w, http.StatusInternalServerError, "failed to delete scenario")
			return
		}
		invalidateScenario(int(userID), scenarioID)
		log.Printf("INFO: Deleted scenario id %d for user %d", scenarioID, userID)
		util.RespondOK(w, http.StatusOK, nil, "scenario deleted")
	}
}
