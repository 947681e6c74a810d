package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	sql "forecast-server/src/db/sql"
	"forecast-server/src/engine"
	"forecast-server/src/util"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func CreateScheduler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		transactorIDStr := chi.URLParam(r, "transactor_id")
		transactorID, err := strconv.Atoi(transactorIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid transactor id param: %s", transactorIDStr)
			util.RespondError(w, http.StatusBadRequest, "invalid transactor id")
			return
		}
		var req schedulerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode create scheduler request body for user %d: %v", userID, err)
			util.RespondError(w, http.StatusBadRequest, "invalid request")
			return
		}
		scheduler, err := req.toModel()
		if err != nil {
			log.Printf("ERROR: Invalid scheduler payload for user %d: %v", userID, err)
			util.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		scheduler.TransactorID = transactorID

		created, err := sql.CreateScheduler(r.Context(), pool, int(userID), scheduler)
		if err != nil {
			log.Printf("ERROR: Failed to create scheduler for user %d on transactor %d: %v", userID, transactorID, err)
			util.RespondError(w, http.StatusInternalServerError, "failed to create scheduler")
			return
		}
		if scenarioID, err := sql.GetScenarioIDForTransactor(r.Context(), pool, transactorID); err == nil {
			invalidateScenario(int(userID), scenarioID)
		}
		log.Printf("INFO: Created scheduler id %d (%s) on transactor %d for user %d", created.ID, created.SchedulerCode, transactorID, userID)
		util.RespondOK(w, http.StatusCreated, created, "scheduler created")
	}
}

func GetSchedulerByID(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		schedulerIDStr := chi.URLParam(r, "scheduler_id")
		schedulerID, err := strconv.Atoi(schedulerIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid scheduler id param: %s", schedulerIDStr)
			util.RespondError(w, http.StatusBadRequest, "invalid scheduler id")
			return
		}
		scheduler, err := sql.GetSchedulerByID(r.Context(), pool, int(userID), schedulerID)
		if err != nil {
			log.Printf("ERROR: Scheduler id %d not found for user %d: %v", schedulerID, userID, err)
			util.RespondError(w, http.StatusNotFound, "scheduler not found")
			return
		}
		util.RespondOK(w, http.StatusOK, scheduler, "")
	}
}

func UpdateScheduler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		schedulerIDStr := chi.URLParam(r, "scheduler_id")
		schedulerID, err := strconv.Atoi(schedulerIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid scheduler id param: %s", schedulerIDStr)
			util.RespondError(w, http.StatusBadRequest, "invalid scheduler id")
			return
		}
		var req schedulerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode update scheduler request body for user %d: %v", userID, err)
			util.RespondError(w, http.StatusBadRequest, "invalid request")
			return
		}
		scheduler, err := req.toModel()
		if err != nil {
			log.Printf("ERROR: Invalid scheduler payload for user %d: %v", userID, err)
			util.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		scheduler.ID = schedulerID

		updated, err := sql.UpdateScheduler(r.Context(), pool, int(userID), scheduler)
		if err != nil {
			log.Printf("ERROR: Failed to update scheduler id %d for user %d: %v", schedulerID, userID, err)
			util.RespondError(w, http.StatusInternalServerError, "failed to update scheduler")
			return
		}
		if scenarioID, err := sql.GetScenarioIDForScheduler(r.Context(), pool, schedulerID); err == nil {
			invalidateScenario(int(userID), scenarioID)
		}
		log.Printf("INFO: Updated scheduler id %d for user %d", updated.ID, userID)
		util.RespondOK(w, http.StatusOK, updated, "scheduler updated")
	}
}

func DeleteScheduler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		schedulerIDStr := chi.URLParam(r, "scheduler_id")
		schedulerID, err := strconv.Atoi(schedulerIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid scheduler id param: %s", schedulerIDStr)
			util.RespondError(w, http.StatusBadRequest, "invalid scheduler id")
			return
		}

		scenarioID, scenarioErr := sql.GetScenarioIDForScheduler(r.Context(), pool, schedulerID)

		err = sql.DeleteScheduler(r.Context(), pool, int(userID), schedulerID)
		if err != nil {
			log.Printf("ERROR: Failed to delete scheduler id %d for user %d: %v", schedulerID, userID, err)
			util.RespondError(w, http.StatusInternalServerError, "failed to delete scheduler")
			return
		}
		if scenarioErr == nil {
			invalidateScenario(int(userID), scenarioID)
		}
		log.Printf("INFO: Deleted scheduler id %d for user %d", schedulerID, userID)
		util.RespondOK(w, http.StatusOK, nil, "scheduler deleted")
	}
}

// GetSchedulerOccurrences exposes raw occurrence dates for one scheduler,
// for UIs that want calendar markers without a full projection. Event
// schedulers resolve their trigger against the sibling rules of the same
// scenario.
func GetSchedulerOccurrences(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		schedulerIDStr := chi.URLParam(r, "scheduler_id")
		schedulerID, err := strconv.Atoi(schedulerIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid scheduler id param: %s", schedulerIDStr)
			util.RespondError(w, http.StatusBadRequest, "invalid scheduler id")
			return
		}

		from, to, err := parseRangeParams(r)
		if err != nil {
			log.Printf("ERROR: Invalid range params for user %d: %v", userID, err)
			util.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if from == nil || to == nil {
			util.RespondError(w, http.StatusBadRequest, "from and to are required (DD/MM/YYYY)")
			return
		}

		scheduler, err := sql.GetSchedulerByID(r.Context(), pool, int(userID), schedulerID)
		if err != nil {
			log.Printf("ERROR: Scheduler id %d not found for user %d: %v", schedulerID, userID, err)
			util.RespondError(w, http.StatusNotFound, "scheduler not found")
			return
		}

		scenarioID, err := sql.GetScenarioIDForScheduler(r.Context(), pool, schedulerID)
		if err != nil {
			log.Printf("ERROR: Failed to resolve scenario for scheduler %d: %v", schedulerID, err)
			util.RespondError(w, http.StatusInternalServerError, "failed to resolve scheduler")
			return
		}
		scenario, err := sql.GetScenarioByID(r.Context(), pool, int(userID), scenarioID)
		if err != nil {
			log.Printf("ERROR: Failed to load scenario %d for scheduler %d: %v", scenarioID, schedulerID, err)
			util.RespondError(w, http.StatusInternalServerError, "failed to load scenario")
			return
		}

		dates, err := engine.Occurrences(scheduler.ToEngine(), scenario.ToEngine().AllRules(), *from, *to)
		if err != nil {
			log.Printf("ERROR: Failed to generate occurrences for scheduler %d: %v", schedulerID, err)
			util.RespondError(w, engineErrorStatus(err), err.Error())
			return
		}
		util.RespondOK(w, http.StatusOK, dates, "")
	}
}
