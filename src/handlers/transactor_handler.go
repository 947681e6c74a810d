package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	sql "forecast-server/src/db/sql"
	"forecast-server/src/models"
	"forecast-server/src/util"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

func CreateTransactor(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		scenarioIDStr := chi.URLParam(r, "scenario_id")
		scenarioID, err := strconv.Atoi(scenarioIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid scenario id param: %s", scenarioIDStr)
			util.RespondError(w, http.StatusBadRequest, "invalid scenario id")
			return
		}
		var req struct {
			Description string          `json:"description"`
			Value       decimal.Decimal `json:"value"`
			IsAddition  bool            `json:"is_addition"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode create transactor request body for user %d: %v", userID, err)
			util.RespondError(w, http.StatusBadRequest, "invalid request")
			return
		}
		if req.Value.IsNegative() {
			log.Printf("ERROR: Negative transactor value %s for user %d", req.Value, userID)
			util.RespondError(w, http.StatusBadRequest, "value must not be negative")
			return
		}
		transactor := &models.Transactor{
			ScenarioID:  scenarioID,
			Description: req.Description,
			Value:       req.Value,
			IsAddition:  req.IsAddition,
		}
		created, err := sql.CreateTransactor(r.Context(), pool, int(userID), transactor)
		if err != nil {
			log.Printf("ERROR: Failed to create transactor for user %d in scenario %d: %v", userID, scenarioID, err)
			util.RespondError(w, http.StatusInternalServerError, "failed to create transactor")
			return
		}
		invalidateScenario(int(userID), scenarioID)
		log.Printf("INFO: Created transactor id %d in scenario %d for user %d", created.ID, scenarioID, userID)
		util.RespondOK(w, http.StatusCreated, created, "transactor created")
	}
}

func GetTransactorByID(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		transactorIDStr := chi.URLParam(r, "transactor_id")
		transactorID, err := strconv.Atoi(transactorIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid transactor id param: %s", transactorIDStr)
			util.RespondError(w, http.StatusBadRequest, "invalid transactor id")
			return
		}

		transactor, err := sql.GetTransactorByID(r.Context(), pool, int(userID), transactorID)
		if err != nil {
			log.Printf("ERROR: Transactor id %d not found for user %d: %v", transactorID, userID, err)
			util.RespondError(w, http.StatusNotFound, "transactor not found")
			return
		}
		util.RespondOK(w, http.StatusOK, transactor, "")
	}
}

func UpdateTransactor(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		transactorIDStr := chi.URLParam(r, "transactor_id")
		transactorID, err := strconv.Atoi(transactorIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid transactor id param: %s", transactorIDStr)
			util.RespondError(w, http.StatusBadRequest, "invalid transactor id")
			return
		}
		var req struct {
			Description string          `json:"description"`
			Value       decimal.Decimal `json:"value"`
			IsAddition  bool            `json:"is_addition"`
			Position    int             `json:"position"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode update transactor request body for user %d: %v", userID, err)
			util.RespondError(w, http.StatusBadRequest, "invalid request")
			return
		}
		if req.Value.IsNegative() {
			log.Printf("ERROR: Negative transactor value %s for user %d", req.Value, userID)
			util.RespondError(w, http.StatusBadRequest, "value must not be negative")
			return
		}
		transactor := &models.Transactor{
			ID:          transactorID,
			Description: req.Description,
			Value:       req.Value,
			IsAddition:  req.IsAddition,
			Position:    req.Position,
		}
		updated, err := sql.UpdateTransactor(r.Context(), pool, int(userID), transactor)
		if err != nil {
			log.Printf("ERROR: Failed to update transactor id %d for user %d: %v", transactorID, userID, err)
			util.RespondError(w, http.StatusInternalServerError, "failed to update transactor")
			return
		}
		invalidateScenario(int(userID), updated.ScenarioID)
		log.Printf("INFO: Updated transactor id %d for user %d", updated.ID, userID)
		util.RespondOK(w, http.StatusOK, updated, "transactor updated")
	}
}

func DeleteTransactor(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		transactorIDStr := chi.URLParam(r, "transactor_id")
		transactorID, err := strconv.Atoi(transactorIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid transactor id param: %s", transactorIDStr)
			util.RespondError(w, http.StatusBadRequest, "invalid transactor id")
			return
		}

		scenarioID, err := sql.GetScenarioIDForTransactor(r.Context(), pool, transactorID)
		if err != nil {
			log.Printf("ERROR: Transactor id %d not found for user %d: %v", transactorID, userID, err)
			util.RespondError(w, http.StatusNotFound, "transactor not found")
			return
		}

		err = sql.DeleteTransactor(r.Context(), pool, int(userID), transactorID)
		if err != nil {
			log.Printf("ERROR: Failed to delete transactor id %d for user %d: %v", transactorID, userID, err)
			util.RespondError(w, http.StatusInternalServerError, "failed to delete transactor")
			return
		}
		invalidateScenario(int(userID), scenarioID)
		log.Printf("INFO: Deleted transactor id %d for user %d", transactorID, userID)
		util.RespondOK(w, http.StatusOK, nil, "transactor deleted")
	}
}
