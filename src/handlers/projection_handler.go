package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	db "forecast-server/src/db"
	sql "forecast-server/src/db/sql"
	"forecast-server/src/engine"
	plaidclient "forecast-server/src/plaid"
	"forecast-server/src/util"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/plaid/plaid-go/v41/plaid"
	"github.com/shopspring/decimal"
)

// parseRangeParams reads the optional from/to query parameters in the
// DD/MM/YYYY convention.
func parseRangeParams(r *http.Request) (*engine.Date, *engine.Date, error) {
	var from, to *engine.Date
	if raw := r.URL.Query().Get("from"); raw != "" {
		d, err := engine.ParseDateDMY(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("from must be DD/MM/YYYY")
		}
		from = &d
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		d, err := engine.ParseDateDMY(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("to must be DD/MM/YYYY")
		}
		to = &d
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, fmt.Errorf("to is before from")
	}
	return from, to, nil
}

// engineErrorStatus maps the engine's sentinel errors to HTTP statuses.
func engineErrorStatus(err error) int {
	switch {
	case errors.Is(err, engine.ErrInvalidDate),
		errors.Is(err, engine.ErrInvalidRule),
		errors.Is(err, engine.ErrInvalidRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// GetScenarioProjection runs the balance projection for one scenario.
// Range defaults to the scenario's stored window; the starting balance can
// be overridden with ?start_balance= or seeded from the user's linked bank
// account with ?seed=live.
func GetScenarioProjection(plaidClient *plaid.APIClient, pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		scenarioIDStr := chi.URLParam(r, "scenario_id")
		scenarioID, err := strconv.Atoi(scenarioIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid scenario id param: %s", scenarioIDStr)
			util.RespondError(w, http.StatusBadRequest, "invalid scenario id")
			return
		}

		from, to, err := parseRangeParams(r)
		if err != nil {
			log.Printf("ERROR: Invalid range params for user %d: %v", userID, err)
			util.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}

		var override *decimal.Decimal
		if raw := r.URL.Query().Get("start_balance"); raw != "" {
			parsed, err := decimal.NewFromString(raw)
			if err != nil {
				log.Printf("ERROR: Invalid start_balance param %q for user %d", raw, userID)
				util.RespondError(w, http.StatusBadRequest, "start_balance must be a decimal number")
				return
			}
			override = &parsed
		}
		seedLive := r.URL.Query().Get("seed") == "live"
		if seedLive && override != nil {
			util.RespondError(w, http.StatusBadRequest, "start_balance and seed=live are mutually exclusive")
			return
		}

		record, err := sql.GetScenarioByID(r.Context(), pool, int(userID), scenarioID)
		if err != nil {
			log.Printf("ERROR: Scenario id %d not found for user %d: %v", scenarioID, userID, err)
			util.RespondError(w, http.StatusNotFound, "scenario not found")
			return
		}
		scenario := record.ToEngine()

		// Fall back to the scenario's default window where the caller
		// left the range open.
		if from == nil {
			from = scenario.StartDate
		}
		if to == nil {
			to = scenario.EndDate
		}
		if from == nil || to == nil {
			util.RespondError(w, http.StatusBadRequest, "projection range is open-ended; pass from and to (DD/MM/YYYY)")
			return
		}

		if seedLive {
			if plaidClient == nil {
				util.RespondError(w, http.StatusBadRequest, "live balance seeding is not configured")
				return
			}
			balance, err := liveBalanceForUser(r, plaidClient, pool, userID)
			if err != nil {
				log.Printf("ERROR: Failed to fetch live balance for user %d: %v", userID, err)
				util.RespondError(w, http.StatusBadGateway, "failed to fetch live balance")
				return
			}
			override = &balance
		}

		cacheKey := projectionCacheKey(int(userID), scenarioID, *from, *to, override)
		if !seedLive {
			if cached, found := db.Cache.Get(cacheKey); found {
				util.RespondOK(w, http.StatusOK, cached, "")
				return
			}
		}

		projection, err := engine.ProjectScenario(scenario, *from, *to, override)
		if err != nil {
			log.Printf("ERROR: Projection failed for scenario %d, user %d: %v", scenarioID, userID, err)
			util.RespondError(w, engineErrorStatus(err), err.Error())
			return
		}
		if len(projection.Diagnostics) > 0 {
			log.Printf("INFO: Projection for scenario %d produced %d diagnostics", scenarioID, len(projection.Diagnostics))
		}

		if !seedLive {
			db.SetProjectionCache(cacheKey, projection)
		}
		util.RespondOK(w, http.StatusOK, projection, "")
	}
}

func projectionCacheKey(userID, scenarioID int, from, to engine.Date, override *decimal.Decimal) string {
	balance := "stored"
	if override != nil {
		balance = override.String()
	}
	return fmt.Sprintf("projection:%d:%d:%s:%s:%s", userID, scenarioID, from, to, balance)
}

// liveBalanceForUser sums the current balances of every account behind the
// user's linked Plaid items.
func liveBalanceForUser(r *http.Request, plaidClient *plaid.APIClient, pool *pgxpool.Pool, userID int64) (decimal.Decimal, error) {
	items, err := sql.GetPlaidItemsSQL(r.Context(), pool, userID)
	if err != nil {
		return decimal.Zero, err
	}
	if len(items) == 0 {
		return decimal.Zero, fmt.Errorf("no linked bank accounts")
	}

	total := decimal.Zero
	for _, item := range items {
		balance, err := plaidclient.LiveBalance(r.Context(), plaidClient, item.AccessToken)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(balance)
	}
	return total, nil
}
