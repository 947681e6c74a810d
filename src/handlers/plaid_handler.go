package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	sql "forecast-server/src/db/sql"
	"forecast-server/src/util"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/plaid/plaid-go/v41/plaid"
	"github.com/shopspring/decimal"
)

func CreateLinkToken(plaidClient *plaid.APIClient, pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if plaidClient == nil {
			util.RespondError(w, http.StatusBadRequest, "bank linking is not configured")
			return
		}
		userID := r.Context().Value("user_id").(int64)

		user := plaid.LinkTokenCreateRequestUser{
			ClientUserId: strconv.FormatInt(userID, 10),
		}
		request := plaid.NewLinkTokenCreateRequest(
			"Forecast",
			"en",
			[]plaid.CountryCode{plaid.COUNTRYCODE_US},
		)
		request.SetUser(user)
		request.SetProducts([]plaid.Products{plaid.PRODUCTS_TRANSACTIONS})
		resp, _, err := plaidClient.PlaidApi.LinkTokenCreate(context.Background()).LinkTokenCreateRequest(*request).Execute()
		if err != nil {
			log.Printf("ERROR: Plaid link token creation failed for user %d: %v", userID, err)
			util.RespondError(w, http.StatusInternalServerError, "failed to create link token")
			return
		}

		util.RespondOK(w, http.StatusCreated, resp.GetLinkToken(), "")
	}
}

func ExchangePublicToken(plaidClient *plaid.APIClient, pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if plaidClient == nil {
			util.RespondError(w, http.StatusBadRequest, "bank linking is not configured")
			return
		}
		userID := r.Context().Value("user_id").(int64)

		var req struct {
			PublicToken string `json:"public_token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode exchange public token request body: %v", err)
			util.RespondError(w, http.StatusBadRequest, "invalid request")
			return
		}

		exchangeReq := plaid.NewItemPublicTokenExchangeRequest(req.PublicToken)
		exchangeResp, _, err := plaidClient.PlaidApi.ItemPublicTokenExchange(context.Background()).ItemPublicTokenExchangeRequest(
			*exchangeReq,
		).Execute()

		if err != nil {
			log.Printf("ERROR: Plaid public token exchange failed for user %d: %v", userID, err)
			util.RespondError(w, http.StatusInternalServerError, "failed to exchange public token")
			return
		}

		accessToken := exchangeResp.GetAccessToken()
		itemID := exchangeResp.GetItemId()

		if err := sql.SavePlaidItem(r.Context(), pool, userID, itemID, accessToken); err != nil {
			log.Printf("ERROR: Failed to save plaid item for user %d: %v", userID, err)
			util.RespondError(w, http.StatusInternalServerError, "failed to save plaid item")
			return
		}

		log.Printf("INFO: Successfully exchanged public token and saved plaid item for user %d, item %s", userID, itemID)
		util.RespondOK(w, http.StatusCreated, map[string]string{"item_id": itemID}, "bank account linked")
	}
}

// GetLiveBalance returns the combined current balance of the user's linked
// accounts, the same figure ?seed=live feeds into a projection.
func GetLiveBalance(plaidClient *plaid.APIClient, pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if plaidClient == nil {
			util.RespondError(w, http.StatusBadRequest, "bank linking is not configured")
			return
		}
		userID := r.Context().Value("user_id").(int64)

		balance, err := liveBalanceForUser(r, plaidClient, pool, userID)
		if err != nil {
			log.Printf("ERROR: Failed to fetch live balance for user %d: %v", userID, err)
			util.RespondError(w, http.StatusBadGateway, "failed to fetch live balance")
			return
		}
		util.RespondOK(w, http.StatusOK, map[string]decimal.Decimal{"balance": balance}, "")
	}
}
