package plaid

import (
	"context"
	"log"

	"github.com/plaid/plaid-go/v41/plaid"
	"github.com/shopspring/decimal"
)

func NewPlaidClient(clientID, secret, env string) *plaid.APIClient {
	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", clientID)
	configuration.AddDefaultHeader("PLAID-SECRET", secret)

	switch env {
	case "sandbox":
		configuration.UseEnvironment(plaid.Sandbox)
	case "production":
		configuration.UseEnvironment(plaid.Production)
	default:
		log.Fatalf("Invalid Plaid environment: %s", env)
	}

	return plaid.NewAPIClient(configuration)
}

// LiveBalance sums the current balances of all accounts behind one access
// token. Used to seed a projection's starting balance from real data.
func LiveBalance(ctx context.Context, client *plaid.APIClient, accessToken string) (decimal.Decimal, error) {
	request := plaid.NewAccountsBalanceGetRequest(accessToken)
	resp, _, err := client.PlaidApi.AccountsBalanceGet(ctx).AccountsBalanceGetRequest(*request).Execute()
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, account := range resp.GetAccounts() {
		balances := account.GetBalances()
		if current, ok := balances.GetCurrentOk(); ok && current != nil {
			total = total.Add(decimal.NewFromFloat(*current))
		}
	}
	return total, nil
}
