package api

import (
	"net/http"

	"forecast-server/src/handlers"
	"forecast-server/src/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/plaid/plaid-go/v41/plaid"
)

func NewRouter(pool *pgxpool.Pool, plaidClient *plaid.APIClient, isDemo bool) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Use(middleware.DemoModeMiddleware(isDemo))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", handlers.Login(pool))
		r.Post("/register", handlers.Register(pool))

		// Protected routes
		r.With(middleware.JWTAuthMiddleware).Group(func(r chi.Router) {
			// User
			r.Get("/user/{user_id}", handlers.GetUser(pool))
			r.Put("/user", handlers.UpdateUser(pool))
			r.Post("/user/change-password", handlers.ChangePassword(pool))
			r.Delete("/user", handlers.DeleteUser(pool))

			// Scenarios
			r.Post("/scenario", handlers.CreateScenario(pool))
			r.Get("/scenario", handlers.GetAllScenarios(pool))
			r.Get("/scenario/{scenario_id}", handlers.GetScenarioByID(pool))
			r.Put("/scenario/{scenario_id}", handlers.UpdateScenario(pool))
			r.Delete("/scenario/{scenario_id}", handlers.DeleteScenario(pool))

			// Transactors
			r.Post("/scenario/{scenario_id}/transactor", handlers.CreateTransactor(pool))
			r.Get("/transactor/{transactor_id}", handlers.GetTransactorByID(pool))
			r.Put("/transactor/{transactor_id}", handlers.UpdateTransactor(pool))
			r.Delete("/transactor/{transactor_id}", handlers.DeleteTransactor(pool))

			// Schedulers
			r.Post("/transactor/{transactor_id}/scheduler", handlers.CreateScheduler(pool))
			r.Get("/scheduler/{scheduler_id}", handlers.GetSchedulerByID(pool))
			r.Put("/scheduler/{scheduler_id}", handlers.UpdateScheduler(pool))
			r.Delete("/scheduler/{scheduler_id}", handlers.DeleteScheduler(pool))
			r.Get("/scheduler/{scheduler_id}/occurrences", handlers.GetSchedulerOccurrences(pool))

			// Projection
			r.Get("/scenario/{scenario_id}/projection", handlers.GetScenarioProjection(plaidClient, pool))

			// Plaid
			r.Post("/plaid/create-link-token", handlers.CreateLinkToken(plaidClient, pool))
			r.Post("/plaid/exchange-public-token", handlers.ExchangePublicToken(plaidClient, pool))
			r.Get("/plaid/balance", handlers.GetLiveBalance(plaidClient, pool))
		})
	})

	return r
}
