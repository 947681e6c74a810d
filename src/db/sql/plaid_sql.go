package db

import (
	"context"

	"forecast-server/src/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

func GetPlaidItemsSQL(ctx context.Context, pool *pgxpool.Pool, userID int64) ([]models.PlaidItem, error) {
	query := `SELECT id, user_id, access_token, item_id, created_at FROM plaid_items WHERE user_id = $1`

	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.PlaidItem
	for rows.Next() {
		var item models.PlaidItem
		err := rows.Scan(&item.ID, &item.UserID, &item.AccessToken, &item.ItemID, &item.CreatedAt)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func SavePlaidItem(ctx context.Context, pool *pgxpool.Pool, userID int64, itemID, accessToken string) error {
	query := `
		INSERT INTO plaid_items (user_id, item_id, access_token)
		VALUES ($1, $2, $3)
		ON CONFLICT (item_id) DO UPDATE SET access_token = EXCLUDED.access_token
	`
	_, err := pool.Exec(ctx, query, userID, itemID, accessToken)
	return err
}
