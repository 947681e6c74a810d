package models

import "time"

type PlaidItem struct {
	ID          int       `json:"id"`
	UserID      int64     `json:"user_id"`
	AccessToken string    `json:"-"`
	ItemID      string    `json:"item_id"`
	CreatedAt   time.Time `json:"created_at"`
}
