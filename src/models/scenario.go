package models

import (
	"time"

	"forecast-server/src/engine"

	"github.com/shopspring/decimal"
)

type Scenario struct {
	ID           int             `json:"id"`
	UserID       int             `json:"user_id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	StartDate    *time.Time      `json:"start_date,omitempty"`
	EndDate      *time.Time      `json:"end_date,omitempty"`
	StartBalance decimal.Decimal `json:"start_balance"`
	Transactors  []Transactor    `json:"transactors"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ToEngine converts the stored record tree into the pure engine value.
// Transactor and scheduler order follows the stored position columns, which
// the SQL layer already sorts by.
func (s *Scenario) ToEngine() engine.Scenario {
	es := engine.Scenario{
		ID:           s.ID,
		Title:        s.Title,
		Description:  s.Description,
		StartBalance: s.StartBalance,
	}
	if s.StartDate != nil {
		d := engine.FromTime(*s.StartDate)
		es.StartDate = &d
	}
	if s.EndDate != nil {
		d := engine.FromTime(*s.EndDate)
		es.EndDate = &d
	}
	for _, t := range s.Transactors {
		es.Transactors = append(es.Transactors, t.ToEngine())
	}
	return es
}
