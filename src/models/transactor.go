package models

import (
	"time"

	"forecast-server/src/engine"

	"github.com/shopspring/decimal"
)

type Transactor struct {
	ID          int             `json:"id"`
	ScenarioID  int             `json:"scenario_id"`
	Description string          `json:"description"`
	Value       decimal.Decimal `json:"value"`
	IsAddition  bool            `json:"is_addition"`
	Position    int             `json:"position"`
	Schedulers  []Scheduler     `json:"schedulers"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (t *Transactor) ToEngine() engine.Transactor {
	et := engine.Transactor{
		ID:          t.ID,
		Description: t.Description,
		Value:       t.Value,
		IsAddition:  t.IsAddition,
	}
	for _, s := range t.Schedulers {
		et.Rules = append(et.Rules, s.ToEngine())
	}
	return et
}
