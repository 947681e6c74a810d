package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Transactor is a named monetary effect bound to one or more recurrence
// rules. Value is an unsigned magnitude; the sign of the effect comes from
// IsAddition alone.
type Transactor struct {
	ID          int
	Description string
	Value       decimal.Decimal
	IsAddition  bool
	Rules       []Rule
}

// Apply returns the balance after this transactor's effect.
func (t Transactor) Apply(balance decimal.Decimal) decimal.Decimal {
	return balance.Add(t.SignedAmount())
}

// SignedAmount is Value signed by IsAddition.
func (t Transactor) SignedAmount() decimal.Decimal {
	if t.IsAddition {
		return t.Value
	}
	return t.Value.Neg()
}

// Scenario is a starting balance, an optional default projection window and
// an ordered list of transactors. The list order is the tie-break order for
// same-date effects, so it is part of the scenario's meaning, not an
// artifact of retrieval.
type Scenario struct {
	ID           int
	Title        string
	Description  string
	StartDate    *Date
	EndDate      *Date
	StartBalance decimal.Decimal
	Transactors  []Transactor
}

// Validate checks the scenario's structural invariants: a coherent date
// window and non-negative transactor magnitudes. Rule-level validation
// happens during generation.
func (s Scenario) Validate() error {
	if s.StartDate != nil && s.EndDate != nil && s.EndDate.Before(*s.StartDate) {
		return fmt.Errorf("%w: scenario %d ends %s before it starts %s", ErrInvalidRange, s.ID, s.EndDate, s.StartDate)
	}
	for _, t := range s.Transactors {
		if t.Value.IsNegative() {
			return fmt.Errorf("%w: transactor %d has negative value %s", ErrInvalidRule, t.ID, t.Value)
		}
	}
	return nil
}

// AllRules flattens every rule of every transactor, preserving transactor
// then rule order. Event-triggered rules may reference any rule in the
// scenario, so generation always resolves against this full set.
func (s Scenario) AllRules() []Rule {
	var rules []Rule
	for _, t := range s.Transactors {
		rules = append(rules, t.Rules...)
	}
	return rules
}
