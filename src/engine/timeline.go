package engine

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Effect is one pending balance change: a transactor firing on a date.
// Amount is already signed.
type Effect struct {
	Date         Date            `json:"date"`
	TransactorID int             `json:"transactor_id"`
	Label        string          `json:"label"`
	Amount       decimal.Decimal `json:"amount"`
}

// BuildTimeline merges the occurrence streams of every rule of every
// transactor into one list sorted by date ascending, clipped to [from, to].
// Same-date effects keep the transactor's position in the scenario list,
// then the rule's position within the transactor, so the result is
// deterministic no matter how storage returned the records.
func BuildTimeline(s Scenario, from, to Date) ([]Effect, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: %s is before %s", ErrInvalidRange, to, from)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	all := s.AllRules()
	var timeline []Effect
	for _, t := range s.Transactors {
		amount := t.SignedAmount()
		label := fmt.Sprintf("%s %s", t.Description, formatSigned(amount))
		for _, rule := range t.Rules {
			dates, err := Occurrences(rule, all, from, to)
			if err != nil {
				return nil, err
			}
			for _, d := range dates {
				timeline = append(timeline, Effect{
					Date:         d,
					TransactorID: t.ID,
					Label:        label,
					Amount:       amount,
				})
			}
		}
	}

	// Stable sort keeps the transactor/rule order for equal dates.
	sort.SliceStable(timeline, func(i, j int) bool {
		return timeline[i].Date.Before(timeline[j].Date)
	})
	return timeline, nil
}

func formatSigned(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return amount.String()
	}
	return "+" + amount.String()
}
