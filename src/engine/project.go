package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Point is one day of a projected balance series. Balance is the balance
// after every effect of that day has applied; Applied lists what fired.
type Point struct {
	Date    Date            `json:"date"`
	Balance decimal.Decimal `json:"balance"`
	Applied []string        `json:"applied,omitempty"`
}

// Diagnostic records a non-fatal problem encountered during projection,
// such as an effect referencing a transactor that no longer exists.
type Diagnostic struct {
	Date         Date   `json:"date"`
	TransactorID int    `json:"transactor_id"`
	Reason       string `json:"reason"`
}

// Projection is the caller-facing result: a gap-free daily series plus
// best-effort diagnostics.
type Projection struct {
	Points       []Point         `json:"points"`
	FinalBalance decimal.Decimal `json:"final_balance"`
	Diagnostics  []Diagnostic    `json:"diagnostics,omitempty"`
}

// Project replays a merged timeline against a starting balance, emitting
// one point per calendar day of [from, to] inclusive. Days without effects
// repeat the prior balance, so the series always has exactly
// DaysBetween(from, to)+1 points.
//
// transactors is the set of live transactors; effects referencing an ID
// outside it are skipped and reported as diagnostics rather than failing
// the projection, since user edits can transiently leave stale references
// in a stored timeline.
func Project(startBalance decimal.Decimal, timeline []Effect, from, to Date, transactors []Transactor) (*Projection, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: %s is before %s", ErrInvalidRange, to, from)
	}

	known := make(map[int]bool, len(transactors))
	for _, t := range transactors {
		known[t.ID] = true
	}

	result := &Projection{Points: make([]Point, 0, DaysBetween(from, to)+1)}
	balance := startBalance
	i := 0
	// Effects dated before the range never apply.
	for i < len(timeline) && timeline[i].Date.Before(from) {
		i++
	}
	for day := from; !day.After(to); day = day.AddDays(1) {
		var applied []string
		for i < len(timeline) && timeline[i].Date.Equal(day) {
			e := timeline[i]
			i++
			if !known[e.TransactorID] {
				result.Diagnostics = append(result.Diagnostics, Diagnostic{
					Date:         e.Date,
					TransactorID: e.TransactorID,
					Reason:       "effect references a transactor not in the scenario",
				})
				continue
			}
			balance = balance.Add(e.Amount)
			applied = append(applied, e.Label)
		}
		result.Points = append(result.Points, Point{Date: day, Balance: balance, Applied: applied})
	}
	result.FinalBalance = balance
	return result, nil
}

// ProjectScenario is the single entry point composing timeline merge and
// simulation. A nil startBalanceOverride uses the scenario's stored
// starting balance.
func ProjectScenario(s Scenario, from, to Date, startBalanceOverride *decimal.Decimal) (*Projection, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: %s is before %s", ErrInvalidRange, to, from)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	timeline, err := BuildTimeline(s, from, to)
	if err != nil {
		return nil, err
	}

	start := s.StartBalance
	if startBalanceOverride != nil {
		start = *startBalanceOverride
	}
	return Project(start, timeline, from, to, s.Transactors)
}
