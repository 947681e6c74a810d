package handlers

import (
	"errors"
	"testing"

	"forecast-server/src/engine"

	"github.com/shopspring/decimal"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("decimal %q: %v", s, err)
	}
	return d
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestScenarioRequestToModel(t *testing.T) {
	t.Parallel()

	req := scenarioRequest{
		Title:        "Emergency fund",
		StartDate:    strPtr("2024-01-01"),
		EndDate:      strPtr("2024-06-30"),
		StartBalance: mustDecimal(t, "1000"),
		Transactors: []transactorRequest{
			{
				Description: "Salary",
				Value:       mustDecimal(t, "2000"),
				IsAddition:  true,
				Schedulers: []schedulerRequest{
					{SchedulerCode: "MONTH_DAY", Day: intPtr(31)},
				},
			},
		},
	}

	scenario, err := req.toModel(7)
	if err != nil {
		t.Fatalf("toModel: %v", err)
	}
	if scenario.UserID != 7 {
		t.Fatalf("got user id %d", scenario.UserID)
	}
	if len(scenario.Transactors) != 1 || len(scenario.Transactors[0].Schedulers) != 1 {
		t.Fatal("expected one transactor with one scheduler")
	}
	if got := scenario.StartDate.UTC().Format("2006-01-02"); got != "2024-01-01" {
		t.Fatalf("got start date %s", got)
	}
}

func TestScenarioRequestRejectsInvertedWindow(t *testing.T) {
	t.Parallel()

	req := scenarioRequest{
		Title:     "Backwards",
		StartDate: strPtr("2024-06-30"),
		EndDate:   strPtr("2024-01-01"),
	}
	_, err := req.toModel(1)
	if !errors.Is(err, engine.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestScenarioRequestRejectsNegativeTransactorValue(t *testing.T) {
	t.Parallel()

	req := scenarioRequest{
		Title: "Negative",
		Transactors: []transactorRequest{
			{Description: "Bad", Value: mustDecimal(t, "-5")},
		},
	}
	_, err := req.toModel(1)
	if !errors.Is(err, engine.ErrInvalidRule) {
		t.Fatalf("expected ErrInvalidRule, got %v", err)
	}
}

func TestSchedulerRequestValidatesVariantFields(t *testing.T) {
	t.Parallel()

	// A month-day scheduler must not carry interval fields.
	req := schedulerRequest{
		SchedulerCode: "MONTH_DAY",
		Day:           intPtr(15),
		Step:          intPtr(3),
	}
	if _, err := req.toModel(); !errors.Is(err, engine.ErrInvalidRule) {
		t.Fatalf("expected ErrInvalidRule, got %v", err)
	}

	// Malformed date strings surface as errors, not zero dates.
	bad := schedulerRequest{
		SchedulerCode: "INTERVAL",
		StartDate:     strPtr("01/06/2024"),
		Step:          intPtr(7),
	}
	if _, err := bad.toModel(); err == nil {
		t.Fatal("expected error for DD/MM/YYYY in a body field")
	}
}
