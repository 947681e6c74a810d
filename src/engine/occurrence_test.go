package engine

import (
	"errors"
	"testing"
	"time"
)

func datesEqual(t *testing.T, got []Date, want ...Date) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d occurrences, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("occurrence %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestIntervalOccurrences(t *testing.T) {
	t.Parallel()

	rule := Rule{ID: 1, Kind: KindInterval, StartDate: datePtr(2024, time.January, 1), Step: intPtr(7)}
	got, err := Occurrences(rule, nil, MustDate(2024, time.January, 1), MustDate(2024, time.January, 31))
	if err != nil {
		t.Fatalf("occurrences: %v", err)
	}
	datesEqual(t, got,
		MustDate(2024, time.January, 1),
		MustDate(2024, time.January, 8),
		MustDate(2024, time.January, 15),
		MustDate(2024, time.January, 22),
		MustDate(2024, time.January, 29),
	)
}

func TestIntervalSkipsForwardFromDistantAnchor(t *testing.T) {
	t.Parallel()

	// Anchor ~54 years before the range. With a naive prefix scan this
	// would iterate ~20k candidates; the algebraic skip lands directly on
	// the first in-range occurrence.
	rule := Rule{ID: 1, Kind: KindInterval, StartDate: datePtr(1970, time.January, 1), Step: intPtr(3)}
	got, err := Occurrences(rule, nil, MustDate(2024, time.June, 1), MustDate(2024, time.June, 10))
	if err != nil {
		t.Fatalf("occurrences: %v", err)
	}
	// 1970-01-01 + k*3 first lands in range on 2024-06-01 (19875 days = 6625*3).
	datesEqual(t, got,
		MustDate(2024, time.June, 1),
		MustDate(2024, time.June, 4),
		MustDate(2024, time.June, 7),
		MustDate(2024, time.June, 10),
	)
}

func TestIntervalAnchorAfterRangeYieldsNothing(t *testing.T) {
	t.Parallel()

	rule := Rule{ID: 1, Kind: KindInterval, StartDate: datePtr(2025, time.January, 1), Step: intPtr(7)}
	got, err := Occurrences(rule, nil, MustDate(2024, time.January, 1), MustDate(2024, time.December, 31))
	if err != nil {
		t.Fatalf("occurrences: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no occurrences before the anchor, got %v", got)
	}
}

func TestIntervalInvalidStep(t *testing.T) {
	t.Parallel()

	rule := Rule{ID: 1, Kind: KindInterval, StartDate: datePtr(2024, time.January, 1), Step: intPtr(0)}
	got, err := Occurrences(rule, nil, MustDate(2024, time.January, 1), MustDate(2024, time.January, 31))
	if !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("expected ErrInvalidRule, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected no partial output, got %v", got)
	}
}

func TestMonthDayClampsShortMonths(t *testing.T) {
	t.Parallel()

	rule := Rule{ID: 1, Kind: KindMonthDay, Day: intPtr(31)}
	got, err := Occurrences(rule, nil, MustDate(2024, time.January, 1), MustDate(2024, time.April, 30))
	if err != nil {
		t.Fatalf("occurrences: %v", err)
	}
	datesEqual(t, got,
		MustDate(2024, time.January, 31),
		MustDate(2024, time.February, 29), // leap year clamp
		MustDate(2024, time.March, 31),
		MustDate(2024, time.April, 30),
	)

	got, err = Occurrences(rule, nil, MustDate(2023, time.February, 1), MustDate(2023, time.February, 28))
	if err != nil {
		t.Fatalf("occurrences: %v", err)
	}
	datesEqual(t, got, MustDate(2023, time.February, 28))
}

func TestMonthDayRespectsRangeEdges(t *testing.T) {
	t.Parallel()

	rule := Rule{ID: 1, Kind: KindMonthDay, Day: intPtr(15)}
	got, err := Occurrences(rule, nil, MustDate(2024, time.January, 16), MustDate(2024, time.March, 14))
	if err != nil {
		t.Fatalf("occurrences: %v", err)
	}
	// January's 15th is before the range, March's after it.
	datesEqual(t, got, MustDate(2024, time.February, 15))
}

func TestNthWeekdaySkipsMissingOrdinal(t *testing.T) {
	t.Parallel()

	// 5th Monday: February 2021 has four Mondays, March 2021 has five.
	rule := Rule{ID: 1, Kind: KindNthWeekday, NthDay: intPtr(EncodeNthDay(time.Monday, 5))}

	got, err := Occurrences(rule, nil, MustDate(2021, time.February, 1), MustDate(2021, time.February, 28))
	if err != nil {
		t.Fatalf("occurrences: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("february 2021 should contribute no 5th monday, got %v", got)
	}

	got, err = Occurrences(rule, nil, MustDate(2021, time.March, 1), MustDate(2021, time.March, 31))
	if err != nil {
		t.Fatalf("occurrences: %v", err)
	}
	datesEqual(t, got, MustDate(2021, time.March, 29))
}

func TestNthWeekdayFirstAndThird(t *testing.T) {
	t.Parallel()

	// 1st Friday of each month, Jan-Mar 2024: Jan 5, Feb 2, Mar 1.
	first := Rule{ID: 1, Kind: KindNthWeekday, NthDay: intPtr(EncodeNthDay(time.Friday, 1))}
	got, err := Occurrences(first, nil, MustDate(2024, time.January, 1), MustDate(2024, time.March, 31))
	if err != nil {
		t.Fatalf("occurrences: %v", err)
	}
	datesEqual(t, got,
		MustDate(2024, time.January, 5),
		MustDate(2024, time.February, 2),
		MustDate(2024, time.March, 1),
	)

	// 3rd Wednesday of June 2024 is the 19th.
	third := Rule{ID: 2, Kind: KindNthWeekday, NthDay: intPtr(EncodeNthDay(time.Wednesday, 3))}
	got, err = Occurrences(third, nil, MustDate(2024, time.June, 1), MustDate(2024, time.June, 30))
	if err != nil {
		t.Fatalf("occurrences: %v", err)
	}
	datesEqual(t, got, MustDate(2024, time.June, 19))
}

func TestEventTriggeredOffsetsReferencedRule(t *testing.T) {
	t.Parallel()

	monthDay := Rule{ID: 1, Kind: KindMonthDay, Day: intPtr(1)}
	event := Rule{ID: 2, Kind: KindEventTriggered, TriggerID: intPtr(1), Step: intPtr(3)}

	got, err := Occurrences(event, []Rule{monthDay}, MustDate(2024, time.January, 1), MustDate(2024, time.March, 31))
	if err != nil {
		t.Fatalf("occurrences: %v", err)
	}
	datesEqual(t, got,
		MustDate(2024, time.January, 4),
		MustDate(2024, time.February, 4),
		MustDate(2024, time.March, 4),
	)
}

func TestEventTriggeredCatchesTriggerOutsideRange(t *testing.T) {
	t.Parallel()

	// Trigger fires Jan 31; the +3 offset lands Feb 3 inside a
	// February-only range even though the trigger itself is outside it.
	monthDay := Rule{ID: 1, Kind: KindMonthDay, Day: intPtr(31)}
	event := Rule{ID: 2, Kind: KindEventTriggered, TriggerID: intPtr(1), Step: intPtr(3)}

	got, err := Occurrences(event, []Rule{monthDay}, MustDate(2024, time.February, 1), MustDate(2024, time.February, 28))
	if err != nil {
		t.Fatalf("occurrences: %v", err)
	}
	datesEqual(t, got, MustDate(2024, time.February, 3))
}

func TestEventTriggeredNegativeOffset(t *testing.T) {
	t.Parallel()

	// "2 days before payday" style rule.
	interval := Rule{ID: 1, Kind: KindInterval, StartDate: datePtr(2024, time.January, 10), Step: intPtr(14)}
	event := Rule{ID: 2, Kind: KindEventTriggered, TriggerID: intPtr(1), Step: intPtr(-2)}

	got, err := Occurrences(event, []Rule{interval}, MustDate(2024, time.January, 1), MustDate(2024, time.January, 31))
	if err != nil {
		t.Fatalf("occurrences: %v", err)
	}
	datesEqual(t, got,
		MustDate(2024, time.January, 8),
		MustDate(2024, time.January, 22),
	)
}

func TestEventTriggeredChainAndFailureModes(t *testing.T) {
	t.Parallel()

	monthDay := Rule{ID: 1, Kind: KindMonthDay, Day: intPtr(1)}
	first := Rule{ID: 2, Kind: KindEventTriggered, TriggerID: intPtr(1), Step: intPtr(2)}
	second := Rule{ID: 3, Kind: KindEventTriggered, TriggerID: intPtr(2), Step: intPtr(2)}

	got, err := Occurrences(second, []Rule{monthDay, first}, MustDate(2024, time.January, 1), MustDate(2024, time.January, 31))
	if err != nil {
		t.Fatalf("chained occurrences: %v", err)
	}
	datesEqual(t, got, MustDate(2024, time.January, 5))

	dangling := Rule{ID: 4, Kind: KindEventTriggered, TriggerID: intPtr(99), Step: intPtr(1)}
	if _, err := Occurrences(dangling, []Rule{monthDay}, MustDate(2024, time.January, 1), MustDate(2024, time.January, 31)); !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("dangling trigger should fail with ErrInvalidRule, got %v", err)
	}

	cycleA := Rule{ID: 5, Kind: KindEventTriggered, TriggerID: intPtr(6), Step: intPtr(1)}
	cycleB := Rule{ID: 6, Kind: KindEventTriggered, TriggerID: intPtr(5), Step: intPtr(1)}
	if _, err := Occurrences(cycleA, []Rule{cycleA, cycleB}, MustDate(2024, time.January, 1), MustDate(2024, time.January, 31)); !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("trigger cycle should fail with ErrInvalidRule, got %v", err)
	}

	selfRef := Rule{ID: 7, Kind: KindEventTriggered, TriggerID: intPtr(7), Step: intPtr(1)}
	if _, err := Occurrences(selfRef, []Rule{selfRef}, MustDate(2024, time.January, 1), MustDate(2024, time.January, 31)); !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("self-trigger should fail with ErrInvalidRule, got %v", err)
	}
}

func TestOccurrencesAreIdempotentAndOrdered(t *testing.T) {
	t.Parallel()

	rules := []Rule{
		{ID: 1, Kind: KindInterval, StartDate: datePtr(2023, time.November, 3), Step: intPtr(11)},
		{ID: 2, Kind: KindMonthDay, Day: intPtr(29)},
		{ID: 3, Kind: KindNthWeekday, NthDay: intPtr(EncodeNthDay(time.Thursday, 4))},
	}
	from, to := MustDate(2024, time.January, 1), MustDate(2024, time.June, 30)

	for _, rule := range rules {
		first, err := Occurrences(rule, nil, from, to)
		if err != nil {
			t.Fatalf("rule %d: %v", rule.ID, err)
		}
		second, err := Occurrences(rule, nil, from, to)
		if err != nil {
			t.Fatalf("rule %d second call: %v", rule.ID, err)
		}
		datesEqual(t, second, first...)
		for i := 1; i < len(first); i++ {
			if first[i].Compare(first[i-1]) <= 0 {
				t.Fatalf("rule %d: occurrences not strictly increasing at %d: %v", rule.ID, i, first)
			}
		}
	}
}

func TestOccurrencesInvalidRange(t *testing.T) {
	t.Parallel()

	rule := Rule{ID: 1, Kind: KindMonthDay, Day: intPtr(1)}
	if _, err := Occurrences(rule, nil, MustDate(2024, time.February, 1), MustDate(2024, time.January, 1)); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestOccurrencesSingleDayRange(t *testing.T) {
	t.Parallel()

	rule := Rule{ID: 1, Kind: KindInterval, StartDate: datePtr(2024, time.January, 1), Step: intPtr(7)}
	day := MustDate(2024, time.January, 15)
	got, err := Occurrences(rule, nil, day, day)
	if err != nil {
		t.Fatalf("occurrences: %v", err)
	}
	datesEqual(t, got, day)
}
