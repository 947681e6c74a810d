package engine

import (
	"fmt"
	"time"
)

// Occurrences computes the dates on which rule fires within [from, to],
// strictly increasing and de-duplicated. The computation is pure: a fresh
// call always recomputes, nothing is retained between calls.
//
// others supplies the candidate targets for event-triggered rules; it may
// be nil when rule is self-contained. A dangling or cyclic trigger
// reference fails with ErrInvalidRule.
func Occurrences(rule Rule, others []Rule, from, to Date) ([]Date, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: %s is before %s", ErrInvalidRange, to, from)
	}
	byID := make(map[int]Rule, len(others))
	for _, o := range others {
		byID[o.ID] = o
	}
	return generate(rule, byID, from, to, make(map[int]bool))
}

func generate(rule Rule, byID map[int]Rule, from, to Date, seen map[int]bool) ([]Date, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	switch rule.Kind {
	case KindInterval:
		return intervalOccurrences(*rule.StartDate, *rule.Step, from, to), nil
	case KindMonthDay:
		return monthDayOccurrences(*rule.Day, from, to), nil
	case KindNthWeekday:
		weekday, k, err := DecodeNthDay(*rule.NthDay)
		if err != nil {
			return nil, err
		}
		return nthWeekdayOccurrences(weekday, k, from, to), nil
	case KindEventTriggered:
		return eventOccurrences(rule, byID, from, to, seen)
	}
	return nil, fmt.Errorf("%w: unknown scheduler code %q", ErrInvalidRule, rule.Kind)
}

// intervalOccurrences emits anchor + k*step for k >= 0 inside the range.
// The first k landing inside the range is computed algebraically so an
// anchor far in the past costs the same as one inside the range.
func intervalOccurrences(anchor Date, step int, from, to Date) []Date {
	var k int
	if delta := DaysBetween(anchor, from); delta > 0 {
		k = (delta + step - 1) / step
	}
	var out []Date
	for d := anchor.AddDays(k * step); !d.After(to); d = d.AddDays(step) {
		out = append(out, d)
	}
	return out
}

// monthDayOccurrences fires once per month overlapping the range, on the
// requested day clamped to the month's last day. A day-31 rule fires on
// the 28th/29th of February rather than skipping it.
func monthDayOccurrences(day int, from, to Date) []Date {
	var out []Date
	for m := from.StartOfMonth(); !m.After(to); m = m.EndOfMonth().AddDays(1) {
		occ := m
		occ.Day = day
		if last := daysInMonth(m.Year, m.Month); day > last {
			occ.Day = last
		}
		if !occ.Before(from) && !occ.After(to) {
			out = append(out, occ)
		}
	}
	return out
}

// nthWeekdayOccurrences fires on the k-th weekday of each month overlapping
// the range. Months without a k-th occurrence contribute nothing.
func nthWeekdayOccurrences(weekday time.Weekday, k int, from, to Date) []Date {
	var out []Date
	for m := from.StartOfMonth(); !m.After(to); m = m.EndOfMonth().AddDays(1) {
		offset := (int(weekday) - int(m.DayOfWeek()) + 7) % 7
		occ := m.AddDays(offset + 7*(k-1))
		if occ.Month != m.Month {
			continue
		}
		if !occ.Before(from) && !occ.After(to) {
			out = append(out, occ)
		}
	}
	return out
}

// eventOccurrences shifts the referenced rule's occurrence set by the day
// offset and clips to the range. The base set is generated over the
// back-shifted range so occurrences whose trigger falls outside [from, to]
// still land inside it. seen guards against reference cycles.
func eventOccurrences(rule Rule, byID map[int]Rule, from, to Date, seen map[int]bool) ([]Date, error) {
	if seen[rule.ID] {
		return nil, fmt.Errorf("%w: event rule %d is part of a trigger cycle", ErrInvalidRule, rule.ID)
	}
	seen[rule.ID] = true
	defer delete(seen, rule.ID)

	target, ok := byID[*rule.TriggerID]
	if !ok {
		return nil, fmt.Errorf("%w: event rule %d references unknown scheduler %d", ErrInvalidRule, rule.ID, *rule.TriggerID)
	}
	if target.ID == rule.ID {
		return nil, fmt.Errorf("%w: event rule %d triggers itself", ErrInvalidRule, rule.ID)
	}

	offset := *rule.Step
	base, err := generate(target, byID, from.AddDays(-offset), to.AddDays(-offset), seen)
	if err != nil {
		return nil, err
	}
	out := make([]Date, 0, len(base))
	for _, d := range base {
		shifted := d.AddDays(offset)
		if shifted.Before(from) || shifted.After(to) {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Equal(shifted) {
			continue
		}
		out = append(out, shifted)
	}
	return out, nil
}
