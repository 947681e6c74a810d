package engine

import (
	"fmt"
	"time"
)

// RuleKind discriminates the closed set of recurrence variants. The string
// values are the scheduler_code column values, so a stored row converts to
// a Rule without translation.
type RuleKind string

const (
	KindInterval       RuleKind = "INTERVAL"
	KindMonthDay       RuleKind = "MONTH_DAY"
	KindNthWeekday     RuleKind = "NTH_WEEKDAY"
	KindEventTriggered RuleKind = "EVENT"
)

// Rule is one recurrence definition. It mirrors the flat schedulers row:
// exactly the fields relevant to Kind are set, the rest stay nil. Validate
// enforces that discipline before any generation runs.
//
// Field use per kind:
//
//	INTERVAL     StartDate (anchor), Step (>0 day count)
//	MONTH_DAY    Day (1-31, clamped to shorter months)
//	NTH_WEEKDAY  NthDay (weekday*10 + k, weekday 0=Sunday..6, k 1..5)
//	EVENT        TriggerID (referenced rule), Step (signed day offset)
type Rule struct {
	ID        int
	Kind      RuleKind
	StartDate *Date
	Step      *int
	Day       *int
	NthDay    *int
	TriggerID *int
}

// Validate checks that the rule is a well-formed instance of its variant.
func (r Rule) Validate() error {
	switch r.Kind {
	case KindInterval:
		if r.StartDate == nil {
			return fmt.Errorf("%w: interval rule %d has no start date", ErrInvalidRule, r.ID)
		}
		if r.Step == nil || *r.Step <= 0 {
			return fmt.Errorf("%w: interval rule %d needs step > 0", ErrInvalidRule, r.ID)
		}
		if r.Day != nil || r.NthDay != nil || r.TriggerID != nil {
			return fmt.Errorf("%w: interval rule %d carries fields of another variant", ErrInvalidRule, r.ID)
		}
	case KindMonthDay:
		if r.Day == nil || *r.Day < 1 || *r.Day > 31 {
			return fmt.Errorf("%w: month-day rule %d needs day in 1..31", ErrInvalidRule, r.ID)
		}
		if r.StartDate != nil || r.Step != nil || r.NthDay != nil || r.TriggerID != nil {
			return fmt.Errorf("%w: month-day rule %d carries fields of another variant", ErrInvalidRule, r.ID)
		}
	case KindNthWeekday:
		if r.NthDay == nil {
			return fmt.Errorf("%w: nth-weekday rule %d has no nth_day", ErrInvalidRule, r.ID)
		}
		if _, _, err := DecodeNthDay(*r.NthDay); err != nil {
			return err
		}
		if r.StartDate != nil || r.Step != nil || r.Day != nil || r.TriggerID != nil {
			return fmt.Errorf("%w: nth-weekday rule %d carries fields of another variant", ErrInvalidRule, r.ID)
		}
	case KindEventTriggered:
		if r.TriggerID == nil {
			return fmt.Errorf("%w: event rule %d has no trigger scheduler", ErrInvalidRule, r.ID)
		}
		if r.Step == nil {
			return fmt.Errorf("%w: event rule %d has no day offset", ErrInvalidRule, r.ID)
		}
		if r.StartDate != nil || r.Day != nil || r.NthDay != nil {
			return fmt.Errorf("%w: event rule %d carries fields of another variant", ErrInvalidRule, r.ID)
		}
	default:
		return fmt.Errorf("%w: unknown scheduler code %q", ErrInvalidRule, r.Kind)
	}
	return nil
}

// EncodeNthDay packs a weekday and an ordinal into the single nth_day
// integer stored in the schedulers table: weekday*10 + k.
func EncodeNthDay(weekday time.Weekday, k int) int {
	return int(weekday)*10 + k
}

// DecodeNthDay unpacks nth_day into weekday (Sunday = 0) and ordinal k.
// Valid ordinals are 1..5; a month never holds a 6th occurrence.
func DecodeNthDay(nthDay int) (time.Weekday, int, error) {
	weekday := nthDay / 10
	k := nthDay % 10
	if nthDay < 0 || weekday > 6 || k < 1 || k > 5 {
		return 0, 0, fmt.Errorf("%w: nth_day %d does not encode weekday*10+k", ErrInvalidRule, nthDay)
	}
	return time.Weekday(weekday), k, nil
}
