package models

import (
	"time"

	"forecast-server/src/engine"
)

// Scheduler is the flat persisted form of a recurrence rule. Which fields
// are set depends on SchedulerCode; engine.Rule.Validate is the authority
// on that discipline.
type Scheduler struct {
	ID                 int        `json:"id"`
	TransactorID       int        `json:"transactor_id"`
	SchedulerCode      string     `json:"scheduler_code"`
	StartDate          *time.Time `json:"start_date,omitempty"`
	Step               *int       `json:"step,omitempty"`
	Day                *int       `json:"day,omitempty"`
	NthDay             *int       `json:"nth_day,omitempty"`
	TriggerSchedulerID *int       `json:"trigger_scheduler_id,omitempty"`
	Position           int        `json:"position"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (s *Scheduler) ToEngine() engine.Rule {
	r := engine.Rule{
		ID:        s.ID,
		Kind:      engine.RuleKind(s.SchedulerCode),
		Step:      s.Step,
		Day:       s.Day,
		NthDay:    s.NthDay,
		TriggerID: s.TriggerSchedulerID,
	}
	if s.StartDate != nil {
		d := engine.FromTime(*s.StartDate)
		r.StartDate = &d
	}
	return r
}
