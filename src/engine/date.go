package engine

import (
	"fmt"
	"time"
)

// Date is a civil calendar date: year, month, day, no time-of-day, no zone.
// Epoch conversions use the midnight-UTC convention. The zero value is not
// a valid date; construct through NewDate, FromTime or the parse functions.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const (
	isoLayout = "2006-01-02"
	dmyLayout = "02/01/2006"
)

// NewDate validates the numeric components and returns the date.
func NewDate(year int, month time.Month, day int) (Date, error) {
	if month < time.January || month > time.December {
		return Date{}, fmt.Errorf("%w: month %d out of range", ErrInvalidDate, month)
	}
	if day < 1 || day > daysInMonth(year, month) {
		return Date{}, fmt.Errorf("%w: day %d out of range for %04d-%02d", ErrInvalidDate, day, year, month)
	}
	return Date{Year: year, Month: month, Day: day}, nil
}

// MustDate is NewDate that panics on invalid input. Intended for constants
// and tests, never for request data.
func MustDate(year int, month time.Month, day int) Date {
	d, err := NewDate(year, month, day)
	if err != nil {
		panic(err)
	}
	return d
}

// FromTime truncates a time.Time to its civil date in UTC.
func FromTime(t time.Time) Date {
	u := t.UTC()
	return Date{Year: u.Year(), Month: u.Month(), Day: u.Day()}
}

// FromEpochMillis converts milliseconds since the Unix epoch to a civil date.
func FromEpochMillis(ms int64) Date {
	return FromTime(time.UnixMilli(ms))
}

// EpochMillis returns the date's midnight-UTC instant in epoch milliseconds.
func (d Date) EpochMillis() int64 {
	return d.utc().UnixMilli()
}

func (d Date) utc() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return FromTime(d.utc().AddDate(0, 0, n))
}

// StartOfMonth returns the first day of the date's month.
func (d Date) StartOfMonth() Date {
	return Date{Year: d.Year, Month: d.Month, Day: 1}
}

// EndOfMonth returns the last day of the date's month.
func (d Date) EndOfMonth() Date {
	return Date{Year: d.Year, Month: d.Month, Day: daysInMonth(d.Year, d.Month)}
}

// DayOfWeek returns the weekday (Sunday = 0).
func (d Date) DayOfWeek() time.Weekday {
	return d.utc().Weekday()
}

// Compare returns -1, 0 or 1 as d is before, equal to or after o.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }
func (d Date) Equal(o Date) bool  { return d.Compare(o) == 0 }

// DaysBetween returns the signed day count from a to b.
func DaysBetween(a, b Date) int {
	return int(b.utc().Sub(a.utc()).Hours() / 24)
}

// ParseDate parses the YYYY-MM-DD form used in JSON bodies.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(isoLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q is not YYYY-MM-DD", ErrInvalidDate, s)
	}
	return FromTime(t), nil
}

// ParseDateDMY parses the DD/MM/YYYY form used in query parameters.
func ParseDateDMY(s string) (Date, error) {
	t, err := time.Parse(dmyLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q is not DD/MM/YYYY", ErrInvalidDate, s)
	}
	return FromTime(t), nil
}

func (d Date) String() string {
	return d.utc().Format(isoLayout)
}

// FormatDMY renders the date in the DD/MM/YYYY query convention.
func (d Date) FormatDMY() string {
	return d.utc().Format(dmyLayout)
}

// MarshalJSON renders the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts "YYYY-MM-DD".
func (d *Date) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("%w: expected quoted date string", ErrInvalidDate)
	}
	parsed, err := ParseDate(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
