package engine

import (
	"errors"
	"testing"
	"time"
)

func TestNewDateRejectsInvalidComponents(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		year  int
		month time.Month
		day   int
	}{
		{"month zero", 2024, 0, 1},
		{"month thirteen", 2024, 13, 1},
		{"day zero", 2024, time.January, 0},
		{"day 32", 2024, time.January, 32},
		{"feb 30", 2024, time.February, 30},
		{"feb 29 non-leap", 2023, time.February, 29},
	}
	for _, tc := range cases {
		if _, err := NewDate(tc.year, tc.month, tc.day); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%s: expected ErrInvalidDate, got %v", tc.name, err)
		}
	}

	if _, err := NewDate(2024, time.February, 29); err != nil {
		t.Fatalf("leap day should be valid: %v", err)
	}
}

func TestEpochMillisRoundTrip(t *testing.T) {
	t.Parallel()

	d := MustDate(2024, time.March, 15)
	ms := d.EpochMillis()
	if got := FromEpochMillis(ms); !got.Equal(d) {
		t.Fatalf("round trip changed date: %s -> %s", d, got)
	}
	// Midnight UTC convention: 2024-03-15T00:00:00Z.
	if want := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC).UnixMilli(); ms != want {
		t.Fatalf("expected %d, got %d", want, ms)
	}
}

func TestAddDaysCrossesMonthAndLeapBoundaries(t *testing.T) {
	t.Parallel()

	if got := MustDate(2024, time.January, 31).AddDays(1); !got.Equal(MustDate(2024, time.February, 1)) {
		t.Fatalf("expected 2024-02-01, got %s", got)
	}
	if got := MustDate(2024, time.February, 28).AddDays(1); !got.Equal(MustDate(2024, time.February, 29)) {
		t.Fatalf("expected leap day, got %s", got)
	}
	if got := MustDate(2023, time.February, 28).AddDays(1); !got.Equal(MustDate(2023, time.March, 1)) {
		t.Fatalf("expected 2023-03-01, got %s", got)
	}
	if got := MustDate(2024, time.January, 1).AddDays(-1); !got.Equal(MustDate(2023, time.December, 31)) {
		t.Fatalf("expected 2023-12-31, got %s", got)
	}
}

func TestStartAndEndOfMonth(t *testing.T) {
	t.Parallel()

	d := MustDate(2024, time.February, 17)
	if got := d.StartOfMonth(); !got.Equal(MustDate(2024, time.February, 1)) {
		t.Fatalf("expected 2024-02-01, got %s", got)
	}
	if got := d.EndOfMonth(); !got.Equal(MustDate(2024, time.February, 29)) {
		t.Fatalf("expected 2024-02-29, got %s", got)
	}
	if got := MustDate(2023, time.February, 1).EndOfMonth(); !got.Equal(MustDate(2023, time.February, 28)) {
		t.Fatalf("expected 2023-02-28, got %s", got)
	}
}

func TestCompareAndDaysBetween(t *testing.T) {
	t.Parallel()

	a := MustDate(2024, time.January, 1)
	b := MustDate(2024, time.January, 15)
	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Fatal("compare ordering wrong")
	}
	if got := DaysBetween(a, b); got != 14 {
		t.Fatalf("expected 14 days, got %d", got)
	}
	if got := DaysBetween(b, a); got != -14 {
		t.Fatalf("expected -14 days, got %d", got)
	}
	if got := DaysBetween(MustDate(2024, time.February, 1), MustDate(2024, time.March, 1)); got != 29 {
		t.Fatalf("expected 29 days across leap February, got %d", got)
	}
}

func TestParseFormats(t *testing.T) {
	t.Parallel()

	d, err := ParseDate("2024-07-09")
	if err != nil {
		t.Fatalf("parse ISO: %v", err)
	}
	if !d.Equal(MustDate(2024, time.July, 9)) {
		t.Fatalf("unexpected date %s", d)
	}

	d, err = ParseDateDMY("09/07/2024")
	if err != nil {
		t.Fatalf("parse DMY: %v", err)
	}
	if !d.Equal(MustDate(2024, time.July, 9)) {
		t.Fatalf("unexpected date %s", d)
	}
	if got := d.FormatDMY(); got != "09/07/2024" {
		t.Fatalf("expected 09/07/2024, got %s", got)
	}

	if _, err := ParseDate("09/07/2024"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate for wrong layout, got %v", err)
	}
	if _, err := ParseDateDMY("2024-07-09"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate for wrong layout, got %v", err)
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	t.Parallel()

	d := MustDate(2024, time.December, 3)
	b, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2024-12-03"` {
		t.Fatalf("unexpected JSON %s", b)
	}
	var back Date
	if err := back.UnmarshalJSON(b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d) {
		t.Fatalf("round trip changed date: %s -> %s", d, back)
	}
}
