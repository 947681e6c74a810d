package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"forecast-server/src/engine"
)

func rangeRequest(t *testing.T, query string) *http.Request {
	t.Helper()
	return httptest.NewRequest(http.MethodGet, "/api/scenario/1/projection"+query, nil)
}

func TestParseRangeParams(t *testing.T) {
	t.Parallel()

	from, to, err := parseRangeParams(rangeRequest(t, "?from=01/06/2024&to=15/06/2024"))
	if err != nil {
		t.Fatalf("parseRangeParams: %v", err)
	}
	if from == nil || to == nil {
		t.Fatal("expected both bounds to be set")
	}
	if !from.Equal(engine.MustDate(2024, 6, 1)) || !to.Equal(engine.MustDate(2024, 6, 15)) {
		t.Fatalf("got range %s..%s", from, to)
	}
}

func TestParseRangeParamsOpenEnded(t *testing.T) {
	t.Parallel()

	from, to, err := parseRangeParams(rangeRequest(t, ""))
	if err != nil {
		t.Fatalf("parseRangeParams: %v", err)
	}
	if from != nil || to != nil {
		t.Fatal("expected nil bounds for absent params")
	}
}

func TestParseRangeParamsRejectsISOFormat(t *testing.T) {
	t.Parallel()

	if _, _, err := parseRangeParams(rangeRequest(t, "?from=2024-06-01")); err == nil {
		t.Fatal("expected error for YYYY-MM-DD in query param")
	}
}

func TestParseRangeParamsRejectsInvertedRange(t *testing.T) {
	t.Parallel()

	if _, _, err := parseRangeParams(rangeRequest(t, "?from=15/06/2024&to=01/06/2024")); err == nil {
		t.Fatal("expected error for to before from")
	}
}

func TestEngineErrorStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want int
	}{
		{engine.ErrInvalidDate, http.StatusBadRequest},
		{engine.ErrInvalidRule, http.StatusBadRequest},
		{engine.ErrInvalidRange, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := engineErrorStatus(c.err); got != c.want {
			t.Errorf("engineErrorStatus(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestProjectionCacheKeyDistinguishesOverride(t *testing.T) {
	t.Parallel()

	from := engine.MustDate(2024, 1, 1)
	to := engine.MustDate(2024, 1, 31)
	stored := projectionCacheKey(1, 2, from, to, nil)
	override := mustDecimal(t, "500.25")
	withOverride := projectionCacheKey(1, 2, from, to, &override)
	if stored == withOverride {
		t.Fatal("expected override to produce a distinct cache key")
	}
}
