package values

import (
	"errors"
	"testing"

	"github.com/samgerene/xcal"
)

func TestDateRoundTrip(t *testing.T) {
	cases := []string{"20240301", "19991231", "20000229"}
	for _, in := range cases {
		d, err := ParseDate(in)
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", in, err)
		}
		if got := d.String(); got != in {
			t.Errorf("ParseDate(%q).String() = %q", in, got)
		}
	}
}

func TestDateRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "2024030", "202403011", "2024AB01", "20241301", "20240332"} {
		if _, err := ParseDate(in); !errors.Is(err, xcal.ErrFormat) {
			t.Errorf("ParseDate(%q) = %v, want ErrFormat", in, err)
		}
	}
}

func TestTimeRoundTrip(t *testing.T) {
	cases := []struct {
		in   string
		kind TimeKind
	}{
		{"102030", KindLocal},
		{"102030Z", KindUTC},
		{"America/New_York:102030", KindZoned},
	}
	for _, tc := range cases {
		v, err := ParseTime(tc.in)
		if err != nil {
			t.Fatalf("ParseTime(%q): %v", tc.in, err)
		}
		if v.Kind != tc.kind {
			t.Errorf("ParseTime(%q).Kind = %v, want %v", tc.in, v.Kind, tc.kind)
		}
		if got := v.String(); got != tc.in {
			t.Errorf("ParseTime(%q).String() = %q", tc.in, got)
		}
	}
}

func TestDateTimeRoundTrip(t *testing.T) {
	cases := []string{
		"20240301T100000",
		"20240301T100000Z",
		"Europe/Paris:20240301T100000",
	}
	for _, in := range cases {
		dt, err := ParseDateTime(in)
		if err != nil {
			t.Fatalf("ParseDateTime(%q): %v", in, err)
		}
		if got := dt.String(); got != in {
			t.Errorf("ParseDateTime(%q).String() = %q", in, got)
		}
	}
}

func TestDateTimeEqualityIgnoresZone(t *testing.T) {
	utc := NewDateTimeUTC(2024, 3, 1, 10, 0, 0)
	zoned := NewDateTimeZoned(2024, 3, 1, 10, 0, 0, "Europe/Paris")
	local := NewDateTime(2024, 3, 1, 10, 0, 0)
	if !utc.Equal(zoned) || !utc.Equal(local) {
		t.Error("values with the same clock reading should compare equal")
	}
	later := NewDateTime(2024, 3, 1, 10, 0, 1)
	if !utc.Before(later) || !later.After(zoned) {
		t.Error("ordering should follow the clock reading")
	}
}

func TestDateTimeArithmetic(t *testing.T) {
	start := NewDateTimeZoned(2024, 3, 1, 10, 0, 0, "Europe/Paris")
	d := NewDuration(0, 1, 2, 30, 0)
	shifted := start.Add(d)
	want := NewDateTimeZoned(2024, 3, 2, 12, 30, 0, "Europe/Paris")
	if shifted != want {
		t.Errorf("Add = %v, want %v", shifted, want)
	}
	if shifted.Zone != "Europe/Paris" || shifted.Kind != KindZoned {
		t.Error("Add should preserve kind and zone")
	}
	// Sub is a magnitude in both directions.
	if got := start.Sub(shifted); !got.Equal(d) {
		t.Errorf("start.Sub(shifted) = %v, want %v", got, d)
	}
	if got := shifted.Sub(start); !got.Equal(d) {
		t.Errorf("shifted.Sub(start) = %v, want %v", got, d)
	}
}

func TestDurationRoundTrip(t *testing.T) {
	cases := []string{"P1W2DT3H4M5S", "-PT15M", "PT0S", "P3D", "PT1H30M"}
	for _, in := range cases {
		d, err := ParseDuration(in)
		if err != nil {
			t.Fatalf("ParseDuration(%q): %v", in, err)
		}
		if got := d.String(); got != in {
			t.Errorf("ParseDuration(%q).String() = %q", in, got)
		}
	}
}

func TestDurationRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "P", "1D", "PT", "P1X", "PT3W", "P1DT"} {
		if _, err := ParseDuration(in); !errors.Is(err, xcal.ErrFormat) {
			t.Errorf("ParseDuration(%q) = %v, want ErrFormat", in, err)
		}
	}
}

func TestDurationAlgebra(t *testing.T) {
	a := NewDuration(1, 2, 3, 4, 5)
	b := NewDuration(0, 1, 0, 30, 0)
	if got := a.Add(b).Sub(b); got != a {
		t.Errorf("(a+b)-b = %v, want %v", got, a)
	}
	if got := a.Mul(1); got != a {
		t.Errorf("a*1 = %v, want %v", got, a)
	}
	if got := a.Neg().Neg(); got != a {
		t.Errorf("double negation = %v, want %v", got, a)
	}
	if _, err := a.Div(0); !errors.Is(err, xcal.ErrArithmetic) {
		t.Errorf("Div(0) = %v, want ErrArithmetic", err)
	}
	if got, err := a.Mul(2).Div(2); err != nil || got != a {
		t.Errorf("(a*2)/2 = %v, %v, want %v", got, err, a)
	}
	// Comparison is by elapsed time, not by breakdown.
	if !NewDuration(0, 1, 0, 0, 0).Equal(NewDuration(0, 0, 24, 0, 0)) {
		t.Error("P1D and PT24H should compare equal")
	}
}

func TestPeriodForms(t *testing.T) {
	start := NewDateTimeUTC(2024, 3, 1, 10, 0, 0)
	end := NewDateTimeUTC(2024, 3, 1, 11, 30, 0)
	explicit := NewPeriod(start, end)
	byDuration := NewPeriodDuration(start, NewDuration(0, 0, 1, 30, 0))

	if !explicit.Equal(byDuration) {
		t.Error("periods covering the same interval should compare equal")
	}
	if !explicit.End().Equal(end) || !byDuration.End().Equal(end) {
		t.Error("End should be consistent across both forms")
	}
	if got := explicit.String(); got != "20240301T100000Z/20240301T113000Z" {
		t.Errorf("explicit String = %q", got)
	}
	if got := byDuration.String(); got != "20240301T100000Z/PT1H30M" {
		t.Errorf("duration String = %q", got)
	}
}

func TestPeriodRoundTrip(t *testing.T) {
	for _, in := range []string{
		"20240301T100000Z/20240301T113000Z",
		"20240301T100000Z/PT1H30M",
	} {
		p, err := ParsePeriod(in)
		if err != nil {
			t.Fatalf("ParsePeriod(%q): %v", in, err)
		}
		if got := p.String(); got != in {
			t.Errorf("ParsePeriod(%q).String() = %q", in, got)
		}
	}
}

func TestUTCOffsetRoundTrip(t *testing.T) {
	for _, in := range []string{"+0200", "-0530", "-053000", "+000030"} {
		o, err := ParseUTCOffset(in)
		if err != nil {
			t.Fatalf("ParseUTCOffset(%q): %v", in, err)
		}
		if got := o.String(); got != in {
			t.Errorf("ParseUTCOffset(%q).String() = %q", in, got)
		}
	}
	for _, in := range []string{"0200", "+2", "-0000", "+2460"} {
		if _, err := ParseUTCOffset(in); !errors.Is(err, xcal.ErrFormat) {
			t.Errorf("ParseUTCOffset(%q) = %v, want ErrFormat", in, err)
		}
	}
}

func TestWeekdayNumRoundTrip(t *testing.T) {
	for _, in := range []string{"MO", "2MO", "-1SU", "53FR"} {
		w, err := ParseWeekdayNum(in)
		if err != nil {
			t.Fatalf("ParseWeekdayNum(%q): %v", in, err)
		}
		if got := w.String(); got != in {
			t.Errorf("ParseWeekdayNum(%q).String() = %q", in, got)
		}
	}
	if w, err := ParseWeekdayNum("+3FR"); err != nil || w.Ord != 3 || w.Day != Friday {
		t.Errorf("ParseWeekdayNum(+3FR) = %v, %v", w, err)
	}
	for _, in := range []string{"", "XX", "0MO", "54MO", "-SU"} {
		if _, err := ParseWeekdayNum(in); !errors.Is(err, xcal.ErrFormat) {
			t.Errorf("ParseWeekdayNum(%q) = %v, want ErrFormat", in, err)
		}
	}
}
