package values

import "strings"

// PeriodForm records which PERIOD representation a value was built
// from, which String uses to render the same form back.
type PeriodForm int

const (
	// PeriodExplicit is the start/end form.
	PeriodExplicit PeriodForm = iota
	// PeriodStart is the start/duration form.
	PeriodStart
)

// Period is the PERIOD value type: an interval of time expressed either
// as start/end or start/duration. A period is immutable; the start, end
// and duration views are always mutually consistent because the end or
// duration is derived once at construction.
type Period struct {
	start    DateTime
	duration Duration
	form     PeriodForm
}

// NewPeriod builds an explicit period from its bounds.
func NewPeriod(start, end DateTime) Period {
	return Period{start: start, duration: end.Sub(start), form: PeriodExplicit}
}

// NewPeriodDuration builds a period from a start and a duration.
func NewPeriodDuration(start DateTime, d Duration) Period {
	return Period{start: start, duration: d, form: PeriodStart}
}

// ParsePeriod parses "start/end" or "start/duration".
func ParsePeriod(s string) (Period, error) {
	first, second, ok := strings.Cut(s, "/")
	if !ok {
		return Period{}, formatErr("period", s)
	}
	start, err := ParseDateTime(first)
	if err != nil {
		return Period{}, formatErr("period", s)
	}
	if d, err := ParseDuration(second); err == nil {
		return NewPeriodDuration(start, d), nil
	}
	end, err := ParseDateTime(second)
	if err != nil {
		return Period{}, formatErr("period", s)
	}
	return NewPeriod(start, end), nil
}

// Start returns the opening instant.
func (p Period) Start() DateTime { return p.start }

// End returns the closing instant, derived for duration-form periods.
func (p Period) End() DateTime { return p.start.Add(p.duration) }

// Duration returns the extent, derived for explicit-form periods.
func (p Period) Duration() Duration { return p.duration }

// Form returns the representation the period was built from.
func (p Period) Form() PeriodForm { return p.form }

// IsZero reports whether p is the zero period.
func (p Period) IsZero() bool { return p == Period{} }

// String renders the representation the period was built from, the
// inverse of ParsePeriod.
func (p Period) String() string {
	if p.form == PeriodStart {
		return p.start.String() + "/" + p.duration.String()
	}
	return p.start.String() + "/" + p.End().String()
}

// Compare orders by start, then by duration.
func (p Period) Compare(o Period) int {
	if c := p.start.Compare(o.start); c != 0 {
		return c
	}
	return p.duration.Compare(o.duration)
}

// Equal reports whether two periods cover the same interval; the
// representation form does not participate.
func (p Period) Equal(o Period) bool { return p.Compare(o) == 0 }
