package sqlite

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samgerene/xcal/model"
	"github.com/samgerene/xcal/recur"
	"github.com/samgerene/xcal/values"
)

// Temporal values are stored in their text form and parsed back on
// scan; the empty string stands for the zero value throughout.

func fmtDateTime(dt values.DateTime) string {
	if dt.IsZero() {
		return ""
	}
	return dt.String()
}

func scanDateTime(s string) (values.DateTime, error) {
	if s == "" {
		return values.DateTime{}, nil
	}
	return values.ParseDateTime(s)
}

func fmtPeriod(p values.Period) (start, duration string) {
	if p.IsZero() {
		return "", ""
	}
	return p.Start().String(), p.Duration().String()
}

func scanPeriod(start, duration string) (values.Period, error) {
	if start == "" {
		return values.Period{}, nil
	}
	s, err := values.ParseDateTime(start)
	if err != nil {
		return values.Period{}, err
	}
	d, err := values.ParseDuration(duration)
	if err != nil {
		return values.Period{}, err
	}
	return values.NewPeriodDuration(s, d), nil
}

func fmtDuration(d values.Duration) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func scanDuration(s string) (values.Duration, error) {
	if s == "" {
		return values.Duration{}, nil
	}
	return values.ParseDuration(s)
}

func fmtRule(r *recur.Rule) string {
	if r == nil {
		return ""
	}
	return r.String()
}

func scanRule(s string) (*recur.Rule, error) {
	if s == "" {
		return nil, nil
	}
	return recur.Parse(s)
}

func fmtOrganizer(o *model.Organizer) (name, address string) {
	if o == nil {
		return "", ""
	}
	return o.CommonName, o.Address
}

func scanOrganizer(name, address string) *model.Organizer {
	if name == "" && address == "" {
		return nil
	}
	return &model.Organizer{CommonName: name, Address: address}
}

func fmtGeo(g *model.Geo) string {
	if g == nil {
		return ""
	}
	return g.String()
}

func scanGeo(s string) (*model.Geo, error) {
	if s == "" {
		return nil, nil
	}
	latPart, lonPart, ok := strings.Cut(s, ";")
	if !ok {
		return nil, fmt.Errorf("bad geo %q", s)
	}
	lat, err := strconv.ParseFloat(latPart, 64)
	if err != nil {
		return nil, err
	}
	lon, err := strconv.ParseFloat(lonPart, 64)
	if err != nil {
		return nil, err
	}
	return &model.Geo{Latitude: lat, Longitude: lon}, nil
}

func fmtRecurrenceID(r *model.RecurrenceID) (id, rng, value string) {
	if r == nil {
		return "", "", ""
	}
	return r.ID, string(r.Range), r.Value.String()
}

func scanRecurrenceID(id, rng, value string) (*model.RecurrenceID, error) {
	if value == "" {
		return nil, nil
	}
	dt, err := values.ParseDateTime(value)
	if err != nil {
		return nil, err
	}
	return &model.RecurrenceID{ID: id, Range: model.RangeType(rng), Value: dt}, nil
}

func fmtStrings(items []string) string { return strings.Join(items, ",") }

func scanStrings(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func fmtDateTimes(dts []values.DateTime) string {
	parts := make([]string, len(dts))
	for i, dt := range dts {
		parts[i] = dt.String()
	}
	return strings.Join(parts, ",")
}

func scanDateTimes(s string) ([]values.DateTime, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]values.DateTime, len(parts))
	for i, p := range parts {
		dt, err := values.ParseDateTime(p)
		if err != nil {
			return nil, err
		}
		out[i] = dt
	}
	return out, nil
}

func fmtPeriods(ps []values.Period) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.String()
	}
	return strings.Join(parts, ",")
}

func scanPeriods(s string) ([]values.Period, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]values.Period, len(parts))
	for i, p := range parts {
		period, err := values.ParsePeriod(p)
		if err != nil {
			return nil, err
		}
		out[i] = period
	}
	return out, nil
}

func fmtTrigger(t model.Trigger) (duration, datetime, related string) {
	if t.Duration != nil {
		duration = t.Duration.String()
	}
	if t.DateTime != nil {
		datetime = t.DateTime.String()
	}
	return duration, datetime, string(t.Related)
}

func scanTrigger(duration, datetime, related string) (model.Trigger, error) {
	t := model.Trigger{Related: model.Related(related)}
	if duration != "" {
		d, err := values.ParseDuration(duration)
		if err != nil {
			return t, err
		}
		t.Duration = &d
	}
	if datetime != "" {
		dt, err := values.ParseDateTime(datetime)
		if err != nil {
			return t, err
		}
		t.DateTime = &dt
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
