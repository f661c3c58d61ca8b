package model

import (
	"io"

	"github.com/samgerene/xcal/values"
)

// TimeZone is the VTIMEZONE component: the definition backing a TZID
// reference, made of standard and daylight observances.
type TimeZone struct {
	ID           string          `json:"id"`
	TZID         values.TZID     `json:"tzid"`
	LastModified values.DateTime `json:"last_modified,omitempty"`
	URL          string          `json:"url,omitempty"`

	Observances []*Observance `json:"observances,omitempty"`

	IANAProps []IANAProperty `json:"iana_props,omitempty"`
	XProps    []XProperty    `json:"x_props,omitempty"`
}

// Compare orders time zones by their TZID.
func (z *TimeZone) Compare(o *TimeZone) int {
	return cmpStr(string(z.TZID), string(o.TZID))
}

// Equal reports whether two definitions name the same zone.
func (z *TimeZone) Equal(o *TimeZone) bool {
	if z == nil || o == nil {
		return z == o
	}
	return z.Compare(o) == 0
}

// WriteTo renders the VTIMEZONE content lines, CRLF-terminated.
func (z *TimeZone) WriteTo(w io.Writer) (int64, error) {
	lw := &lineWriter{w: w}
	lw.line("BEGIN:VTIMEZONE")
	lw.prop("TZID", string(z.TZID))
	if !z.LastModified.IsZero() {
		lw.prop("LAST-MODIFIED", z.LastModified.String())
	}
	lw.prop("TZURL", z.URL)
	for _, ob := range z.Observances {
		kind := string(ob.Kind)
		if kind == "" {
			kind = string(ObservanceStandard)
		}
		lw.line("BEGIN:" + kind)
		lw.prop("DTSTART", ob.Start.String())
		lw.prop("TZOFFSETFROM", ob.OffsetFrom.String())
		lw.prop("TZOFFSETTO", ob.OffsetTo.String())
		if ob.Rule != nil {
			lw.prop("RRULE", ob.Rule.String())
		}
		lw.prop("TZNAME", ob.Name)
		lw.line("END:" + kind)
	}
	lw.extensions(z.IANAProps, z.XProps)
	lw.line("END:VTIMEZONE")
	return lw.n, lw.err
}

// String renders the VTIMEZONE text.
func (z *TimeZone) String() string { return render(z) }
