package model

import (
	"io"

	"github.com/samgerene/xcal/values"
)

// FreeBusy is the VFREEBUSY component: a queried or published window
// plus the free/busy periods inside it.
type FreeBusy struct {
	ID        string          `json:"id"`
	UID       string          `json:"uid"`
	Datestamp values.DateTime `json:"datestamp"`
	Span      values.Period   `json:"span"`
	Organizer *Organizer      `json:"organizer,omitempty"`
	URL       string          `json:"url,omitempty"`

	Attendees []*Attendee       `json:"attendees,omitempty"`
	Comments  []*Comment        `json:"comments,omitempty"`
	Periods   []*FreeBusyPeriod `json:"periods,omitempty"`

	IANAProps []IANAProperty `json:"iana_props,omitempty"`
	XProps    []XProperty    `json:"x_props,omitempty"`
}

// Start returns the opening instant of the window.
func (f *FreeBusy) Start() values.DateTime { return f.Span.Start() }

// End returns the closing instant of the window.
func (f *FreeBusy) End() values.DateTime { return f.Span.End() }

// Compare orders free/busy blocks by UID, then datestamp; they carry
// no recurrence identity.
func (f *FreeBusy) Compare(o *FreeBusy) int {
	if c := cmpStr(f.UID, o.UID); c != 0 {
		return c
	}
	return f.Datestamp.Compare(o.Datestamp)
}

// Equal reports whether two blocks denote the same publication.
func (f *FreeBusy) Equal(o *FreeBusy) bool {
	if f == nil || o == nil {
		return f == o
	}
	return f.Compare(o) == 0
}

// WriteTo renders the VFREEBUSY content lines, CRLF-terminated.
func (f *FreeBusy) WriteTo(w io.Writer) (int64, error) {
	lw := &lineWriter{w: w}
	lw.line("BEGIN:VFREEBUSY")
	lw.prop("DTSTAMP", f.Datestamp.String())
	lw.prop("UID", f.UID)
	if !f.Span.IsZero() {
		lw.prop("DTSTART", f.Start().String())
		lw.prop("DTEND", f.End().String())
	}
	if f.Organizer != nil {
		lw.line(f.Organizer.property())
	}
	lw.prop("URL", f.URL)
	for _, a := range f.Attendees {
		lw.line(a.property())
	}
	for _, c := range f.Comments {
		lw.prop("COMMENT", c.Text)
	}
	for _, p := range f.Periods {
		if p.Type != "" {
			lw.line("FREEBUSY;FBTYPE=" + string(p.Type) + ":" + p.Period.String())
		} else {
			lw.prop("FREEBUSY", p.Period.String())
		}
	}
	lw.extensions(f.IANAProps, f.XProps)
	lw.line("END:VFREEBUSY")
	return lw.n, lw.err
}

// String renders the VFREEBUSY text.
func (f *FreeBusy) String() string { return render(f) }
