package model

import (
	"io"

	"github.com/samgerene/xcal/recur"
	"github.com/samgerene/xcal/values"
)

// Todo is the VTODO component. Timing is a Period whose end is the due
// instant.
type Todo struct {
	ID              string          `json:"id"`
	UID             string          `json:"uid"`
	Datestamp       values.DateTime `json:"datestamp"`
	Created         values.DateTime `json:"created,omitempty"`
	LastModified    values.DateTime `json:"last_modified,omitempty"`
	Span            values.Period   `json:"span"`
	Completed       values.DateTime `json:"completed,omitempty"`
	PercentComplete int             `json:"percent_complete,omitempty"`
	Classification  Classification  `json:"classification,omitempty"`
	Description     string          `json:"description,omitempty"`
	Location        string          `json:"location,omitempty"`
	Organizer       *Organizer      `json:"organizer,omitempty"`
	Priority        int             `json:"priority,omitempty"`
	Sequence        int             `json:"sequence,omitempty"`
	Status          Status          `json:"status,omitempty"`
	Summary         string          `json:"summary,omitempty"`
	URL             string          `json:"url,omitempty"`
	RecurrenceID    *RecurrenceID   `json:"recurrence_id,omitempty"`
	RecurrenceRule  *recur.Rule     `json:"rrule,omitempty"`
	Categories      []string        `json:"categories,omitempty"`

	Attendees       []*Attendee        `json:"attendees,omitempty"`
	AttachURIs      []*AttachURI       `json:"attach_uris,omitempty"`
	Comments        []*Comment         `json:"comments,omitempty"`
	ExceptionDates  []*ExceptionDates  `json:"exception_dates,omitempty"`
	RecurrenceDates []*RecurrenceDates `json:"recurrence_dates,omitempty"`
	RelatedTos      []*RelatedTo       `json:"related_tos,omitempty"`
	Resources       []*Resources       `json:"resources,omitempty"`

	IANAProps []IANAProperty `json:"iana_props,omitempty"`
	XProps    []XProperty    `json:"x_props,omitempty"`
}

// Start returns the opening instant of the task.
func (t *Todo) Start() values.DateTime { return t.Span.Start() }

// Due returns the instant the task is due.
func (t *Todo) Due() values.DateTime { return t.Span.End() }

// Duration returns the working extent of the task.
func (t *Todo) Duration() values.Duration { return t.Span.Duration() }

// Compare orders todos by UID, then recurrence identifier, then
// sequence, then datestamp.
func (t *Todo) Compare(o *Todo) int {
	return compareIdentity(t.UID, o.UID, t.RecurrenceID, o.RecurrenceID,
		t.Sequence, o.Sequence, t.Datestamp, o.Datestamp)
}

// Equal reports whether two todos denote the same revision of the same
// instance.
func (t *Todo) Equal(o *Todo) bool {
	if t == nil || o == nil {
		return t == o
	}
	return t.Compare(o) == 0
}

// WriteTo renders the VTODO content lines, CRLF-terminated.
func (t *Todo) WriteTo(w io.Writer) (int64, error) {
	lw := &lineWriter{w: w}
	lw.line("BEGIN:VTODO")
	lw.prop("DTSTAMP", t.Datestamp.String())
	lw.prop("UID", t.UID)
	if !t.Span.IsZero() {
		lw.prop("DTSTART", t.Start().String())
	}
	lw.prop("CLASS", string(t.Classification))
	if !t.Created.IsZero() {
		lw.prop("CREATED", t.Created.String())
	}
	if !t.Completed.IsZero() {
		lw.prop("COMPLETED", t.Completed.String())
	}
	lw.prop("DESCRIPTION", t.Description)
	if !t.LastModified.IsZero() {
		lw.prop("LAST-MODIFIED", t.LastModified.String())
	}
	lw.prop("LOCATION", t.Location)
	if t.Organizer != nil {
		lw.line(t.Organizer.property())
	}
	lw.propInt("PERCENT-COMPLETE", t.PercentComplete)
	lw.propInt("PRIORITY", t.Priority)
	lw.propInt("SEQUENCE", t.Sequence)
	lw.prop("STATUS", string(t.Status))
	lw.prop("SUMMARY", t.Summary)
	lw.prop("URL", t.URL)
	if t.RecurrenceID != nil {
		lw.line(t.RecurrenceID.property())
	}
	if t.RecurrenceRule != nil {
		lw.prop("RRULE", t.RecurrenceRule.String())
	}
	if !t.Span.IsZero() {
		lw.prop("DUE", t.Due().String())
	}
	if len(t.Categories) > 0 {
		lw.prop("CATEGORIES", joinStrings(t.Categories))
	}
	for _, a := range t.Attendees {
		lw.line(a.property())
	}
	for _, a := range t.AttachURIs {
		lw.prop("ATTACH", a.URI)
	}
	for _, c := range t.Comments {
		lw.prop("COMMENT", c.Text)
	}
	for _, x := range t.ExceptionDates {
		lw.prop("EXDATE", joinDateTimes(x.Dates))
	}
	for _, rd := range t.RecurrenceDates {
		lw.prop("RDATE", joinDateTimes(rd.Dates))
		lw.prop("RDATE", joinPeriods(rd.Periods))
	}
	for _, rt := range t.RelatedTos {
		lw.prop("RELATED-TO", rt.Reference)
	}
	for _, res := range t.Resources {
		lw.prop("RESOURCES", joinStrings(res.Values))
	}
	lw.extensions(t.IANAProps, t.XProps)
	lw.line("END:VTODO")
	return lw.n, lw.err
}

// String renders the VTODO text.
func (t *Todo) String() string { return render(t) }
