package model

import (
	"io"

	"github.com/samgerene/xcal/recur"
	"github.com/samgerene/xcal/values"
)

// Journal is the VJOURNAL component: a dated note bound to a single
// start instant rather than a period.
type Journal struct {
	ID             string          `json:"id"`
	UID            string          `json:"uid"`
	Datestamp      values.DateTime `json:"datestamp"`
	Created        values.DateTime `json:"created,omitempty"`
	LastModified   values.DateTime `json:"last_modified,omitempty"`
	Start          values.DateTime `json:"start"`
	Classification Classification  `json:"classification,omitempty"`
	Description    string          `json:"description,omitempty"`
	Organizer      *Organizer      `json:"organizer,omitempty"`
	Sequence       int             `json:"sequence,omitempty"`
	Status         Status          `json:"status,omitempty"`
	Summary        string          `json:"summary,omitempty"`
	URL            string          `json:"url,omitempty"`
	RecurrenceID   *RecurrenceID   `json:"recurrence_id,omitempty"`
	RecurrenceRule *recur.Rule     `json:"rrule,omitempty"`
	Categories     []string        `json:"categories,omitempty"`

	Attendees       []*Attendee        `json:"attendees,omitempty"`
	AttachURIs      []*AttachURI       `json:"attach_uris,omitempty"`
	Comments        []*Comment         `json:"comments,omitempty"`
	ExceptionDates  []*ExceptionDates  `json:"exception_dates,omitempty"`
	RecurrenceDates []*RecurrenceDates `json:"recurrence_dates,omitempty"`
	RelatedTos      []*RelatedTo       `json:"related_tos,omitempty"`

	IANAProps []IANAProperty `json:"iana_props,omitempty"`
	XProps    []XProperty    `json:"x_props,omitempty"`
}

// Compare orders journals by UID, then recurrence identifier, then
// sequence, then datestamp.
func (j *Journal) Compare(o *Journal) int {
	return compareIdentity(j.UID, o.UID, j.RecurrenceID, o.RecurrenceID,
		j.Sequence, o.Sequence, j.Datestamp, o.Datestamp)
}

// Equal reports whether two journals denote the same revision of the
// same instance.
func (j *Journal) Equal(o *Journal) bool {
	if j == nil || o == nil {
		return j == o
	}
	return j.Compare(o) == 0
}

// WriteTo renders the VJOURNAL content lines, CRLF-terminated.
func (j *Journal) WriteTo(w io.Writer) (int64, error) {
	lw := &lineWriter{w: w}
	lw.line("BEGIN:VJOURNAL")
	lw.prop("DTSTAMP", j.Datestamp.String())
	lw.prop("UID", j.UID)
	if !j.Start.IsZero() {
		lw.prop("DTSTART", j.Start.String())
	}
	lw.prop("CLASS", string(j.Classification))
	if !j.Created.IsZero() {
		lw.prop("CREATED", j.Created.String())
	}
	lw.prop("DESCRIPTION", j.Description)
	if !j.LastModified.IsZero() {
		lw.prop("LAST-MODIFIED", j.LastModified.String())
	}
	if j.Organizer != nil {
		lw.line(j.Organizer.property())
	}
	lw.propInt("SEQUENCE", j.Sequence)
	lw.prop("STATUS", string(j.Status))
	lw.prop("SUMMARY", j.Summary)
	lw.prop("URL", j.URL)
	if j.RecurrenceID != nil {
		lw.line(j.RecurrenceID.property())
	}
	if j.RecurrenceRule != nil {
		lw.prop("RRULE", j.RecurrenceRule.String())
	}
	if len(j.Categories) > 0 {
		lw.prop("CATEGORIES", joinStrings(j.Categories))
	}
	for _, a := range j.Attendees {
		lw.line(a.property())
	}
	for _, a := range j.AttachURIs {
		lw.prop("ATTACH", a.URI)
	}
	for _, c := range j.Comments {
		lw.prop("COMMENT", c.Text)
	}
	for _, x := range j.ExceptionDates {
		lw.prop("EXDATE", joinDateTimes(x.Dates))
	}
	for _, rd := range j.RecurrenceDates {
		lw.prop("RDATE", joinDateTimes(rd.Dates))
		lw.prop("RDATE", joinPeriods(rd.Periods))
	}
	for _, rt := range j.RelatedTos {
		lw.prop("RELATED-TO", rt.Reference)
	}
	lw.extensions(j.IANAProps, j.XProps)
	lw.line("END:VJOURNAL")
	return lw.n, lw.err
}

// String renders the VJOURNAL text.
func (j *Journal) String() string { return render(j) }
