package model

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/samgerene/xcal/recur"
	"github.com/samgerene/xcal/values"
)

// Event is the VEVENT component. ID is the storage key assigned by a
// key generator; UID is the business identifier shared by every
// instance of a recurrence set. Timing is a single Period, so the
// Start, End and Duration views can never disagree.
type Event struct {
	ID             string          `json:"id"`
	UID            string          `json:"uid"`
	Datestamp      values.DateTime `json:"datestamp"`
	Created        values.DateTime `json:"created,omitempty"`
	LastModified   values.DateTime `json:"last_modified,omitempty"`
	Span           values.Period   `json:"span"`
	Classification Classification  `json:"classification,omitempty"`
	Description    string          `json:"description,omitempty"`
	Geo            *Geo            `json:"geo,omitempty"`
	Location       string          `json:"location,omitempty"`
	Organizer      *Organizer      `json:"organizer,omitempty"`
	Priority       int             `json:"priority,omitempty"`
	Sequence       int             `json:"sequence,omitempty"`
	Status         Status          `json:"status,omitempty"`
	Summary        string          `json:"summary,omitempty"`
	Transparency   Transparency    `json:"transparency,omitempty"`
	URL            string          `json:"url,omitempty"`
	RecurrenceID   *RecurrenceID   `json:"recurrence_id,omitempty"`
	RecurrenceRule *recur.Rule     `json:"rrule,omitempty"`
	Categories     []string        `json:"categories,omitempty"`

	Attendees       []*Attendee        `json:"attendees,omitempty"`
	AttachBinaries  []*AttachBinary    `json:"attach_binaries,omitempty"`
	AttachURIs      []*AttachURI       `json:"attach_uris,omitempty"`
	Comments        []*Comment         `json:"comments,omitempty"`
	Contacts        []*Contact         `json:"contacts,omitempty"`
	ExceptionDates  []*ExceptionDates  `json:"exception_dates,omitempty"`
	RecurrenceDates []*RecurrenceDates `json:"recurrence_dates,omitempty"`
	RelatedTos      []*RelatedTo       `json:"related_tos,omitempty"`
	RequestStatuses []*RequestStatus   `json:"request_statuses,omitempty"`
	Resources       []*Resources       `json:"resources,omitempty"`
	AudioAlarms     []*AudioAlarm      `json:"audio_alarms,omitempty"`
	DisplayAlarms   []*DisplayAlarm    `json:"display_alarms,omitempty"`
	EmailAlarms     []*EmailAlarm      `json:"email_alarms,omitempty"`

	IANAProps []IANAProperty `json:"iana_props,omitempty"`
	XProps    []XProperty    `json:"x_props,omitempty"`
}

// NewEvent builds an event with the mandatory identity and timing
// properties.
func NewEvent(id, uid string, datestamp values.DateTime, span values.Period) *Event {
	return &Event{ID: id, UID: uid, Datestamp: datestamp, Span: span}
}

// Start returns the opening instant of the event.
func (e *Event) Start() values.DateTime { return e.Span.Start() }

// End returns the closing instant of the event.
func (e *Event) End() values.DateTime { return e.Span.End() }

// Duration returns the extent of the event.
func (e *Event) Duration() values.Duration { return e.Span.Duration() }

// Compare orders events by UID, then recurrence identifier, then
// sequence, then datestamp.
func (e *Event) Compare(o *Event) int {
	return compareIdentity(e.UID, o.UID, e.RecurrenceID, o.RecurrenceID,
		e.Sequence, o.Sequence, e.Datestamp, o.Datestamp)
}

// Equal reports whether two events denote the same revision of the
// same instance.
func (e *Event) Equal(o *Event) bool {
	if e == nil || o == nil {
		return e == o
	}
	return e.Compare(o) == 0
}

// WriteTo renders the VEVENT content lines, CRLF-terminated, in a
// stable property order with empty properties omitted.
func (e *Event) WriteTo(w io.Writer) (int64, error) {
	lw := &lineWriter{w: w}
	lw.line("BEGIN:VEVENT")
	lw.prop("DTSTAMP", e.Datestamp.String())
	lw.prop("UID", e.UID)
	if !e.Span.IsZero() {
		lw.prop("DTSTART", e.Start().String())
	}
	lw.prop("CLASS", string(e.Classification))
	if !e.Created.IsZero() {
		lw.prop("CREATED", e.Created.String())
	}
	lw.prop("DESCRIPTION", e.Description)
	if e.Geo != nil {
		lw.prop("GEO", e.Geo.String())
	}
	if !e.LastModified.IsZero() {
		lw.prop("LAST-MODIFIED", e.LastModified.String())
	}
	lw.prop("LOCATION", e.Location)
	if e.Organizer != nil {
		lw.line(e.Organizer.property())
	}
	lw.propInt("PRIORITY", e.Priority)
	lw.propInt("SEQUENCE", e.Sequence)
	lw.prop("STATUS", string(e.Status))
	lw.prop("SUMMARY", e.Summary)
	lw.prop("TRANSP", string(e.Transparency))
	lw.prop("URL", e.URL)
	if e.RecurrenceID != nil {
		lw.line(e.RecurrenceID.property())
	}
	if e.RecurrenceRule != nil {
		lw.prop("RRULE", e.RecurrenceRule.String())
	}
	if !e.Span.IsZero() {
		lw.prop("DTEND", e.End().String())
	}
	if len(e.Categories) > 0 {
		lw.prop("CATEGORIES", joinStrings(e.Categories))
	}
	for _, a := range e.Attendees {
		lw.line(a.property())
	}
	for _, a := range e.AttachURIs {
		lw.prop("ATTACH", a.URI)
	}
	for _, c := range e.Comments {
		lw.prop("COMMENT", c.Text)
	}
	for _, c := range e.Contacts {
		lw.prop("CONTACT", c.Text)
	}
	for _, x := range e.ExceptionDates {
		lw.prop("EXDATE", joinDateTimes(x.Dates))
	}
	for _, rd := range e.RecurrenceDates {
		lw.prop("RDATE", joinDateTimes(rd.Dates))
		lw.prop("RDATE", joinPeriods(rd.Periods))
	}
	for _, rt := range e.RelatedTos {
		lw.prop("RELATED-TO", rt.Reference)
	}
	for _, rs := range e.RequestStatuses {
		lw.prop("REQUEST-STATUS", rs.Code)
	}
	for _, res := range e.Resources {
		lw.prop("RESOURCES", joinStrings(res.Values))
	}
	lw.extensions(e.IANAProps, e.XProps)
	for _, a := range e.AudioAlarms {
		a.writeTo(lw)
	}
	for _, a := range e.DisplayAlarms {
		a.writeTo(lw)
	}
	for _, a := range e.EmailAlarms {
		a.writeTo(lw)
	}
	lw.line("END:VEVENT")
	return lw.n, lw.err
}

// String renders the VEVENT text.
func (e *Event) String() string { return render(e) }

// GenerateRecurrences materializes the occurrence instances of a
// recurring event: the rule expansion from Start, joined with the
// RDATE date-times and period starts, minus the EXDATE set, deduped
// and ascending. The rule's COUNT truncates the composed set last, so
// excluded dates do not consume occurrence slots. cap bounds the
// result for rules with no termination of their own. Each instance
// carries the parent's UID, an ID derived from the parent's, the
// parent's duration at the occurrence instant, no rule of its own, and
// a this-and-future recurrence identifier.
func (e *Event) GenerateRecurrences(cap int) []*Event {
	if e.RecurrenceRule == nil && len(e.RecurrenceDates) == 0 {
		return nil
	}

	var occurrences []values.DateTime
	count := 0
	if e.RecurrenceRule != nil {
		rule := *e.RecurrenceRule
		count = rule.Count
		if count > 0 {
			// Expand past COUNT so exception dates can be
			// subtracted before the truncation below.
			rule.Count = 0
			extra := 0
			for _, x := range e.ExceptionDates {
				extra += len(x.Dates)
			}
			occurrences = rule.Expand(e.Start(), count+extra)
		} else {
			occurrences = rule.Expand(e.Start(), cap)
		}
	}
	for _, rd := range e.RecurrenceDates {
		occurrences = append(occurrences, rd.Dates...)
		for _, p := range rd.Periods {
			occurrences = append(occurrences, p.Start())
		}
	}

	excluded := make(map[values.DateTime]bool)
	for _, x := range e.ExceptionDates {
		for _, dt := range x.Dates {
			excluded[clockOf(dt)] = true
		}
	}

	seen := make(map[values.DateTime]bool)
	kept := occurrences[:0:0]
	for _, dt := range occurrences {
		key := clockOf(dt)
		if excluded[key] || seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, dt)
	}
	slices.SortFunc(kept, values.DateTime.Compare)
	if count > 0 && len(kept) > count {
		kept = kept[:count]
	}
	if cap > 0 && len(kept) > cap {
		kept = kept[:cap]
	}

	instances := make([]*Event, len(kept))
	for i, occ := range kept {
		id := fmt.Sprintf("%s-%d", e.ID, i+1)
		inst := NewEvent(id, e.UID, e.Datestamp, values.NewPeriodDuration(occ, e.Duration()))
		inst.RecurrenceID = &RecurrenceID{ID: id, Range: RangeThisAndFuture, Value: occ}
		instances[i] = inst
	}
	return instances
}

// clockOf strips the time form so occurrence identity follows the
// clock reading, matching DateTime equality.
func clockOf(dt values.DateTime) values.DateTime {
	dt.Kind = values.KindUnknown
	dt.Zone = ""
	return dt
}

func joinStrings(items []string) string { return strings.Join(items, ",") }
