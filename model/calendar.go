package model

import (
	"io"

	"github.com/samgerene/xcal/values"
)

// Default calendar scalars per RFC 5545.
const (
	DefaultVersion  = "2.0"
	DefaultCalscale = "GREGORIAN"
)

// Calendar is the VCALENDAR aggregate: the stream-level scalars plus
// the owned component collections. The collections are the hydrated
// part of the entity; a dehydrated calendar carries only the scalars.
type Calendar struct {
	ID       string `json:"id"`
	ProdID   string `json:"prodid"`
	Version  string `json:"version"`
	Calscale string `json:"calscale,omitempty"`
	Method   string `json:"method,omitempty"`

	Events     []*Event    `json:"events,omitempty"`
	Todos      []*Todo     `json:"todos,omitempty"`
	Journals   []*Journal  `json:"journals,omitempty"`
	FreeBusies []*FreeBusy `json:"freebusies,omitempty"`
	TimeZones  []*TimeZone `json:"timezones,omitempty"`

	IANAProps []IANAProperty `json:"iana_props,omitempty"`
	XProps    []XProperty    `json:"x_props,omitempty"`
}

// NewCalendar builds a calendar with the defaults RFC 5545 mandates.
func NewCalendar(id, prodID string) *Calendar {
	return &Calendar{ID: id, ProdID: prodID, Version: DefaultVersion, Calscale: DefaultCalscale}
}

// Equal reports whether two calendars have the same storage identity.
func (c *Calendar) Equal(o *Calendar) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.ID == o.ID
}

// FindEvent returns the contained event with the given storage key, or
// nil.
func (c *Calendar) FindEvent(id string) *Event {
	for _, e := range c.Events {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// EventsAt returns the contained events whose span covers the given
// instant.
func (c *Calendar) EventsAt(at values.DateTime) []*Event {
	var out []*Event
	for _, e := range c.Events {
		if e.Span.IsZero() {
			continue
		}
		if !at.Before(e.Start()) && at.Before(e.End()) {
			out = append(out, e)
		}
	}
	return out
}

// WriteTo renders the complete VCALENDAR stream, CRLF-terminated.
func (c *Calendar) WriteTo(w io.Writer) (int64, error) {
	lw := &lineWriter{w: w}
	lw.line("BEGIN:VCALENDAR")
	version := c.Version
	if version == "" {
		version = DefaultVersion
	}
	lw.prop("VERSION", version)
	lw.prop("PRODID", c.ProdID)
	lw.prop("CALSCALE", c.Calscale)
	lw.prop("METHOD", c.Method)
	lw.extensions(c.IANAProps, c.XProps)
	for _, z := range c.TimeZones {
		lw.component(z)
	}
	for _, e := range c.Events {
		lw.component(e)
	}
	for _, t := range c.Todos {
		lw.component(t)
	}
	for _, j := range c.Journals {
		lw.component(j)
	}
	for _, f := range c.FreeBusies {
		lw.component(f)
	}
	lw.line("END:VCALENDAR")
	return lw.n, lw.err
}

// String renders the VCALENDAR text.
func (c *Calendar) String() string { return render(c) }
