package model

import (
	"fmt"
	"strings"

	"github.com/samgerene/xcal/recur"
	"github.com/samgerene/xcal/values"
)

// Attendee is a participant of a component. ID is the storage key;
// Address is the calendar user address, typically a mailto URI.
type Attendee struct {
	ID         string   `json:"id"`
	Address    string   `json:"address"`
	CommonName string   `json:"common_name,omitempty"`
	Role       Role     `json:"role,omitempty"`
	Status     PartStat `json:"status,omitempty"`
	RSVP       bool     `json:"rsvp,omitempty"`
}

func (a *Attendee) property() string {
	var b strings.Builder
	b.WriteString("ATTENDEE")
	if a.CommonName != "" {
		b.WriteString(";CN=" + a.CommonName)
	}
	if a.Role != "" {
		b.WriteString(";ROLE=" + string(a.Role))
	}
	if a.Status != "" {
		b.WriteString(";PARTSTAT=" + string(a.Status))
	}
	if a.RSVP {
		b.WriteString(";RSVP=TRUE")
	}
	b.WriteString(":" + a.Address)
	return b.String()
}

// AttachBinary is an inline binary attachment.
type AttachBinary struct {
	ID      string `json:"id"`
	Content []byte `json:"content"`
	Format  string `json:"format,omitempty"`
}

// AttachURI is an attachment referenced by URI.
type AttachURI struct {
	ID     string `json:"id"`
	URI    string `json:"uri"`
	Format string `json:"format,omitempty"`
}

// Comment is a free-text comment with an optional language tag.
type Comment struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

// Contact names a person or resource to contact about a component.
type Contact struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

// ExceptionDates is one EXDATE property: date-times excluded from a
// recurrence set.
type ExceptionDates struct {
	ID    string            `json:"id"`
	Dates []values.DateTime `json:"dates"`
}

// RecurrenceDates is one RDATE property: explicit extra occurrences,
// as date-times or as periods whose starts are the occurrences.
type RecurrenceDates struct {
	ID      string            `json:"id"`
	Dates   []values.DateTime `json:"dates,omitempty"`
	Periods []values.Period   `json:"periods,omitempty"`
}

// RelatedTo links a component to another by its UID.
type RelatedTo struct {
	ID        string `json:"id"`
	Reference string `json:"reference"`
	RelType   string `json:"rel_type,omitempty"`
}

// RequestStatus carries a scheduling request outcome code.
type RequestStatus struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
	ExtraData   string `json:"extra_data,omitempty"`
}

// Resources lists equipment or rooms needed by a component.
type Resources struct {
	ID       string   `json:"id"`
	Values   []string `json:"values"`
	Language string   `json:"language,omitempty"`
}

// Observance is one STANDARD or DAYLIGHT block of a time zone
// definition.
type Observance struct {
	ID         string           `json:"id"`
	Kind       ObservanceKind   `json:"kind"`
	Start      values.DateTime  `json:"start"`
	OffsetFrom values.UTCOffset `json:"offset_from"`
	OffsetTo   values.UTCOffset `json:"offset_to"`
	Rule       *recur.Rule      `json:"rule,omitempty"`
	Name       string           `json:"name,omitempty"`
}

// FreeBusyPeriod is one FREEBUSY property value with its type.
type FreeBusyPeriod struct {
	ID     string        `json:"id"`
	Type   FreeBusyType  `json:"type"`
	Period values.Period `json:"period"`
}

// Geo is a latitude/longitude position.
type Geo struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (g Geo) String() string {
	return fmt.Sprintf("%g;%g", g.Latitude, g.Longitude)
}

// Organizer identifies the component organizer.
type Organizer struct {
	Address    string `json:"address"`
	CommonName string `json:"common_name,omitempty"`
}

func (o Organizer) property() string {
	if o.CommonName != "" {
		return "ORGANIZER;CN=" + o.CommonName + ":" + o.Address
	}
	return "ORGANIZER:" + o.Address
}

// RecurrenceID identifies the occurrence a component instance replaces
// within its recurrence set.
type RecurrenceID struct {
	ID    string          `json:"id"`
	Range RangeType       `json:"range,omitempty"`
	Value values.DateTime `json:"value"`
}

func (r RecurrenceID) property() string {
	if r.Range != "" {
		return "RECURRENCE-ID;RANGE=" + string(r.Range) + ":" + r.Value.String()
	}
	return "RECURRENCE-ID:" + r.Value.String()
}

// Trigger fires an alarm either a duration relative to its component
// or at an absolute date-time. Exactly one of Duration and DateTime is
// set.
type Trigger struct {
	Duration *values.Duration `json:"duration,omitempty"`
	DateTime *values.DateTime `json:"date_time,omitempty"`
	Related  Related          `json:"related,omitempty"`
}

func (t Trigger) property() string {
	var b strings.Builder
	b.WriteString("TRIGGER")
	if t.Related != "" {
		b.WriteString(";RELATED=" + string(t.Related))
	}
	switch {
	case t.DateTime != nil:
		b.WriteString(";VALUE=DATE-TIME:" + t.DateTime.String())
	case t.Duration != nil:
		b.WriteString(":" + t.Duration.String())
	default:
		b.WriteString(":PT0S")
	}
	return b.String()
}

// IsZero reports whether the trigger carries no value.
func (t Trigger) IsZero() bool { return t.Duration == nil && t.DateTime == nil }

// IANAProperty is a registered extension property carried opaquely.
type IANAProperty struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// XProperty is a vendor extension property carried opaquely. Names
// begin with "X-".
type XProperty struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func joinDateTimes(dts []values.DateTime) string {
	parts := make([]string, len(dts))
	for i, dt := range dts {
		parts[i] = dt.String()
	}
	return strings.Join(parts, ",")
}

func joinPeriods(ps []values.Period) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.String()
	}
	return strings.Join(parts, ",")
}
