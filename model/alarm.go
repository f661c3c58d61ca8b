package model

import (
	"encoding/base64"
	"io"

	"github.com/samgerene/xcal/values"
)

// AudioAlarm is a VALARM with the AUDIO action: a trigger plus an
// optional sound attachment, inline or by reference.
type AudioAlarm struct {
	ID           string          `json:"id"`
	Trigger      Trigger         `json:"trigger"`
	Duration     values.Duration `json:"duration,omitempty"`
	Repeat       int             `json:"repeat,omitempty"`
	AttachBinary *AttachBinary   `json:"attach_binary,omitempty"`
	AttachURI    *AttachURI      `json:"attach_uri,omitempty"`
}

func (a *AudioAlarm) writeTo(lw *lineWriter) {
	lw.line("BEGIN:VALARM")
	lw.line("ACTION:AUDIO")
	lw.line(a.Trigger.property())
	if !a.Duration.IsZero() {
		lw.prop("DURATION", a.Duration.String())
	}
	lw.propInt("REPEAT", a.Repeat)
	if a.AttachBinary != nil {
		lw.prop("ATTACH", base64.StdEncoding.EncodeToString(a.AttachBinary.Content))
	} else if a.AttachURI != nil {
		lw.prop("ATTACH", a.AttachURI.URI)
	}
	lw.line("END:VALARM")
}

// WriteTo renders the VALARM content lines, CRLF-terminated.
func (a *AudioAlarm) WriteTo(w io.Writer) (int64, error) {
	lw := &lineWriter{w: w}
	a.writeTo(lw)
	return lw.n, lw.err
}

func (a *AudioAlarm) String() string { return render(a) }

// DisplayAlarm is a VALARM with the DISPLAY action: a trigger plus the
// text to display.
type DisplayAlarm struct {
	ID          string          `json:"id"`
	Trigger     Trigger         `json:"trigger"`
	Duration    values.Duration `json:"duration,omitempty"`
	Repeat      int             `json:"repeat,omitempty"`
	Description string          `json:"description"`
}

func (a *DisplayAlarm) writeTo(lw *lineWriter) {
	lw.line("BEGIN:VALARM")
	lw.line("ACTION:DISPLAY")
	lw.line(a.Trigger.property())
	if !a.Duration.IsZero() {
		lw.prop("DURATION", a.Duration.String())
	}
	lw.propInt("REPEAT", a.Repeat)
	lw.prop("DESCRIPTION", a.Description)
	lw.line("END:VALARM")
}

// WriteTo renders the VALARM content lines, CRLF-terminated.
func (a *DisplayAlarm) WriteTo(w io.Writer) (int64, error) {
	lw := &lineWriter{w: w}
	a.writeTo(lw)
	return lw.n, lw.err
}

func (a *DisplayAlarm) String() string { return render(a) }

// EmailAlarm is a VALARM with the EMAIL action: a trigger plus the
// message summary, body, recipients and attachments.
type EmailAlarm struct {
	ID             string          `json:"id"`
	Trigger        Trigger         `json:"trigger"`
	Duration       values.Duration `json:"duration,omitempty"`
	Repeat         int             `json:"repeat,omitempty"`
	Description    string          `json:"description"`
	Summary        string          `json:"summary"`
	Attendees      []*Attendee     `json:"attendees,omitempty"`
	AttachBinaries []*AttachBinary `json:"attach_binaries,omitempty"`
	AttachURIs     []*AttachURI    `json:"attach_uris,omitempty"`
}

func (a *EmailAlarm) writeTo(lw *lineWriter) {
	lw.line("BEGIN:VALARM")
	lw.line("ACTION:EMAIL")
	lw.line(a.Trigger.property())
	if !a.Duration.IsZero() {
		lw.prop("DURATION", a.Duration.String())
	}
	lw.propInt("REPEAT", a.Repeat)
	lw.prop("DESCRIPTION", a.Description)
	lw.prop("SUMMARY", a.Summary)
	for _, att := range a.Attendees {
		lw.line(att.property())
	}
	for _, b := range a.AttachBinaries {
		lw.prop("ATTACH", base64.StdEncoding.EncodeToString(b.Content))
	}
	for _, u := range a.AttachURIs {
		lw.prop("ATTACH", u.URI)
	}
	lw.line("END:VALARM")
}

// WriteTo renders the VALARM content lines, CRLF-terminated.
func (a *EmailAlarm) WriteTo(w io.Writer) (int64, error) {
	lw := &lineWriter{w: w}
	a.writeTo(lw)
	return lw.n, lw.err
}

func (a *EmailAlarm) String() string { return render(a) }
