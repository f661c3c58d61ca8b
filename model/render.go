package model

import (
	"io"
	"strconv"
	"strings"

	"github.com/samgerene/xcal/values"
)

// lineWriter emits CRLF-terminated content lines and tracks the first
// write error so rendering code can stay linear.
type lineWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (lw *lineWriter) line(s string) {
	if lw.err != nil {
		return
	}
	n, err := io.WriteString(lw.w, s+"\r\n")
	lw.n += int64(n)
	lw.err = err
}

// prop writes "NAME:value", skipping empty values.
func (lw *lineWriter) prop(name, value string) {
	if value != "" {
		lw.line(name + ":" + value)
	}
}

func (lw *lineWriter) propInt(name string, value int) {
	if value != 0 {
		lw.line(name + ":" + strconv.Itoa(value))
	}
}

func (lw *lineWriter) extensions(iana []IANAProperty, x []XProperty) {
	for _, p := range iana {
		lw.prop(p.Name, p.Value)
	}
	for _, p := range x {
		lw.prop(p.Name, p.Value)
	}
}

// component delegates to a nested component's WriteTo, folding its
// byte count and first error into this writer.
func (lw *lineWriter) component(wt io.WriterTo) {
	if lw.err != nil {
		return
	}
	n, err := wt.WriteTo(lw.w)
	lw.n += n
	lw.err = err
}

func render(wt io.WriterTo) string {
	var b strings.Builder
	wt.WriteTo(&b) //nolint:errcheck // strings.Builder cannot fail
	return b.String()
}

// cmpStr is a three-way string comparison for the identity chains.
func cmpStr(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// compareIdentity is the ordering shared by the recurring component
// types: business UID first, then the recurrence identifier, then the
// revision sequence, then the datestamp.
func compareIdentity(aUID, bUID string, aRID, bRID *RecurrenceID, aSeq, bSeq int, aDS, bDS values.DateTime) int {
	if c := cmpStr(aUID, bUID); c != 0 {
		return c
	}
	if c := compareRecurrenceIDs(aRID, bRID); c != 0 {
		return c
	}
	if aSeq != bSeq {
		if aSeq < bSeq {
			return -1
		}
		return 1
	}
	return aDS.Compare(bDS)
}

// compareRecurrenceIDs orders by occurrence date-time; an absent
// identifier sorts before any present one.
func compareRecurrenceIDs(a, b *RecurrenceID) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return a.Value.Compare(b.Value)
	}
}
