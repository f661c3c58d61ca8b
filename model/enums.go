// Package model defines the calendar component graph: calendars,
// events, todos, journals, free/busy blocks, time zones and alarms,
// together with their sub-entity properties, identity and ordering
// rules, iCalendar text rendering, and recurrence materialization.
package model

// Classification is the access classification of a component.
type Classification string

const (
	ClassPublic       Classification = "PUBLIC"
	ClassPrivate      Classification = "PRIVATE"
	ClassConfidential Classification = "CONFIDENTIAL"
)

// Status is the lifecycle status of a component. The valid set differs
// per component type; events use tentative/confirmed/cancelled, todos
// use needs-action/completed/in-process/cancelled, journals use
// draft/final/cancelled.
type Status string

const (
	StatusTentative   Status = "TENTATIVE"
	StatusConfirmed   Status = "CONFIRMED"
	StatusCancelled   Status = "CANCELLED"
	StatusNeedsAction Status = "NEEDS-ACTION"
	StatusCompleted   Status = "COMPLETED"
	StatusInProcess   Status = "IN-PROCESS"
	StatusDraft       Status = "DRAFT"
	StatusFinal       Status = "FINAL"
)

// Transparency controls whether an event blocks free/busy time.
type Transparency string

const (
	TransparencyOpaque      Transparency = "OPAQUE"
	TransparencyTransparent Transparency = "TRANSPARENT"
)

// Role is an attendee's participation role.
type Role string

const (
	RoleChair          Role = "CHAIR"
	RoleRequired       Role = "REQ-PARTICIPANT"
	RoleOptional       Role = "OPT-PARTICIPANT"
	RoleNonParticipant Role = "NON-PARTICIPANT"
)

// PartStat is an attendee's participation status.
type PartStat string

const (
	PartStatNeedsAction PartStat = "NEEDS-ACTION"
	PartStatAccepted    PartStat = "ACCEPTED"
	PartStatDeclined    PartStat = "DECLINED"
	PartStatTentative   PartStat = "TENTATIVE"
	PartStatDelegated   PartStat = "DELEGATED"
)

// RangeType scopes a recurrence identifier to one instance or to the
// instance and everything after it.
type RangeType string

const RangeThisAndFuture RangeType = "THISANDFUTURE"

// Related anchors an alarm trigger to the start or end of its
// component.
type Related string

const (
	RelatedStart Related = "START"
	RelatedEnd   Related = "END"
)

// FreeBusyType classifies a free/busy period.
type FreeBusyType string

const (
	FreeBusyFree            FreeBusyType = "FREE"
	FreeBusyBusy            FreeBusyType = "BUSY"
	FreeBusyBusyUnavailable FreeBusyType = "BUSY-UNAVAILABLE"
	FreeBusyBusyTentative   FreeBusyType = "BUSY-TENTATIVE"
)

// ObservanceKind distinguishes standard-time from daylight-saving
// observances inside a time zone definition.
type ObservanceKind string

const (
	ObservanceStandard ObservanceKind = "STANDARD"
	ObservanceDaylight ObservanceKind = "DAYLIGHT"
)
