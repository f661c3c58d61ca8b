package model

import "github.com/samgerene/xcal"

// Patchable field names. Repositories use these to select the columns
// or relation collections a Patch touches; names outside the set valid
// for the entity type are rejected with xcal.ErrInvalidArgument.
const (
	// Primitive fields.
	FieldUID            xcal.Field = "uid"
	FieldDatestamp      xcal.Field = "datestamp"
	FieldCreated        xcal.Field = "created"
	FieldLastModified   xcal.Field = "last_modified"
	FieldStart          xcal.Field = "start"
	FieldDuration       xcal.Field = "duration"
	FieldClassification xcal.Field = "classification"
	FieldDescription    xcal.Field = "description"
	FieldGeo            xcal.Field = "geo"
	FieldLocation       xcal.Field = "location"
	FieldOrganizer      xcal.Field = "organizer"
	FieldPriority       xcal.Field = "priority"
	FieldSequence       xcal.Field = "sequence"
	FieldStatus         xcal.Field = "status"
	FieldSummary        xcal.Field = "summary"
	FieldTransparency   xcal.Field = "transparency"
	FieldURL            xcal.Field = "url"
	FieldCategories     xcal.Field = "categories"
	FieldRecurrenceRule xcal.Field = "rrule"
	FieldDue            xcal.Field = "due"
	FieldCompleted      xcal.Field = "completed"
	FieldPercent        xcal.Field = "percent_complete"
	FieldTrigger        xcal.Field = "trigger"
	FieldRepeat         xcal.Field = "repeat"

	// Calendar primitive fields.
	FieldProdID   xcal.Field = "prodid"
	FieldVersion  xcal.Field = "version"
	FieldCalscale xcal.Field = "calscale"
	FieldMethod   xcal.Field = "method"

	// Relation fields.
	FieldAttendees       xcal.Field = "attendees"
	FieldAttachBinaries  xcal.Field = "attach_binaries"
	FieldAttachURIs      xcal.Field = "attach_uris"
	FieldComments        xcal.Field = "comments"
	FieldContacts        xcal.Field = "contacts"
	FieldExceptionDates  xcal.Field = "exception_dates"
	FieldRecurrenceDates xcal.Field = "recurrence_dates"
	FieldRelatedTos      xcal.Field = "related_tos"
	FieldRequestStatuses xcal.Field = "request_statuses"
	FieldResources       xcal.Field = "resources"
	FieldAudioAlarms     xcal.Field = "audio_alarms"
	FieldDisplayAlarms   xcal.Field = "display_alarms"
	FieldEmailAlarms     xcal.Field = "email_alarms"

	// Calendar relation fields.
	FieldEvents     xcal.Field = "events"
	FieldTodos      xcal.Field = "todos"
	FieldJournals   xcal.Field = "journals"
	FieldFreeBusies xcal.Field = "freebusies"
	FieldTimeZones  xcal.Field = "timezones"
)
