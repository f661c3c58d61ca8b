package sqlite

import (
	"context"
	"database/sql"

	"github.com/samgerene/xcal"
	"github.com/samgerene/xcal/model"
	"github.com/samgerene/xcal/values"
)

// Table specs for the sub-entity types. Column order matches the
// schema; id comes first everywhere.

func attendeeTable() table[*model.Attendee] {
	return table[*model.Attendee]{
		name:    "attendees",
		columns: []string{"id", "address", "common_name", "role", "status", "rsvp"},
		key:     func(a *model.Attendee) string { return a.ID },
		setKey:  func(a *model.Attendee, id string) { a.ID = id },
		args: func(a *model.Attendee) []any {
			return []any{a.ID, a.Address, a.CommonName, string(a.Role), string(a.Status), boolToInt(a.RSVP)}
		},
		scan: func(row rowScanner) (*model.Attendee, error) {
			var a model.Attendee
			var role, status string
			var rsvp int
			if err := row.Scan(&a.ID, &a.Address, &a.CommonName, &role, &status, &rsvp); err != nil {
				return nil, err
			}
			a.Role = model.Role(role)
			a.Status = model.PartStat(status)
			a.RSVP = rsvp != 0
			return &a, nil
		},
	}
}

func attachBinaryTable() table[*model.AttachBinary] {
	return table[*model.AttachBinary]{
		name:    "attach_binaries",
		columns: []string{"id", "content", "format"},
		key:     func(a *model.AttachBinary) string { return a.ID },
		setKey:  func(a *model.AttachBinary, id string) { a.ID = id },
		args: func(a *model.AttachBinary) []any {
			return []any{a.ID, a.Content, a.Format}
		},
		scan: func(row rowScanner) (*model.AttachBinary, error) {
			var a model.AttachBinary
			if err := row.Scan(&a.ID, &a.Content, &a.Format); err != nil {
				return nil, err
			}
			return &a, nil
		},
	}
}

func attachURITable() table[*model.AttachURI] {
	return table[*model.AttachURI]{
		name:    "attach_uris",
		columns: []string{"id", "uri", "format"},
		key:     func(a *model.AttachURI) string { return a.ID },
		setKey:  func(a *model.AttachURI, id string) { a.ID = id },
		args: func(a *model.AttachURI) []any {
			return []any{a.ID, a.URI, a.Format}
		},
		scan: func(row rowScanner) (*model.AttachURI, error) {
			var a model.AttachURI
			if err := row.Scan(&a.ID, &a.URI, &a.Format); err != nil {
				return nil, err
			}
			return &a, nil
		},
	}
}

func commentTable() table[*model.Comment] {
	return table[*model.Comment]{
		name:    "comments",
		columns: []string{"id", "text", "language"},
		key:     func(c *model.Comment) string { return c.ID },
		setKey:  func(c *model.Comment, id string) { c.ID = id },
		args: func(c *model.Comment) []any {
			return []any{c.ID, c.Text, c.Language}
		},
		scan: func(row rowScanner) (*model.Comment, error) {
			var c model.Comment
			if err := row.Scan(&c.ID, &c.Text, &c.Language); err != nil {
				return nil, err
			}
			return &c, nil
		},
	}
}

func contactTable() table[*model.Contact] {
	return table[*model.Contact]{
		name:    "contacts",
		columns: []string{"id", "text", "language"},
		key:     func(c *model.Contact) string { return c.ID },
		setKey:  func(c *model.Contact, id string) { c.ID = id },
		args: func(c *model.Contact) []any {
			return []any{c.ID, c.Text, c.Language}
		},
		scan: func(row rowScanner) (*model.Contact, error) {
			var c model.Contact
			if err := row.Scan(&c.ID, &c.Text, &c.Language); err != nil {
				return nil, err
			}
			return &c, nil
		},
	}
}

func exceptionDatesTable() table[*model.ExceptionDates] {
	return table[*model.ExceptionDates]{
		name:    "exception_dates",
		columns: []string{"id", "dates"},
		key:     func(x *model.ExceptionDates) string { return x.ID },
		setKey:  func(x *model.ExceptionDates, id string) { x.ID = id },
		args: func(x *model.ExceptionDates) []any {
			return []any{x.ID, fmtDateTimes(x.Dates)}
		},
		scan: func(row rowScanner) (*model.ExceptionDates, error) {
			var x model.ExceptionDates
			var dates string
			if err := row.Scan(&x.ID, &dates); err != nil {
				return nil, err
			}
			var err error
			if x.Dates, err = scanDateTimes(dates); err != nil {
				return nil, err
			}
			return &x, nil
		},
	}
}

func recurrenceDatesTable() table[*model.RecurrenceDates] {
	return table[*model.RecurrenceDates]{
		name:    "recurrence_dates",
		columns: []string{"id", "dates", "periods"},
		key:     func(rd *model.RecurrenceDates) string { return rd.ID },
		setKey:  func(rd *model.RecurrenceDates, id string) { rd.ID = id },
		args: func(rd *model.RecurrenceDates) []any {
			return []any{rd.ID, fmtDateTimes(rd.Dates), fmtPeriods(rd.Periods)}
		},
		scan: func(row rowScanner) (*model.RecurrenceDates, error) {
			var rd model.RecurrenceDates
			var dates, periods string
			if err := row.Scan(&rd.ID, &dates, &periods); err != nil {
				return nil, err
			}
			var err error
			if rd.Dates, err = scanDateTimes(dates); err != nil {
				return nil, err
			}
			if rd.Periods, err = scanPeriods(periods); err != nil {
				return nil, err
			}
			return &rd, nil
		},
	}
}

func relatedToTable() table[*model.RelatedTo] {
	return table[*model.RelatedTo]{
		name:    "related_tos",
		columns: []string{"id", "reference", "rel_type"},
		key:     func(rt *model.RelatedTo) string { return rt.ID },
		setKey:  func(rt *model.RelatedTo, id string) { rt.ID = id },
		args: func(rt *model.RelatedTo) []any {
			return []any{rt.ID, rt.Reference, rt.RelType}
		},
		scan: func(row rowScanner) (*model.RelatedTo, error) {
			var rt model.RelatedTo
			if err := row.Scan(&rt.ID, &rt.Reference, &rt.RelType); err != nil {
				return nil, err
			}
			return &rt, nil
		},
	}
}

func requestStatusTable() table[*model.RequestStatus] {
	return table[*model.RequestStatus]{
		name:    "request_statuses",
		columns: []string{"id", "code", "description", "extra_data"},
		key:     func(rs *model.RequestStatus) string { return rs.ID },
		setKey:  func(rs *model.RequestStatus, id string) { rs.ID = id },
		args: func(rs *model.RequestStatus) []any {
			return []any{rs.ID, rs.Code, rs.Description, rs.ExtraData}
		},
		scan: func(row rowScanner) (*model.RequestStatus, error) {
			var rs model.RequestStatus
			if err := row.Scan(&rs.ID, &rs.Code, &rs.Description, &rs.ExtraData); err != nil {
				return nil, err
			}
			return &rs, nil
		},
	}
}

func resourcesTable() table[*model.Resources] {
	return table[*model.Resources]{
		name:    "resources",
		columns: []string{"id", "vals", "language"},
		key:     func(r *model.Resources) string { return r.ID },
		setKey:  func(r *model.Resources, id string) { r.ID = id },
		args: func(r *model.Resources) []any {
			return []any{r.ID, fmtStrings(r.Values), r.Language}
		},
		scan: func(row rowScanner) (*model.Resources, error) {
			var r model.Resources
			var vals string
			if err := row.Scan(&r.ID, &vals, &r.Language); err != nil {
				return nil, err
			}
			r.Values = scanStrings(vals)
			return &r, nil
		},
	}
}

func observanceTable() table[*model.Observance] {
	return table[*model.Observance]{
		name:    "observances",
		columns: []string{"id", "kind", "start", "offset_from", "offset_to", "rrule", "name"},
		key:     func(ob *model.Observance) string { return ob.ID },
		setKey:  func(ob *model.Observance, id string) { ob.ID = id },
		args: func(ob *model.Observance) []any {
			return []any{ob.ID, string(ob.Kind), fmtDateTime(ob.Start),
				ob.OffsetFrom.String(), ob.OffsetTo.String(), fmtRule(ob.Rule), ob.Name}
		},
		scan: func(row rowScanner) (*model.Observance, error) {
			var ob model.Observance
			var kind, start, from, to, rrule string
			if err := row.Scan(&ob.ID, &kind, &start, &from, &to, &rrule, &ob.Name); err != nil {
				return nil, err
			}
			ob.Kind = model.ObservanceKind(kind)
			var err error
			if ob.Start, err = scanDateTime(start); err != nil {
				return nil, err
			}
			if ob.OffsetFrom, err = values.ParseUTCOffset(from); err != nil {
				return nil, err
			}
			if ob.OffsetTo, err = values.ParseUTCOffset(to); err != nil {
				return nil, err
			}
			if ob.Rule, err = scanRule(rrule); err != nil {
				return nil, err
			}
			return &ob, nil
		},
	}
}

func fbPeriodTable() table[*model.FreeBusyPeriod] {
	return table[*model.FreeBusyPeriod]{
		name:    "fb_periods",
		columns: []string{"id", "fbtype", "period"},
		key:     func(p *model.FreeBusyPeriod) string { return p.ID },
		setKey:  func(p *model.FreeBusyPeriod, id string) { p.ID = id },
		args: func(p *model.FreeBusyPeriod) []any {
			return []any{p.ID, string(p.Type), p.Period.String()}
		},
		scan: func(row rowScanner) (*model.FreeBusyPeriod, error) {
			var p model.FreeBusyPeriod
			var fbtype, period string
			if err := row.Scan(&p.ID, &fbtype, &period); err != nil {
				return nil, err
			}
			p.Type = model.FreeBusyType(fbtype)
			var err error
			if p.Period, err = values.ParsePeriod(period); err != nil {
				return nil, err
			}
			return &p, nil
		},
	}
}

// ScalarRepository stores a sub-entity type with no relations of its
// own; hydration is the identity, so the repository is the table
// mapper plus the key-count operations.
type ScalarRepository[T any] struct {
	db *sql.DB
	t  table[T]
}

// NewAttendeeRepository returns the repository for attendee rows.
func NewAttendeeRepository(db *sql.DB) *ScalarRepository[*model.Attendee] {
	return &ScalarRepository[*model.Attendee]{db: db, t: attendeeTable()}
}

// NewCommentRepository returns the repository for comment rows.
func NewCommentRepository(db *sql.DB) *ScalarRepository[*model.Comment] {
	return &ScalarRepository[*model.Comment]{db: db, t: commentTable()}
}

// NewContactRepository returns the repository for contact rows.
func NewContactRepository(db *sql.DB) *ScalarRepository[*model.Contact] {
	return &ScalarRepository[*model.Contact]{db: db, t: contactTable()}
}

// NewResourcesRepository returns the repository for resources rows.
func NewResourcesRepository(db *sql.DB) *ScalarRepository[*model.Resources] {
	return &ScalarRepository[*model.Resources]{db: db, t: resourcesTable()}
}

// Find returns the entity with the given key, or the zero value when
// absent.
func (r *ScalarRepository[T]) Find(ctx context.Context, key string) (T, error) {
	entity, _, err := r.t.selectOne(ctx, r.db, key)
	return entity, err
}

// FindAll returns the entities whose keys are in keys, ordered by id.
func (r *ScalarRepository[T]) FindAll(ctx context.Context, keys []string, skip, take int) ([]T, error) {
	return r.t.selectByKeys(ctx, r.db, keys, skip, take)
}

// Get returns every stored entity, ordered by id.
func (r *ScalarRepository[T]) Get(ctx context.Context, skip, take int) ([]T, error) {
	return r.t.selectAll(ctx, r.db, skip, take)
}

// Save upserts one entity.
func (r *ScalarRepository[T]) Save(ctx context.Context, entity T) error {
	return r.t.upsert(ctx, r.db, []T{entity})
}

// SaveAll upserts a batch.
func (r *ScalarRepository[T]) SaveAll(ctx context.Context, entities []T) error {
	return r.t.upsert(ctx, r.db, entities)
}

// Erase removes one entity.
func (r *ScalarRepository[T]) Erase(ctx context.Context, key string) error {
	return r.t.deleteKeys(ctx, r.db, []string{key})
}

// EraseAll removes the entities in keys; nil keys means everything.
func (r *ScalarRepository[T]) EraseAll(ctx context.Context, keys []string) error {
	return r.t.deleteKeys(ctx, r.db, keys)
}

// ContainsKey reports whether the key exists.
func (r *ScalarRepository[T]) ContainsKey(ctx context.Context, key string) (bool, error) {
	n, err := r.t.countKeys(ctx, r.db, []string{key})
	return n == 1, err
}

// ContainsKeys evaluates the key set under the given expectation mode.
func (r *ScalarRepository[T]) ContainsKeys(ctx context.Context, keys []string, mode xcal.ExpectationMode) (bool, error) {
	n, err := r.t.countKeys(ctx, r.db, keys)
	if err != nil {
		return false, err
	}
	return containsKeys(n, len(keys), mode), nil
}
