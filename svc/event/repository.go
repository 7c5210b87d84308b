package event

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/regkit/regkit/pkg/ownership"
	"github.com/regkit/regkit/pkg/pg"
)

// PgRepository persists events in PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a repository over the given pool.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const eventColumns = `id, tenant_id, title, description, location, starts_at,
	max_attendees, status, cancelled, created_at, updated_at`

func (r *PgRepository) Find(ctx context.Context, id uuid.UUID) (*Event, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	return scanEvent(row)
}

func (r *PgRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]Event, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE tenant_id = $1
		 ORDER BY starts_at DESC`, tenantID)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

func (r *PgRepository) ListUpcoming(ctx context.Context, tenantID uuid.UUID, after time.Time) ([]Event, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE tenant_id = $1 AND status = $2 AND NOT cancelled AND starts_at > $3
		 ORDER BY starts_at ASC`, tenantID, StatusApproved, after)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

func (r *PgRepository) ListPending(ctx context.Context, tenantID uuid.UUID) ([]Event, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE tenant_id = $1 AND status = $2
		 ORDER BY created_at ASC`, tenantID, StatusPending)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

func (r *PgRepository) Create(ctx context.Context, e *Event) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO events (id, tenant_id, title, description, location, starts_at,
		                     max_attendees, status, cancelled, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		e.ID, e.TenantID, e.Title, e.Description, e.Location, e.StartsAt,
		e.MaxAttendees, e.Status, e.Cancelled, e.CreatedAt, e.UpdatedAt)
	return err
}

func (r *PgRepository) Update(ctx context.Context, e *Event) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE events
		 SET title = $2, description = $3, location = $4, starts_at = $5,
		     max_attendees = $6, status = $7, cancelled = $8, updated_at = $9
		 WHERE id = $1`,
		e.ID, e.Title, e.Description, e.Location, e.StartsAt,
		e.MaxAttendees, e.Status, e.Cancelled, e.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ownership.ErrNotFound
	}
	return nil
}

func (r *PgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ownership.ErrNotFound
	}
	return nil
}

// Stats aggregates the registrations table with filtered counts so one scan
// produces the whole summary.
func (r *PgRepository) Stats(ctx context.Context, eventID uuid.UUID) (*Stats, error) {
	st := Stats{EventID: eventID}
	err := r.pool.QueryRow(ctx,
		`SELECT
		   count(*) FILTER (WHERE status = 'confirmed'),
		   count(*) FILTER (WHERE status = 'waitlisted'),
		   count(*) FILTER (WHERE status = 'cancelled'),
		   count(*) FILTER (WHERE has_attended)
		 FROM registrations WHERE event_id = $1`, eventID).
		Scan(&st.Confirmed, &st.Waitlisted, &st.Cancelled, &st.Attended)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*Event, error) {
	var e Event
	err := row.Scan(&e.ID, &e.TenantID, &e.Title, &e.Description, &e.Location,
		&e.StartsAt, &e.MaxAttendees, &e.Status, &e.Cancelled, &e.CreatedAt, &e.UpdatedAt)
	if pg.IsNotFound(err) {
		return nil, ownership.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func collectEvents(rows pgx.Rows) ([]Event, error) {
	defer rows.Close()
	events := make([]Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}
