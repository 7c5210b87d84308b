package registration

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/regkit/regkit/pkg/ownership"
	"github.com/regkit/regkit/pkg/pg"
)

// PgRepository persists registrations in PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a repository over the given pool.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const registrationColumns = `id, event_id, tenant_id, name, email, status,
	has_attended, registered_at, cancelled_at`

func (r *PgRepository) Find(ctx context.Context, id uuid.UUID) (*Registration, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE id = $1`, id)
	return scanRegistration(row)
}

func (r *PgRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]Registration, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+registrationColumns+` FROM registrations
		 WHERE event_id = $1
		 ORDER BY registered_at ASC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, *reg)
	}
	return regs, rows.Err()
}

func (r *PgRepository) Create(ctx context.Context, reg *Registration) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO registrations (id, event_id, tenant_id, name, email, status,
		                            has_attended, registered_at, cancelled_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		reg.ID, reg.EventID, reg.TenantID, reg.Name, reg.Email, reg.Status,
		reg.HasAttended, reg.RegisteredAt, reg.CancelledAt)
	return err
}

func (r *PgRepository) Update(ctx context.Context, reg *Registration) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE registrations
		 SET status = $2, has_attended = $3, cancelled_at = $4
		 WHERE id = $1`,
		reg.ID, reg.Status, reg.HasAttended, reg.CancelledAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ownership.ErrNotFound
	}
	return nil
}

// CountConfirmed implements admission.ConfirmedCounter.
func (r *PgRepository) CountConfirmed(ctx context.Context, eventID uuid.UUID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM registrations WHERE event_id = $1 AND status = $2`,
		eventID, StatusConfirmed).Scan(&count)
	return count, err
}

func scanRegistration(row pgx.Row) (*Registration, error) {
	var reg Registration
	err := row.Scan(&reg.ID, &reg.EventID, &reg.TenantID, &reg.Name, &reg.Email,
		&reg.Status, &reg.HasAttended, &reg.RegisteredAt, &reg.CancelledAt)
	if pg.IsNotFound(err) {
		return nil, ownership.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}
