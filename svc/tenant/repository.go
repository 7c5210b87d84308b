package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/regkit/regkit/pkg/pg"
	tenantpkg "github.com/regkit/regkit/pkg/tenant"
)

// PgRepository persists tenants in PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a repository over the given pool.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const tenantColumns = `id, name, subdomain, active, created_at`

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*tenantpkg.Tenant, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id)
	return scanTenant(row)
}

// GetBySubdomain resolves a routing key. Only active tenants participate in
// routing, which is also what makes the key reusable after deactivation.
func (r *PgRepository) GetBySubdomain(ctx context.Context, subdomain string) (*tenantpkg.Tenant, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE subdomain = $1 AND active`, subdomain)
	return scanTenant(row)
}

func (r *PgRepository) Create(ctx context.Context, t *tenantpkg.Tenant) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO tenants (id, name, subdomain, active, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.Name, t.Subdomain, t.Active, t.CreatedAt)
	if pg.IsUniqueViolation(err) {
		return errors.Join(ErrSubdomainTaken, err)
	}
	return err
}

func (r *PgRepository) Update(ctx context.Context, t *tenantpkg.Tenant) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tenants SET name = $2, subdomain = $3, active = $4 WHERE id = $1`,
		t.ID, t.Name, t.Subdomain, t.Active)
	if pg.IsUniqueViolation(err) {
		return errors.Join(ErrSubdomainTaken, err)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return tenantpkg.ErrTenantNotFound
	}
	return nil
}

func (r *PgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tenants WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return tenantpkg.ErrTenantNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTenant(row rowScanner) (*tenantpkg.Tenant, error) {
	var t tenantpkg.Tenant
	err := row.Scan(&t.ID, &t.Name, &t.Subdomain, &t.Active, &t.CreatedAt)
	if pg.IsNotFound(err) {
		return nil, tenantpkg.ErrTenantNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
