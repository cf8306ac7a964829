package admin

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentix/dentix/internal/platform/db"
)

// -- Users --

type userRepoPG struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) UserRepository {
	return &userRepoPG{pool: pool}
}

func (r *userRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const userCols = `id, tenant_id, email, name, password_hash, roles, status, created_at, updated_at`

// Create inserts u under u.TenantID, which callers set explicitly.
func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	u.Status = true
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO users (tenant_id, email, name, password_hash, roles)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		u.TenantID, u.Email, u.Name, u.PasswordHash, u.Roles,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func (r *userRepoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.conn(ctx).QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE lower(email) = lower($1)`, email))
}

func (r *userRepoPG) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE tenant_id = $1`, tenantID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+userCols+` FROM users WHERE tenant_id = $1 ORDER BY email LIMIT $2 OFFSET $3`,
		tenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []*User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, u)
	}
	return items, total, rows.Err()
}

func (r *userRepoPG) Deactivate(ctx context.Context, id int64) error {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return err
	}
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE users SET status = FALSE, updated_at = NOW() WHERE id = $1 AND tenant_id = $2 AND status`,
		id, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.TenantID, &u.Email, &u.Name, &u.PasswordHash, &u.Roles,
		&u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// -- Reference data --

type configRepoPG struct {
	pool *pgxpool.Pool
}

func NewConfigRepo(pool *pgxpool.Pool) ConfigRepository {
	return &configRepoPG{pool: pool}
}

func (r *configRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

func (r *configRepoPG) BloodTypes(ctx context.Context) ([]*BloodType, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT id, name FROM blood_types ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*BloodType, error) {
		var b BloodType
		err := row.Scan(&b.ID, &b.Name)
		return &b, err
	})
}

func (r *configRepoPG) SpecialtyDentists(ctx context.Context) ([]*SpecialtyDentist, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT d.id, d.name, d.phone, d.email, s.name
		FROM dentists d
		JOIN specialties s ON s.id = d.specialty_id
		WHERE d.tenant_id = $1
		ORDER BY d.name, d.id`, tenantID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*SpecialtyDentist, error) {
		var d SpecialtyDentist
		err := row.Scan(&d.ID, &d.Name, &d.Phone, &d.Email, &d.Specialty)
		return &d, err
	})
}

func (r *configRepoPG) Offices(ctx context.Context) ([]*Office, error) {
	tenantID, err := db.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, name, address, phone FROM offices WHERE tenant_id = $1 ORDER BY name, id`, tenantID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Office, error) {
		var o Office
		err := row.Scan(&o.ID, &o.Name, &o.Address, &o.Phone)
		return &o, err
	})
}
