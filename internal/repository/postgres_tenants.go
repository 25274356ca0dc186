package repository

import (
	"context"
	"database/sql"

	"github.com/amabee/property-rental/internal/domain"

	"github.com/shopspring/decimal"
)

// PostgresTenantsRepository TenantsRepository on Postgres
type PostgresTenantsRepository struct {
	db       *sql.DB
	attempts int
}

func NewPostgresTenantsRepository(db *sql.DB, retryAttempts int) *PostgresTenantsRepository {
	return &PostgresTenantsRepository{db: db, attempts: retryAttempts}
}

var _ TenantsRepository = (*PostgresTenantsRepository)(nil)

// ListTenantOccupancy is ordered by house_no DESC (no house last), then id.
func (r *PostgresTenantsRepository) ListTenantOccupancy(ctx context.Context) ([]domain.TenantOccupancy, error) {
	query := `
		SELECT
			t.id,
			t.firstname,
			t.middlename,
			t.lastname,
			t.email,
			t.contact,
			t.house_id,
			t.status,
			t.date_in,
			h.house_no,
			h.price
		FROM tenants t
		LEFT JOIN houses h ON h.id = t.house_id
		ORDER BY h.house_no DESC NULLS LAST, t.id
	`

	var out []domain.TenantOccupancy
	err := withRetry(ctx, r.attempts, func() error {
		rows, err := r.db.QueryContext(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = []domain.TenantOccupancy{}
		for rows.Next() {
			var (
				occ     domain.TenantOccupancy
				houseID sql.NullInt64
				status  int64
				houseNo sql.NullString
				rent    decimal.NullDecimal
			)
			if err := rows.Scan(
				&occ.ID,
				&occ.Firstname,
				&occ.Middlename,
				&occ.Lastname,
				&occ.Email,
				&occ.Contact,
				&houseID,
				&status,
				&occ.DateIn,
				&houseNo,
				&rent,
			); err != nil {
				return err
			}
			occ.Status = domain.TenantStatus(status)
			if houseID.Valid {
				id := houseID.Int64
				occ.HouseID = &id
			}
			if houseNo.Valid {
				no := houseNo.String
				occ.HouseNo = &no
			}
			occ.MonthlyRent = rent
			out = append(out, occ)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, classify("list tenants", err)
	}
	return out, nil
}

func (r *PostgresTenantsRepository) GetTenant(ctx context.Context, id int64) (*domain.Tenant, error) {
	var (
		t       domain.Tenant
		houseID sql.NullInt64
		status  int64
	)
	err := withRetry(ctx, r.attempts, func() error {
		return r.db.QueryRowContext(ctx,
			`SELECT id, firstname, middlename, lastname, email, contact, house_id, status, date_in
			 FROM tenants WHERE id = $1`, id,
		).Scan(&t.ID, &t.Firstname, &t.Middlename, &t.Lastname, &t.Email, &t.Contact, &houseID, &status, &t.DateIn)
	})
	if err != nil {
		return nil, classify("get tenant", err)
	}
	t.Status = domain.TenantStatus(status)
	if houseID.Valid {
		hid := houseID.Int64
		t.HouseID = &hid
	}
	return &t, nil
}

func (r *PostgresTenantsRepository) CreateTenant(ctx context.Context, t *domain.Tenant) (int64, error) {
	var id int64
	err := withRetry(ctx, r.attempts, func() error {
		return r.db.QueryRowContext(ctx,
			`INSERT INTO tenants (firstname, middlename, lastname, email, contact, house_id, status, date_in)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
			 RETURNING id`,
			t.Firstname, t.Middlename, t.Lastname, t.Email, t.Contact, t.HouseID, int(t.Status),
		).Scan(&id)
	})
	if err != nil {
		return 0, classify("create tenant", err)
	}
	return id, nil
}

func (r *PostgresTenantsRepository) UpdateTenant(ctx context.Context, t *domain.Tenant) error {
	var res sql.Result
	err := withRetry(ctx, r.attempts, func() (err error) {
		res, err = r.db.ExecContext(ctx,
			`UPDATE tenants
			 SET firstname = $1,
			     middlename = $2,
			     lastname = $3,
			     email = $4,
			     contact = $5,
			     house_id = $6,
			     status = $7
			 WHERE id = $8`,
			t.Firstname, t.Middlename, t.Lastname, t.Email, t.Contact, t.HouseID, int(t.Status), t.ID,
		)
		return err
	})
	if err != nil {
		return classify("update tenant", err)
	}
	return requireAffected("update tenant", res)
}

func (r *PostgresTenantsRepository) DeleteTenant(ctx context.Context, id int64) error {
	var res sql.Result
	err := withRetry(ctx, r.attempts, func() (err error) {
		res, err = r.db.ExecContext(ctx, `DELETE FROM tenants WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return classify("delete tenant", err)
	}
	return requireAffected("delete tenant", res)
}

func (r *PostgresTenantsRepository) CountTenants(ctx context.Context) (int64, error) {
	var n int64
	err := withRetry(ctx, r.attempts, func() error {
		return r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tenants`).Scan(&n)
	})
	if err != nil {
		return 0, classify("count tenants", err)
	}
	return n, nil
}
