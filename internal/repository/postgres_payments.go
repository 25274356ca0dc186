package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/amabee/property-rental/internal/domain"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// PostgresPaymentsRepository PaymentsRepository on Postgres
type PostgresPaymentsRepository struct {
	db       *sql.DB
	attempts int
}

func NewPostgresPaymentsRepository(db *sql.DB, retryAttempts int) *PostgresPaymentsRepository {
	return &PostgresPaymentsRepository{db: db, attempts: retryAttempts}
}

var _ PaymentsRepository = (*PostgresPaymentsRepository)(nil)

// ListPayments newest first, joined with tenant name and house number.
func (r *PostgresPaymentsRepository) ListPayments(ctx context.Context) ([]domain.PaymentView, error) {
	query := `
		SELECT
			p.id,
			p.tenant_id,
			p.amount,
			p.invoice,
			p.date_created,
			t.firstname,
			t.middlename,
			t.lastname,
			h.house_no
		FROM payments p
		JOIN tenants t ON t.id = p.tenant_id
		LEFT JOIN houses h ON h.id = t.house_id
		ORDER BY p.date_created DESC, p.id DESC
	`

	var out []domain.PaymentView
	err := withRetry(ctx, r.attempts, func() error {
		rows, err := r.db.QueryContext(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = []domain.PaymentView{}
		for rows.Next() {
			var (
				v       domain.PaymentView
				tenant  domain.Tenant
				houseNo sql.NullString
			)
			if err := rows.Scan(
				&v.ID,
				&v.TenantID,
				&v.Amount,
				&v.Invoice,
				&v.DateCreated,
				&tenant.Firstname,
				&tenant.Middlename,
				&tenant.Lastname,
				&houseNo,
			); err != nil {
				return err
			}
			v.TenantName = tenant.FullName()
			if houseNo.Valid {
				no := houseNo.String
				v.HouseNo = &no
			}
			out = append(out, v)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, classify("list payments", err)
	}
	return out, nil
}

func (r *PostgresPaymentsRepository) ListPaymentsForTenants(ctx context.Context, tenantIDs []int64) ([]domain.Payment, error) {
	if len(tenantIDs) == 0 {
		return []domain.Payment{}, nil
	}

	var out []domain.Payment
	err := withRetry(ctx, r.attempts, func() error {
		rows, err := r.db.QueryContext(ctx,
			`SELECT id, tenant_id, amount, invoice, date_created
			 FROM payments
			 WHERE tenant_id = ANY($1)
			 ORDER BY tenant_id, date_created, id`,
			pq.Array(tenantIDs),
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = []domain.Payment{}
		for rows.Next() {
			var p domain.Payment
			if err := rows.Scan(&p.ID, &p.TenantID, &p.Amount, &p.Invoice, &p.DateCreated); err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, classify("list tenant payments", err)
	}
	return out, nil
}

func (r *PostgresPaymentsRepository) CreatePayment(ctx context.Context, p *domain.Payment) (int64, error) {
	var id int64
	err := withRetry(ctx, r.attempts, func() error {
		return r.db.QueryRowContext(ctx,
			`INSERT INTO payments (tenant_id, amount, invoice, date_created)
			 VALUES ($1, $2, $3, NOW())
			 RETURNING id`,
			p.TenantID, p.Amount, p.Invoice,
		).Scan(&id)
	})
	if err != nil {
		return 0, classify("create payment", err)
	}
	return id, nil
}

func (r *PostgresPaymentsRepository) UpdatePayment(ctx context.Context, p *domain.Payment) error {
	var res sql.Result
	err := withRetry(ctx, r.attempts, func() (err error) {
		res, err = r.db.ExecContext(ctx,
			`UPDATE payments SET tenant_id = $1, amount = $2, invoice = $3 WHERE id = $4`,
			p.TenantID, p.Amount, p.Invoice, p.ID,
		)
		return err
	})
	if err != nil {
		return classify("update payment", err)
	}
	return requireAffected("update payment", res)
}

func (r *PostgresPaymentsRepository) DeletePayment(ctx context.Context, id int64) error {
	var res sql.Result
	err := withRetry(ctx, r.attempts, func() (err error) {
		res, err = r.db.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return classify("delete payment", err)
	}
	return requireAffected("delete payment", res)
}

func (r *PostgresPaymentsRepository) SumPaymentsBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := withRetry(ctx, r.attempts, func() error {
		return r.db.QueryRowContext(ctx,
			`SELECT COALESCE(SUM(amount), 0)
			 FROM payments
			 WHERE date_created >= $1 AND date_created < $2`,
			from, to,
		).Scan(&total)
	})
	if err != nil {
		return decimal.Zero, classify("sum payments", err)
	}
	return total, nil
}
