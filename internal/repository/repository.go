package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/amabee/property-rental/internal/domain"

	"github.com/shopspring/decimal"
)

// CategoriesRepository categories table access
type CategoriesRepository interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, name string) (int64, error)
	UpdateCategory(ctx context.Context, c domain.Category) error
	// DeleteCategory fails with ErrReferenced while houses still use it.
	DeleteCategory(ctx context.Context, id int64) error
}

// HousesRepository houses table access
type HousesRepository interface {
	// ListHouses returns houses joined with their category name.
	ListHouses(ctx context.Context) ([]domain.House, error)
	GetHouse(ctx context.Context, id int64) (*domain.House, error)
	CreateHouse(ctx context.Context, h *domain.House) (int64, error)
	UpdateHouse(ctx context.Context, h *domain.House) error
	// DeleteHouse fails with ErrReferenced while tenants still occupy it.
	DeleteHouse(ctx context.Context, id int64) error
	// CountHousesByImage counts houses whose image reference equals image.
	CountHousesByImage(ctx context.Context, image string) (int64, error)
	CountHouses(ctx context.Context) (int64, error)
}

// TenantsRepository tenants table access
type TenantsRepository interface {
	// ListTenantOccupancy returns every tenant LEFT JOINed with its house.
	ListTenantOccupancy(ctx context.Context) ([]domain.TenantOccupancy, error)
	GetTenant(ctx context.Context, id int64) (*domain.Tenant, error)
	// CreateTenant inserts with date_in = NOW(); t.DateIn is ignored.
	CreateTenant(ctx context.Context, t *domain.Tenant) (int64, error)
	// UpdateTenant replaces every column except date_in.
	UpdateTenant(ctx context.Context, t *domain.Tenant) error
	DeleteTenant(ctx context.Context, id int64) error
	CountTenants(ctx context.Context) (int64, error)
}

// PaymentsRepository payments table access
type PaymentsRepository interface {
	ListPayments(ctx context.Context) ([]domain.PaymentView, error)
	ListPaymentsForTenants(ctx context.Context, tenantIDs []int64) ([]domain.Payment, error)
	// CreatePayment inserts with date_created = NOW(); p.DateCreated is ignored.
	CreatePayment(ctx context.Context, p *domain.Payment) (int64, error)
	UpdatePayment(ctx context.Context, p *domain.Payment) error
	DeletePayment(ctx context.Context, id int64) error
	// SumPaymentsBetween sums amounts created in [from, to).
	SumPaymentsBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
}

// UsersRepository users table access (login only)
type UsersRepository interface {
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, userID int64, hash string) error
	// UpsertUser inserts or replaces the user keyed by username; used for seeding.
	UpsertUser(ctx context.Context, u *domain.User) (int64, error)
}

// Repository bundles the table repositories behind one handle.
type Repository struct {
	Categories CategoriesRepository
	Houses     HousesRepository
	Tenants    TenantsRepository
	Payments   PaymentsRepository
	Users      UsersRepository
}

// NewPostgres wires every repository onto one pool.
func NewPostgres(db *sql.DB, retryAttempts int) *Repository {
	return &Repository{
		Categories: NewPostgresCategoriesRepository(db, retryAttempts),
		Houses:     NewPostgresHousesRepository(db, retryAttempts),
		Tenants:    NewPostgresTenantsRepository(db, retryAttempts),
		Payments:   NewPostgresPaymentsRepository(db, retryAttempts),
		Users:      NewPostgresUsersRepository(db, retryAttempts),
	}
}

// NewMemory wires every repository onto one in-memory store.
func NewMemory() *Repository {
	m := NewMemoryStore()
	return &Repository{Categories: m, Houses: m, Tenants: m, Payments: m, Users: m}
}
