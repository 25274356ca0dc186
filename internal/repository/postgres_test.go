package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/amabee/property-rental/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestCategories_ListAndCreate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresCategoriesRepository(db, 1)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT id, name FROM categories ORDER BY id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Studio").AddRow(2, "Duplex"))
	mock.ExpectQuery(`INSERT INTO categories`).
		WithArgs("Bungalow").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	cats, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Category{{ID: 1, Name: "Studio"}, {ID: 2, Name: "Duplex"}}, cats)

	id, err := repo.CreateCategory(ctx, "Bungalow")
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategories_UpdateMissingIsNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresCategoriesRepository(db, 1)

	mock.ExpectExec(`UPDATE categories SET name`).
		WithArgs("Loft", int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateCategory(context.Background(), domain.Category{ID: 42, Name: "Loft"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategories_DeleteReferencedIsRejected(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresCategoriesRepository(db, 1)

	mock.ExpectExec(`DELETE FROM categories WHERE id`).
		WithArgs(int64(1)).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "houses_category_id_fkey"})

	err := repo.DeleteCategory(context.Background(), 1)
	assert.ErrorIs(t, err, ErrReferenced)
	assert.Contains(t, err.Error(), "houses_category_id_fkey")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHouses_GetNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresHousesRepository(db, 1)

	mock.ExpectQuery(`FROM houses h`).WithArgs(int64(9)).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetHouse(context.Background(), 9)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHouses_ListScansCategoryAndPrice(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresHousesRepository(db, 1)

	mock.ExpectQuery(`JOIN categories c ON c.id = h.category_id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "house_no", "category_id", "name", "description", "price", "image"}).
			AddRow(1, "A-101", 2, "Studio", "Corner unit", "4500.00", "a101.jpg"))

	houses, err := repo.ListHouses(context.Background())
	require.NoError(t, err)
	require.Len(t, houses, 1)
	assert.Equal(t, "Studio", houses[0].CategoryName)
	assert.True(t, decimal.NewFromInt(4500).Equal(houses[0].Price))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHouses_CreateWithMissingCategory(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresHousesRepository(db, 1)

	mock.ExpectQuery(`INSERT INTO houses`).
		WithArgs("A-101", int64(77), "", sqlmock.AnyArg(), "a.jpg").
		WillReturnError(&pq.Error{Code: "23503"})

	_, err := repo.CreateHouse(context.Background(), &domain.House{HouseNo: "A-101", CategoryID: 77, Price: decimal.NewFromInt(100), Image: "a.jpg"})
	assert.ErrorIs(t, err, ErrReferenced)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTenants_ListOccupancyHandlesMissingHouse(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresTenantsRepository(db, 1)
	dateIn := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`LEFT JOIN houses h ON h.id = t.house_id`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "firstname", "middlename", "lastname", "email", "contact",
			"house_id", "status", "date_in", "house_no", "price",
		}).
			AddRow(1, "Ana", "", "Reyes", "ana@example.com", "0917", 3, 1, dateIn, "B-2", "1000.00").
			AddRow(2, "Ben", "T", "Cruz", "", "", nil, 0, dateIn, nil, nil))

	occs, err := repo.ListTenantOccupancy(context.Background())
	require.NoError(t, err)
	require.Len(t, occs, 2)

	require.NotNil(t, occs[0].HouseID)
	assert.Equal(t, int64(3), *occs[0].HouseID)
	assert.Equal(t, "B-2", *occs[0].HouseNo)
	assert.True(t, occs[0].MonthlyRent.Valid)
	assert.Equal(t, domain.TenantActive, occs[0].Status)

	assert.Nil(t, occs[1].HouseID)
	assert.Nil(t, occs[1].HouseNo)
	assert.False(t, occs[1].MonthlyRent.Valid)
	assert.Equal(t, domain.TenantInactive, occs[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTenants_GetTenant(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresTenantsRepository(db, 1)
	dateIn := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM tenants WHERE id = \$1`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "firstname", "middlename", "lastname", "email", "contact", "house_id", "status", "date_in",
		}).AddRow(2, "Ben", "", "Cruz", "", "", nil, 0, dateIn))
	mock.ExpectQuery(`FROM tenants WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnError(sql.ErrNoRows)

	got, err := repo.GetTenant(context.Background(), 2)
	require.NoError(t, err)
	assert.Nil(t, got.HouseID)
	assert.Equal(t, domain.TenantInactive, got.Status)
	assert.Equal(t, dateIn, got.DateIn)

	_, err = repo.GetTenant(context.Background(), 3)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTenants_CreateUsesServerTimestamp(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresTenantsRepository(db, 1)

	mock.ExpectQuery(`VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, NOW\(\)\)`).
		WithArgs("Ana", "", "Reyes", "", "", nil, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	id, err := repo.CreateTenant(context.Background(), &domain.Tenant{
		Firstname: "Ana", Lastname: "Reyes", Status: domain.TenantActive,
		DateIn: time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayments_SumBetween(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresPaymentsRepository(db, 1)
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\)`).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("350.00"))

	total, err := repo.SumPaymentsBetween(context.Background(), from, to)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(350).Equal(total))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayments_ListForTenants(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresPaymentsRepository(db, 1)
	created := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`WHERE tenant_id = ANY\(\$1\)`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "amount", "invoice", "date_created"}).
			AddRow(1, 4, "100.00", "INV-1", created))

	payments, err := repo.ListPaymentsForTenants(context.Background(), []int64{4, 5})
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "INV-1", payments[0].Invoice)

	empty, err := repo.ListPaymentsForTenants(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsers_GetByUsername(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresUsersRepository(db, 1)

	mock.ExpectQuery(`FROM users WHERE username`).
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "username", "password", "type"}).
			AddRow(1, "Administrator", "admin", "$2a$10$hash", 1))
	mock.ExpectQuery(`FROM users WHERE username`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	u, err := repo.GetUserByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, "Administrator", u.Name)
	assert.Equal(t, "$2a$10$hash", u.PasswordHash)

	_, err = repo.GetUserByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRetry_TransientErrorIsRetried(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresHousesRepository(db, 3)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM houses`).WillReturnError(&pq.Error{Code: "40001"})
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM houses`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.CountHouses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRetry_PermanentErrorIsNotRetried(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresTenantsRepository(db, 3)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tenants`).WillReturnError(errors.New("syntax error"))

	_, err := repo.CountTenants(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(&pq.Error{Code: "08006"}))
	assert.True(t, isTransient(&pq.Error{Code: "40P01"}))
	assert.False(t, isTransient(&pq.Error{Code: "23503"}))
	assert.False(t, isTransient(nil))
}
