package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/amabee/property-rental/internal/domain"

	"github.com/shopspring/decimal"
)

// MemoryStore backs every repository when the DB is disabled, and in tests.
// Foreign keys are enforced the same way the schema enforces them.
type MemoryStore struct {
	mu         sync.RWMutex
	now        func() time.Time
	nextID     map[string]int64
	categories map[int64]domain.Category
	houses     map[int64]domain.House
	tenants    map[int64]domain.Tenant
	payments   map[int64]domain.Payment
	users      map[int64]domain.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:        time.Now,
		nextID:     map[string]int64{},
		categories: map[int64]domain.Category{},
		houses:     map[int64]domain.House{},
		tenants:    map[int64]domain.Tenant{},
		payments:   map[int64]domain.Payment{},
		users:      map[int64]domain.User{},
	}
}

// SetClock overrides the clock used for date_in and date_created.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

var (
	_ CategoriesRepository = (*MemoryStore)(nil)
	_ HousesRepository     = (*MemoryStore)(nil)
	_ TenantsRepository    = (*MemoryStore)(nil)
	_ PaymentsRepository   = (*MemoryStore)(nil)
	_ UsersRepository      = (*MemoryStore)(nil)
)

func (m *MemoryStore) id(table string) int64 {
	m.nextID[table]++
	return m.nextID[table]
}

func sortedIDs[T any](rows map[int64]T) []int64 {
	ids := make([]int64, 0, len(rows))
	for id := range rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// --- categories ---

func (m *MemoryStore) ListCategories(_ context.Context) ([]domain.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Category, 0, len(m.categories))
	for _, id := range sortedIDs(m.categories) {
		out = append(out, m.categories[id])
	}
	return out, nil
}

func (m *MemoryStore) CreateCategory(_ context.Context, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id("categories")
	m.categories[id] = domain.Category{ID: id, Name: name}
	return id, nil
}

func (m *MemoryStore) UpdateCategory(_ context.Context, c domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[c.ID]; !ok {
		return fmt.Errorf("update category: %w", ErrNotFound)
	}
	m.categories[c.ID] = c
	return nil
}

func (m *MemoryStore) DeleteCategory(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[id]; !ok {
		return fmt.Errorf("delete category: %w", ErrNotFound)
	}
	for _, h := range m.houses {
		if h.CategoryID == id {
			return fmt.Errorf("delete category: %w (houses_category_id_fkey)", ErrReferenced)
		}
	}
	delete(m.categories, id)
	return nil
}

// --- houses ---

func (m *MemoryStore) withCategoryName(h domain.House) domain.House {
	h.CategoryName = m.categories[h.CategoryID].Name
	return h
}

func (m *MemoryStore) ListHouses(_ context.Context) ([]domain.House, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.House, 0, len(m.houses))
	for _, id := range sortedIDs(m.houses) {
		out = append(out, m.withCategoryName(m.houses[id]))
	}
	return out, nil
}

func (m *MemoryStore) GetHouse(_ context.Context, id int64) (*domain.House, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.houses[id]
	if !ok {
		return nil, fmt.Errorf("get house: %w", ErrNotFound)
	}
	h = m.withCategoryName(h)
	return &h, nil
}

func (m *MemoryStore) CreateHouse(_ context.Context, h *domain.House) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[h.CategoryID]; !ok {
		return 0, fmt.Errorf("create house: %w (houses_category_id_fkey)", ErrReferenced)
	}
	row := *h
	row.ID = m.id("houses")
	row.CategoryName = ""
	m.houses[row.ID] = row
	return row.ID, nil
}

func (m *MemoryStore) UpdateHouse(_ context.Context, h *domain.House) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.houses[h.ID]; !ok {
		return fmt.Errorf("update house: %w", ErrNotFound)
	}
	if _, ok := m.categories[h.CategoryID]; !ok {
		return fmt.Errorf("update house: %w (houses_category_id_fkey)", ErrReferenced)
	}
	row := *h
	row.CategoryName = ""
	m.houses[h.ID] = row
	return nil
}

func (m *MemoryStore) DeleteHouse(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.houses[id]; !ok {
		return fmt.Errorf("delete house: %w", ErrNotFound)
	}
	for _, t := range m.tenants {
		if t.HouseID != nil && *t.HouseID == id {
			return fmt.Errorf("delete house: %w (tenants_house_id_fkey)", ErrReferenced)
		}
	}
	delete(m.houses, id)
	return nil
}

func (m *MemoryStore) CountHousesByImage(_ context.Context, image string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, h := range m.houses {
		if h.Image == image {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) CountHouses(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.houses)), nil
}

// --- tenants ---

func (m *MemoryStore) ListTenantOccupancy(_ context.Context) ([]domain.TenantOccupancy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.TenantOccupancy, 0, len(m.tenants))
	for _, id := range sortedIDs(m.tenants) {
		occ := domain.TenantOccupancy{Tenant: m.tenants[id]}
		if occ.HouseID != nil {
			if h, ok := m.houses[*occ.HouseID]; ok {
				no := h.HouseNo
				occ.HouseNo = &no
				occ.MonthlyRent = decimal.NewNullDecimal(h.Price)
			}
		}
		out = append(out, occ)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].HouseNo, out[j].HouseNo
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return *a > *b
	})
	return out, nil
}

func (m *MemoryStore) GetTenant(_ context.Context, id int64) (*domain.Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tenants[id]
	if !ok {
		return nil, fmt.Errorf("get tenant: %w", ErrNotFound)
	}
	return &t, nil
}

func (m *MemoryStore) checkHouseRef(op string, houseID *int64) error {
	if houseID == nil {
		return nil
	}
	if _, ok := m.houses[*houseID]; !ok {
		return fmt.Errorf("%s: %w (tenants_house_id_fkey)", op, ErrReferenced)
	}
	return nil
}

func (m *MemoryStore) CreateTenant(_ context.Context, t *domain.Tenant) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkHouseRef("create tenant", t.HouseID); err != nil {
		return 0, err
	}
	row := *t
	row.ID = m.id("tenants")
	row.DateIn = m.now()
	m.tenants[row.ID] = row
	return row.ID, nil
}

func (m *MemoryStore) UpdateTenant(_ context.Context, t *domain.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.tenants[t.ID]
	if !ok {
		return fmt.Errorf("update tenant: %w", ErrNotFound)
	}
	if err := m.checkHouseRef("update tenant", t.HouseID); err != nil {
		return err
	}
	row := *t
	row.DateIn = existing.DateIn
	m.tenants[t.ID] = row
	return nil
}

func (m *MemoryStore) DeleteTenant(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tenants[id]; !ok {
		return fmt.Errorf("delete tenant: %w", ErrNotFound)
	}
	for _, p := range m.payments {
		if p.TenantID == id {
			return fmt.Errorf("delete tenant: %w (payments_tenant_id_fkey)", ErrReferenced)
		}
	}
	delete(m.tenants, id)
	return nil
}

func (m *MemoryStore) CountTenants(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.tenants)), nil
}

// --- payments ---

func (m *MemoryStore) ListPayments(_ context.Context) ([]domain.PaymentView, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.PaymentView, 0, len(m.payments))
	for _, id := range sortedIDs(m.payments) {
		p := m.payments[id]
		t := m.tenants[p.TenantID]
		v := domain.PaymentView{Payment: p, TenantName: t.FullName()}
		if t.HouseID != nil {
			if h, ok := m.houses[*t.HouseID]; ok {
				no := h.HouseNo
				v.HouseNo = &no
			}
		}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].DateCreated.Equal(out[j].DateCreated) {
			return out[i].DateCreated.After(out[j].DateCreated)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) ListPaymentsForTenants(_ context.Context, tenantIDs []int64) ([]domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	want := make(map[int64]bool, len(tenantIDs))
	for _, id := range tenantIDs {
		want[id] = true
	}
	out := []domain.Payment{}
	for _, id := range sortedIDs(m.payments) {
		if p := m.payments[id]; want[p.TenantID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MemoryStore) CreatePayment(_ context.Context, p *domain.Payment) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tenants[p.TenantID]; !ok {
		return 0, fmt.Errorf("create payment: %w (payments_tenant_id_fkey)", ErrReferenced)
	}
	row := *p
	row.ID = m.id("payments")
	row.DateCreated = m.now()
	m.payments[row.ID] = row
	return row.ID, nil
}

func (m *MemoryStore) UpdatePayment(_ context.Context, p *domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.payments[p.ID]
	if !ok {
		return fmt.Errorf("update payment: %w", ErrNotFound)
	}
	if _, ok := m.tenants[p.TenantID]; !ok {
		return fmt.Errorf("update payment: %w (payments_tenant_id_fkey)", ErrReferenced)
	}
	row := *p
	row.DateCreated = existing.DateCreated
	m.payments[p.ID] = row
	return nil
}

func (m *MemoryStore) DeletePayment(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payments[id]; !ok {
		return fmt.Errorf("delete payment: %w", ErrNotFound)
	}
	delete(m.payments, id)
	return nil
}

func (m *MemoryStore) SumPaymentsBetween(_ context.Context, from, to time.Time) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := decimal.Zero
	for _, p := range m.payments {
		if !p.DateCreated.Before(from) && p.DateCreated.Before(to) {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}

// --- users ---

func (m *MemoryStore) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, fmt.Errorf("get user: %w", ErrNotFound)
}

func (m *MemoryStore) UpdatePasswordHash(_ context.Context, userID int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("update password: %w", ErrNotFound)
	}
	u.PasswordHash = hash
	m.users[userID] = u
	return nil
}

func (m *MemoryStore) UpsertUser(_ context.Context, u *domain.User) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.users {
		if existing.Username == u.Username {
			row := *u
			row.ID = id
			m.users[id] = row
			return id, nil
		}
	}
	row := *u
	row.ID = m.id("users")
	m.users[row.ID] = row
	return row.ID, nil
}
