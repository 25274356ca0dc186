// Package ledger derives each tenant's financial standing: rent accrued since
// move-in by whole 30-day periods against the lifetime sum of payments.
package ledger

import (
	"sort"
	"time"

	"github.com/amabee/property-rental/internal/domain"

	"github.com/shopspring/decimal"
)

const (
	// DaysPerMonth fixed month length used for accrual (not calendar-aware).
	DaysPerMonth = 30
	// NotAvailable is reported as last_payment when a tenant has no payments.
	NotAvailable = "N/A"
	// LastPaymentLayout formats last_payment, e.g. "Mar 05, 2024".
	LastPaymentLayout = "Jan 02, 2006"
)

// Calculator computes ledger entries as of now() in loc.
type Calculator struct {
	loc *time.Location
	now func() time.Time
}

// NewCalculator nil loc means time.Local, nil now means time.Now.
func NewCalculator(loc *time.Location, now func() time.Time) *Calculator {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Calculator{loc: loc, now: now}
}

// Location calendar used for day boundaries.
func (c *Calculator) Location() *time.Location { return c.loc }

// Now current time in the calculator's calendar.
func (c *Calculator) Now() time.Time { return c.now().In(c.loc) }

// ElapsedMonths whole 30-day periods between the move-in date and today.
// Both ends are taken at the same time of day, so only calendar dates count.
// A move-in date in the future yields 0.
func (c *Calculator) ElapsedMonths(dateIn time.Time) int64 {
	days := civilDay(c.Now()) - civilDay(dateIn.In(c.loc))
	if days <= 0 {
		return 0
	}
	return days / DaysPerMonth
}

// civilDay days since the Unix epoch for t's calendar date.
func civilDay(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// Entry computes one tenant's standing. payments must all belong to the tenant.
func (c *Calculator) Entry(occ domain.TenantOccupancy, payments []domain.Payment) domain.LedgerEntry {
	months := c.ElapsedMonths(occ.DateIn)

	rent := decimal.Zero
	if occ.MonthlyRent.Valid {
		rent = occ.MonthlyRent.Decimal
	}
	payable := rent.Mul(decimal.NewFromInt(months))

	paid := decimal.Zero
	var last time.Time
	for _, p := range payments {
		paid = paid.Add(p.Amount)
		if p.DateCreated.After(last) {
			last = p.DateCreated
		}
	}

	lastPayment := NotAvailable
	if !last.IsZero() {
		lastPayment = last.In(c.loc).Format(LastPaymentLayout)
	}

	return domain.LedgerEntry{
		Tenant:      occ.Tenant,
		Name:        occ.FullName(),
		HouseNo:     occ.HouseNo,
		MonthlyRent: occ.MonthlyRent,
		StatusText:  occ.Status.Label(),
		Months:      months,
		Payable:     payable,
		Paid:        paid,
		LastPayment: lastPayment,
		Outstanding: payable.Sub(paid),
	}
}

// Entries computes standings for all tenants and orders them by house number
// descending; tenants without a house come last and input order breaks ties.
func (c *Calculator) Entries(occs []domain.TenantOccupancy, payments []domain.Payment) []domain.LedgerEntry {
	byTenant := make(map[int64][]domain.Payment, len(occs))
	for _, p := range payments {
		byTenant[p.TenantID] = append(byTenant[p.TenantID], p)
	}

	entries := make([]domain.LedgerEntry, 0, len(occs))
	for _, occ := range occs {
		entries = append(entries, c.Entry(occ, byTenant[occ.ID]))
	}
	SortByHouseDesc(entries)
	return entries
}

// SortByHouseDesc stable sort by house_no descending, missing houses last.
func SortByHouseDesc(entries []domain.LedgerEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].HouseNo, entries[j].HouseNo
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})
}
