package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TenantStatus status code stored in tenants.status
type TenantStatus int

const (
	TenantInactive TenantStatus = 0
	TenantActive   TenantStatus = 1
)

// Label maps the status code to its display text.
func (s TenantStatus) Label() string {
	switch s {
	case TenantActive:
		return "Active"
	case TenantInactive:
		return "Inactive"
	default:
		return "Unknown"
	}
}

// Tenant person occupying a house (tenants table).
// DateIn is assigned by the server at creation and never taken from input.
type Tenant struct {
	ID         int64        `json:"id" db:"id"`
	Firstname  string       `json:"firstname" db:"firstname"`
	Middlename string       `json:"middlename" db:"middlename"`
	Lastname   string       `json:"lastname" db:"lastname"`
	Email      string       `json:"email" db:"email"`
	Contact    string       `json:"contact" db:"contact"`
	HouseID    *int64       `json:"house_id" db:"house_id"`
	DateIn     time.Time    `json:"date_in" db:"date_in"`
	Status     TenantStatus `json:"status" db:"status"`
}

// FullName formats "Lastname, Firstname Middlename".
func (t Tenant) FullName() string {
	given := strings.TrimSpace(t.Firstname + " " + t.Middlename)
	if t.Lastname == "" {
		return given
	}
	return strings.TrimSpace(t.Lastname + ", " + given)
}

// TenantOccupancy tenant row joined with its house (LEFT JOIN: house fields may be absent).
type TenantOccupancy struct {
	Tenant
	HouseNo     *string
	MonthlyRent decimal.NullDecimal
}

// LedgerEntry tenant row plus derived financial standing.
type LedgerEntry struct {
	Tenant
	Name        string              `json:"name"`
	HouseNo     *string             `json:"house_no"`
	MonthlyRent decimal.NullDecimal `json:"monthly_rent"`
	StatusText  string              `json:"status_text"`
	Months      int64               `json:"months"`
	Payable     decimal.Decimal     `json:"payable"`
	Paid        decimal.Decimal     `json:"paid"`
	LastPayment string              `json:"last_payment"`
	Outstanding decimal.Decimal     `json:"outstanding"`
}
