package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment amount received from a tenant (payments table)
type Payment struct {
	ID          int64           `json:"id" db:"id"`
	TenantID    int64           `json:"tenant_id" db:"tenant_id"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Invoice     string          `json:"invoice" db:"invoice"`
	DateCreated time.Time       `json:"date_created" db:"date_created"`
}

// PaymentView payment joined with its tenant for listing.
type PaymentView struct {
	Payment
	TenantName string  `json:"tenant_name"`
	HouseNo    *string `json:"house_no"`
}
