package domain

import "github.com/shopspring/decimal"

type Dashboard struct {
	HouseCount             int64           `json:"house_count"`
	TenantCount            int64           `json:"tenant_count"`
	TotalPaymentsThisMonth decimal.Decimal `json:"total_payments_this_month"`
}
