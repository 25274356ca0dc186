package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// House rentable unit (houses table). Price is the monthly rent.
type House struct {
	ID           int64           `json:"id" db:"id"`
	HouseNo      string          `json:"house_no" db:"house_no"`
	CategoryID   int64           `json:"category_id" db:"category_id"`
	CategoryName string          `json:"category_name,omitempty" db:"category_name"` // joined, read-only
	Description  string          `json:"description" db:"description"`
	Price        decimal.Decimal `json:"price" db:"price"`
	Image        string          `json:"image" db:"image"`
}

// IsRemoteImage reports whether the image reference is an external URL
// rather than a file in the upload directory.
func IsRemoteImage(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
