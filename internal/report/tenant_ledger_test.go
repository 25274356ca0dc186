package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/amabee/property-rental/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestGenerateTenantLedger(t *testing.T) {
	houseNo := "B-2"
	entries := []domain.LedgerEntry{
		{
			Tenant:      domain.Tenant{ID: 7, Email: "ana@example.com", DateIn: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
			Name:        "Reyes, Ana",
			HouseNo:     &houseNo,
			MonthlyRent: decimal.NewNullDecimal(decimal.NewFromInt(1000)),
			StatusText:  "Active",
			Months:      2,
			Payable:     decimal.NewFromInt(2000),
			Paid:        decimal.RequireFromString("500.50"),
			LastPayment: "Jun 05, 2024",
			Outstanding: decimal.RequireFromString("1499.50"),
		},
		{
			Tenant:      domain.Tenant{ID: 8},
			Name:        "Cruz, Ben",
			StatusText:  "Inactive",
			LastPayment: "N/A",
		},
	}

	data, err := GenerateTenantLedger(entries)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{TenantLedgerSheet}, f.GetSheetList())
	rows, err := f.GetRows(TenantLedgerSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, TenantLedgerHeader, rows[0])

	assert.Equal(t, "7", rows[1][0])
	assert.Equal(t, "Reyes, Ana", rows[1][1])
	assert.Equal(t, "B-2", rows[1][4])
	assert.Equal(t, "2024-01-15", rows[1][7])
	assert.Equal(t, "Jun 05, 2024", rows[1][11])

	raw, err := f.GetCellValue(TenantLedgerSheet, "M2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "1499.5", raw)

	assert.Equal(t, "Cruz, Ben", rows[2][1])
	assert.Equal(t, "", rows[2][4])
	assert.Equal(t, "N/A", rows[2][11])
}

func TestGenerateTenantLedger_Empty(t *testing.T) {
	data, err := GenerateTenantLedger(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(TenantLedgerSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
