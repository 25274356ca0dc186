// Package report renders spreadsheet exports.
package report

import (
	"bytes"
	"fmt"

	"github.com/amabee/property-rental/internal/domain"

	"github.com/xuri/excelize/v2"
)

// TenantLedgerSheet sheet name of the tenant ledger export
const TenantLedgerSheet = "Tenant Ledger"

// TenantLedgerHeader column titles, in order
var TenantLedgerHeader = []string{
	"Tenant ID",
	"Name",
	"Email",
	"Contact",
	"House No",
	"Monthly Rent",
	"Status",
	"Date In",
	"Months",
	"Payable",
	"Paid",
	"Last Payment",
	"Outstanding",
}

var tenantLedgerWidths = []float64{10, 30, 28, 16, 12, 14, 10, 14, 8, 14, 14, 16, 14}

// GenerateTenantLedger one header row plus one row per entry, in the given order.
func GenerateTenantLedger(entries []domain.LedgerEntry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(TenantLedgerSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	moneyFmt := "#,##0.00"
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})
	if err != nil {
		return nil, fmt.Errorf("failed to create money style: %w", err)
	}

	headerRow := make([]interface{}, len(TenantLedgerHeader))
	for i, h := range TenantLedgerHeader {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(TenantLedgerSheet, "A1", &headerRow); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(TenantLedgerHeader), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(TenantLedgerSheet, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	for i, w := range tenantLedgerWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(TenantLedgerSheet, col, col, w); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, e := range entries {
		row := i + 2
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, err
		}
		values := ledgerRow(e)
		if err := f.SetSheetRow(TenantLedgerSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", row, err)
		}
	}

	if len(entries) > 0 {
		for _, col := range []string{"F", "J", "K", "M"} {
			if err := f.SetCellStyle(TenantLedgerSheet, col+"2", fmt.Sprintf("%s%d", col, len(entries)+1), moneyStyle); err != nil {
				return nil, fmt.Errorf("failed to set money style: %w", err)
			}
		}
	}

	if err := f.SetPanes(TenantLedgerSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	return buf.Bytes(), nil
}

func ledgerRow(e domain.LedgerEntry) []interface{} {
	houseNo := ""
	if e.HouseNo != nil {
		houseNo = *e.HouseNo
	}
	var rent interface{} = ""
	if e.MonthlyRent.Valid {
		rent = e.MonthlyRent.Decimal.InexactFloat64()
	}
	return []interface{}{
		e.ID,
		e.Name,
		e.Email,
		e.Contact,
		houseNo,
		rent,
		e.StatusText,
		e.DateIn.Format("2006-01-02"),
		e.Months,
		e.Payable.InexactFloat64(),
		e.Paid.InexactFloat64(),
		e.LastPayment,
		e.Outstanding.InexactFloat64(),
	}
}
