package httpapi

import (
	"net/http"
	"strconv"

	"github.com/amabee/property-rental/internal/report"
	"github.com/amabee/property-rental/internal/service"

	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler spreadsheet downloads
type ReportHandler struct {
	tenants *service.TenantService
	logger  *zap.Logger
}

func NewReportHandler(tenants *service.TenantService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{tenants: tenants, logger: logger}
}

// ExportTenantLedger GET /api/v1/reports/tenants.xlsx
func (h *ReportHandler) ExportTenantLedger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeResult(w, Fail(ResultMethodNotAllowed, "invalid request method"))
		return
	}

	entries, err := h.tenants.Ledger(r.Context())
	if err != nil {
		h.logger.Error("Failed to load tenant ledger", zap.String("request_id", RequestIDFrom(r.Context())), zap.Error(err))
		writeResult(w, Fail(ResultInternal, "internal error"))
		return
	}

	data, err := report.GenerateTenantLedger(entries)
	if err != nil {
		h.logger.Error("GenerateTenantLedger failed", zap.Error(err))
		writeResult(w, Fail(ResultInternal, "internal error"))
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", "attachment; filename=tenant-ledger.xlsx")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
