package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

const (
	RentalPath        = "/api/v1/rental"
	TenantsReportPath = "/api/v1/reports/tenants.xlsx"
	HealthPath        = "/health"
)

// Router http.ServeMux plus the middleware chain
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterRentalRoutes dispatch endpoint, ledger export and health check.
func (r *Router) RegisterRentalRoutes(d *Dispatcher, reports *ReportHandler) {
	r.HandleHandler(RentalPath, d)
	r.Handle(TenantsReportPath, reports.ExportTenantLedger)
	r.Handle(HealthPath, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, Ok("healthy"))
	})
}

// Handler the router wrapped with request id, access log, recover and CORS.
func (r *Router) Handler(corsOrigin string) http.Handler {
	var h http.Handler = r
	h = WithCORS(corsOrigin, h)
	h = WithRecover(r.logger, h)
	h = WithAccessLog(r.logger, h)
	h = WithRequestID(h)
	return h
}
