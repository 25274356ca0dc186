package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/amabee/property-rental/internal/domain"
	"github.com/amabee/property-rental/internal/ledger"
	"github.com/amabee/property-rental/internal/repository"

	"go.uber.org/zap"
)

// TenantService tenant CRUD and the tenant ledger
type TenantService struct {
	tenants  repository.TenantsRepository
	payments repository.PaymentsRepository
	calc     *ledger.Calculator
	logger   *zap.Logger
}

func NewTenantService(tenants repository.TenantsRepository, payments repository.PaymentsRepository, calc *ledger.Calculator, logger *zap.Logger) *TenantService {
	return &TenantService{tenants: tenants, payments: payments, calc: calc, logger: logger}
}

// AddTenantRequest addTenant payload. date_in and status are assigned by the server.
type AddTenantRequest struct {
	Firstname  string `json:"firstname"`
	Middlename string `json:"middlename"`
	Lastname   string `json:"lastname"`
	Email      string `json:"email"`
	Contact    string `json:"contact"`
	HouseID    *int64 `json:"house_id"`
}

func (r *AddTenantRequest) Validate() error {
	r.Firstname = strings.TrimSpace(r.Firstname)
	r.Middlename = strings.TrimSpace(r.Middlename)
	r.Lastname = strings.TrimSpace(r.Lastname)
	r.Email = strings.TrimSpace(r.Email)
	r.Contact = strings.TrimSpace(r.Contact)
	if r.Firstname == "" {
		return required("firstname")
	}
	if r.Lastname == "" {
		return required("lastname")
	}
	if r.HouseID != nil && *r.HouseID <= 0 {
		r.HouseID = nil
	}
	return nil
}

// UpdateTenantRequest updateTenant payload. A missing status keeps the stored one.
type UpdateTenantRequest struct {
	ID int64 `json:"id"`
	AddTenantRequest
	Status *domain.TenantStatus `json:"status"`
}

func (r *UpdateTenantRequest) Validate() error {
	if r.ID <= 0 {
		return required("id")
	}
	if r.Status != nil && *r.Status != domain.TenantActive && *r.Status != domain.TenantInactive {
		return invalid("status", "must be 0 or 1")
	}
	return r.AddTenantRequest.Validate()
}

// Ledger lists every tenant with payable, paid, last_payment and outstanding.
func (s *TenantService) Ledger(ctx context.Context) ([]domain.LedgerEntry, error) {
	occs, err := s.tenants.ListTenantOccupancy(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	ids := make([]int64, 0, len(occs))
	for _, occ := range occs {
		ids = append(ids, occ.ID)
	}
	payments, err := s.payments.ListPaymentsForTenants(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenant payments: %w", err)
	}
	return s.calc.Entries(occs, payments), nil
}

func (s *TenantService) Create(ctx context.Context, req AddTenantRequest) (int64, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}
	t := &domain.Tenant{
		Firstname:  req.Firstname,
		Middlename: req.Middlename,
		Lastname:   req.Lastname,
		Email:      req.Email,
		Contact:    req.Contact,
		HouseID:    req.HouseID,
		Status:     domain.TenantActive,
	}
	id, err := s.tenants.CreateTenant(ctx, t)
	if err != nil {
		return 0, err
	}
	s.logger.Info("Tenant created", zap.Int64("tenant_id", id))
	return id, nil
}

func (s *TenantService) Update(ctx context.Context, req UpdateTenantRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	existing, err := s.tenants.GetTenant(ctx, req.ID)
	if err != nil {
		return err
	}
	status := existing.Status
	if req.Status != nil {
		status = *req.Status
	}
	return s.tenants.UpdateTenant(ctx, &domain.Tenant{
		ID:         req.ID,
		Firstname:  req.Firstname,
		Middlename: req.Middlename,
		Lastname:   req.Lastname,
		Email:      req.Email,
		Contact:    req.Contact,
		HouseID:    req.HouseID,
		Status:     status,
	})
}

func (s *TenantService) Delete(ctx context.Context, req IDRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if err := s.tenants.DeleteTenant(ctx, req.ID); err != nil {
		return err
	}
	s.logger.Info("Tenant deleted", zap.Int64("tenant_id", req.ID))
	return nil
}
