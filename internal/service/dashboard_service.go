package service

import (
	"context"
	"fmt"
	"time"

	"github.com/amabee/property-rental/internal/domain"
	"github.com/amabee/property-rental/internal/ledger"
	"github.com/amabee/property-rental/internal/repository"
)

// DashboardService headline counts for getDashboardData
type DashboardService struct {
	houses   repository.HousesRepository
	tenants  repository.TenantsRepository
	payments repository.PaymentsRepository
	calc     *ledger.Calculator
}

func NewDashboardService(houses repository.HousesRepository, tenants repository.TenantsRepository, payments repository.PaymentsRepository, calc *ledger.Calculator) *DashboardService {
	return &DashboardService{houses: houses, tenants: tenants, payments: payments, calc: calc}
}

// MonthRange [first day 00:00, first day of next month 00:00) around now.
func MonthRange(now time.Time) (from, to time.Time) {
	y, m, _ := now.Date()
	from = time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	return from, from.AddDate(0, 1, 0)
}

func (s *DashboardService) Get(ctx context.Context) (*domain.Dashboard, error) {
	houses, err := s.houses.CountHouses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count houses: %w", err)
	}
	tenants, err := s.tenants.CountTenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count tenants: %w", err)
	}
	from, to := MonthRange(s.calc.Now())
	total, err := s.payments.SumPaymentsBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to sum payments: %w", err)
	}
	return &domain.Dashboard{
		HouseCount:             houses,
		TenantCount:            tenants,
		TotalPaymentsThisMonth: total,
	}, nil
}
