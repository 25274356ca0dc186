package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/amabee/property-rental/internal/domain"
	"github.com/amabee/property-rental/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentService payment CRUD
type PaymentService struct {
	repo   repository.PaymentsRepository
	logger *zap.Logger
}

func NewPaymentService(repo repository.PaymentsRepository, logger *zap.Logger) *PaymentService {
	return &PaymentService{repo: repo, logger: logger}
}

// AddPaymentRequest addPayment payload. date_created is assigned by the server.
type AddPaymentRequest struct {
	TenantID int64            `json:"tenant_id"`
	Amount   *decimal.Decimal `json:"amount"`
	Invoice  string           `json:"invoice"`
}

func (r *AddPaymentRequest) Validate() error {
	if r.TenantID <= 0 {
		return required("tenant_id")
	}
	if r.Amount == nil {
		return required("amount")
	}
	if r.Amount.IsNegative() {
		return invalid("amount", "must not be negative")
	}
	r.Invoice = strings.TrimSpace(r.Invoice)
	return nil
}

// UpdatePaymentRequest updatePayment payload
type UpdatePaymentRequest struct {
	ID int64 `json:"id"`
	AddPaymentRequest
}

func (r *UpdatePaymentRequest) Validate() error {
	if r.ID <= 0 {
		return required("id")
	}
	return r.AddPaymentRequest.Validate()
}

func (s *PaymentService) List(ctx context.Context) ([]domain.PaymentView, error) {
	payments, err := s.repo.ListPayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

func (s *PaymentService) Create(ctx context.Context, req AddPaymentRequest) (int64, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}
	id, err := s.repo.CreatePayment(ctx, &domain.Payment{
		TenantID: req.TenantID,
		Amount:   *req.Amount,
		Invoice:  req.Invoice,
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("Payment recorded",
		zap.Int64("payment_id", id),
		zap.Int64("tenant_id", req.TenantID),
		zap.String("amount", req.Amount.String()),
	)
	return id, nil
}

func (s *PaymentService) Update(ctx context.Context, req UpdatePaymentRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return s.repo.UpdatePayment(ctx, &domain.Payment{
		ID:       req.ID,
		TenantID: req.TenantID,
		Amount:   *req.Amount,
		Invoice:  req.Invoice,
	})
}

func (s *PaymentService) Delete(ctx context.Context, req IDRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return s.repo.DeletePayment(ctx, req.ID)
}
