package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/amabee/property-rental/internal/repository"
	"github.com/amabee/property-rental/internal/service"
	"github.com/amabee/property-rental/internal/store"

	"go.uber.org/zap"
)

const multipartMemory = 8 << 20

// Services everything the dispatcher delegates to.
type Services struct {
	Dashboard  *service.DashboardService
	Categories *service.CategoryService
	Houses     *service.HouseService
	Tenants    *service.TenantService
	Payments   *service.PaymentService
	Auth       *service.AuthService
}

// call one decoded request
type call struct {
	payload []byte
	image   *service.Upload
}

type handlerFunc func(ctx context.Context, c *call) (any, error)

// Dispatcher single entry point for every operation: ?operation=<name>&json=<payload>.
type Dispatcher struct {
	handlers map[Operation]handlerFunc
	maxBody  int64
	logger   *zap.Logger
}

func NewDispatcher(svc Services, maxBody int64, logger *zap.Logger) *Dispatcher {
	d := &Dispatcher{maxBody: maxBody, logger: logger}
	d.handlers = map[Operation]handlerFunc{
		OpGetDashboardData: func(ctx context.Context, _ *call) (any, error) {
			return svc.Dashboard.Get(ctx)
		},

		OpGetCategories: func(ctx context.Context, _ *call) (any, error) {
			return svc.Categories.List(ctx)
		},
		OpCreateCategory: typed(func(ctx context.Context, req service.CreateCategoryRequest, _ *call) (any, error) {
			return created(svc.Categories.Create(ctx, req))
		}),
		OpUpdateCategory: typed(func(ctx context.Context, req service.UpdateCategoryRequest, _ *call) (any, error) {
			return affected(svc.Categories.Update(ctx, req))
		}),
		OpDeleteCategory: typed(func(ctx context.Context, req service.IDRequest, _ *call) (any, error) {
			return affected(svc.Categories.Delete(ctx, req))
		}),

		OpViewHouses: func(ctx context.Context, _ *call) (any, error) {
			return svc.Houses.List(ctx)
		},
		OpAddHouse: typed(func(ctx context.Context, req service.AddHouseRequest, c *call) (any, error) {
			return created(svc.Houses.Create(ctx, req, c.image))
		}),
		OpUpdateHouse: typed(func(ctx context.Context, req service.UpdateHouseRequest, c *call) (any, error) {
			return affected(svc.Houses.Update(ctx, req, c.image))
		}),
		OpDeleteHouse: typed(func(ctx context.Context, req service.IDRequest, _ *call) (any, error) {
			return affected(svc.Houses.Delete(ctx, req))
		}),

		OpViewTenants: func(ctx context.Context, _ *call) (any, error) {
			return svc.Tenants.Ledger(ctx)
		},
		OpAddTenant: typed(func(ctx context.Context, req service.AddTenantRequest, _ *call) (any, error) {
			return created(svc.Tenants.Create(ctx, req))
		}),
		OpUpdateTenant: typed(func(ctx context.Context, req service.UpdateTenantRequest, _ *call) (any, error) {
			return affected(svc.Tenants.Update(ctx, req))
		}),
		OpDeleteTenant: typed(func(ctx context.Context, req service.IDRequest, _ *call) (any, error) {
			return affected(svc.Tenants.Delete(ctx, req))
		}),

		OpViewPayments: func(ctx context.Context, _ *call) (any, error) {
			return svc.Payments.List(ctx)
		},
		OpAddPayment: typed(func(ctx context.Context, req service.AddPaymentRequest, _ *call) (any, error) {
			return created(svc.Payments.Create(ctx, req))
		}),
		OpUpdatePayment: typed(func(ctx context.Context, req service.UpdatePaymentRequest, _ *call) (any, error) {
			return affected(svc.Payments.Update(ctx, req))
		}),
		OpDeletePayment: typed(func(ctx context.Context, req service.IDRequest, _ *call) (any, error) {
			return affected(svc.Payments.Delete(ctx, req))
		}),

		OpLogin: typed(func(ctx context.Context, req service.LoginRequest, _ *call) (any, error) {
			return svc.Auth.Login(ctx, req)
		}),
	}
	return d
}

// typed decodes the payload into the operation's request type.
func typed[T any](fn func(ctx context.Context, req T, c *call) (any, error)) handlerFunc {
	return func(ctx context.Context, c *call) (any, error) {
		var req T
		if err := json.Unmarshal(c.payload, &req); err != nil {
			return nil, &service.ValidationError{Field: "json", Message: "malformed payload"}
		}
		return fn(ctx, req, c)
	}
}

func created(id int64, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return Created{ID: id}, nil
}

func affected(err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return Affected{Affected: 1}, nil
}

func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		writeResult(w, Fail(ResultMethodNotAllowed, "invalid request method"))
		return
	}

	if d.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, d.maxBody)
	}
	if err := parseForm(r); err != nil {
		d.logger.Warn("Failed to parse request", zap.String("request_id", RequestIDFrom(r.Context())), zap.Error(err))
		writeResult(w, Fail(ResultValidation, "malformed request"))
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	opValues, hasOp := r.Form["operation"]
	payloadValues, hasPayload := r.Form["json"]
	if !hasOp || !hasPayload {
		writeResult(w, Fail(ResultValidation, "missing parameters: operation and json are required"))
		return
	}

	op := Operation(strings.TrimSpace(opValues[0]))
	handler, ok := d.handlers[op]
	if !ok {
		writeResult(w, Fail(ResultUnknownOperation, "invalid operation"))
		return
	}

	c := &call{payload: []byte(payloadValues[0])}
	if op.AcceptsImage() && r.MultipartForm != nil {
		file, header, err := r.FormFile("image")
		switch {
		case err == nil:
			defer file.Close()
			c.image = &service.Upload{Filename: header.Filename, Body: file}
		case !errors.Is(err, http.ErrMissingFile):
			writeResult(w, Fail(ResultValidation, "malformed image attachment"))
			return
		}
	}

	result, err := handler(r.Context(), c)
	if err != nil {
		writeResult(w, d.fail(r.Context(), op, err))
		return
	}
	d.logger.Debug("Operation completed", zap.String("request_id", RequestIDFrom(r.Context())), zap.String("operation", string(op)))
	writeResult(w, Ok(result))
}

func parseForm(r *http.Request) error {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "multipart/form-data" {
		return r.ParseMultipartForm(multipartMemory)
	}
	return r.ParseForm()
}

// fail maps an operation error to its envelope. Storage detail is logged, never returned.
func (d *Dispatcher) fail(ctx context.Context, op Operation, err error) Result[any] {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return Fail(ResultValidation, verr.Error())
	case errors.Is(err, store.ErrInvalidName):
		return Fail(ResultValidation, "image: invalid file name")
	case errors.Is(err, service.ErrInvalidCredentials):
		return Fail(ResultInvalidCredentials, err.Error())
	case errors.Is(err, service.ErrTooManyAttempts):
		return Fail(ResultTooManyAttempts, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		return Fail(ResultNotFound, "record not found")
	case errors.Is(err, repository.ErrReferenced):
		return Fail(ResultConflict, conflictMessage(op))
	case errors.Is(err, repository.ErrDuplicate):
		return Fail(ResultConflict, "duplicate record")
	}

	d.logger.Error("Operation failed",
		zap.String("request_id", RequestIDFrom(ctx)),
		zap.String("operation", string(op)),
		zap.Error(err),
	)
	if errors.Is(err, service.ErrImageUpload) {
		return Fail(ResultInternal, service.ErrImageUpload.Error())
	}
	return Fail(ResultInternal, "internal error")
}

func conflictMessage(op Operation) string {
	switch op {
	case OpDeleteCategory:
		return "category is still used by houses"
	case OpDeleteHouse:
		return "house is still occupied by tenants"
	case OpDeleteTenant:
		return "tenant still has payments"
	case OpAddHouse, OpUpdateHouse:
		return "category does not exist"
	case OpAddTenant, OpUpdateTenant:
		return "house does not exist"
	case OpAddPayment, OpUpdatePayment:
		return "tenant does not exist"
	default:
		return fmt.Sprintf("%s conflicts with existing records", op)
	}
}
