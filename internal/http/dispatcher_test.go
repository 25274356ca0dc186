package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/amabee/property-rental/internal/domain"
	"github.com/amabee/property-rental/internal/ledger"
	"github.com/amabee/property-rental/internal/repository"
	"github.com/amabee/property-rental/internal/service"
	"github.com/amabee/property-rental/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	handler http.Handler
	mem     *repository.MemoryStore
	dir     string
	now     time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	mem := repository.NewMemoryStore()
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	mem.SetClock(func() time.Time { return now })
	calc := ledger.NewCalculator(time.UTC, func() time.Time { return now })
	dir := t.TempDir()

	tenants := service.NewTenantService(mem, mem, calc, logger)
	svc := Services{
		Dashboard:  service.NewDashboardService(mem, mem, mem, calc),
		Categories: service.NewCategoryService(mem, logger),
		Houses:     service.NewHouseService(mem, store.NewFileBlobStore(dir), "https://placehold.co/800x600", logger),
		Tenants:    tenants,
		Payments:   service.NewPaymentService(mem, logger),
		Auth:       service.NewAuthService(mem, service.NewBcryptHasher(bcrypt.MinCost), nil, service.AuthConfig{}, logger),
	}
	router := NewRouter(logger)
	router.RegisterRentalRoutes(NewDispatcher(svc, 1<<20, logger), NewReportHandler(tenants, logger))
	return &testEnv{handler: router.Handler("*"), mem: mem, dir: dir, now: now}
}

func (e *testEnv) call(t *testing.T, op, payload string) Result[json.RawMessage] {
	t.Helper()
	form := url.Values{"operation": {op}, "json": {payload}}
	req := httptest.NewRequest(http.MethodPost, RentalPath, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(t, req)
}

func (e *testEnv) do(t *testing.T, req *http.Request) Result[json.RawMessage] {
	t.Helper()
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var res Result[json.RawMessage]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res), rec.Body.String())
	return res
}

func TestDispatcher_UnknownOperation(t *testing.T) {
	env := newTestEnv(t)
	res := env.call(t, "dropTables", "{}")
	assert.Equal(t, ResultUnknownOperation, res.Code)
	assert.Equal(t, "error", res.Type)
}

func TestDispatcher_MissingParameters(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, RentalPath+"?operation=getCategories", nil)
	res := env.do(t, req)
	assert.Equal(t, ResultValidation, res.Code)

	req = httptest.NewRequest(http.MethodGet, RentalPath+"?json=%7B%7D", nil)
	res = env.do(t, req)
	assert.Equal(t, ResultValidation, res.Code)
}

func TestDispatcher_InvalidMethod(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodDelete, RentalPath+"?operation=getCategories&json=%7B%7D", nil)
	res := env.do(t, req)
	assert.Equal(t, ResultMethodNotAllowed, res.Code)
}

func TestDispatcher_GetWithQueryString(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, RentalPath+"?operation=getCategories&json=", nil)
	res := env.do(t, req)
	assert.Equal(t, ResultSuccess, res.Code)
	assert.JSONEq(t, `[]`, string(res.Result))
}

func TestDispatcher_CreateCategoryWithoutName(t *testing.T) {
	env := newTestEnv(t)

	res := env.call(t, "createCategory", `{}`)
	assert.Equal(t, ResultValidation, res.Code)
	assert.Contains(t, res.Message, "name")

	cats, err := env.mem.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cats)
}

func TestDispatcher_MalformedPayload(t *testing.T) {
	env := newTestEnv(t)
	res := env.call(t, "createCategory", `{"name":`)
	assert.Equal(t, ResultValidation, res.Code)
	assert.Contains(t, res.Message, "json")
}

func TestDispatcher_CategoryLifecycle(t *testing.T) {
	env := newTestEnv(t)

	res := env.call(t, "createCategory", `{"name":"Studio"}`)
	require.Equal(t, ResultSuccess, res.Code)
	assert.JSONEq(t, `{"id":1}`, string(res.Result))

	res = env.call(t, "updateCategory", `{"id":1,"name":"Loft"}`)
	require.Equal(t, ResultSuccess, res.Code)
	assert.JSONEq(t, `{"affected":1}`, string(res.Result))

	res = env.call(t, "getCategories", `{}`)
	require.Equal(t, ResultSuccess, res.Code)
	assert.JSONEq(t, `[{"id":1,"name":"Loft"}]`, string(res.Result))

	res = env.call(t, "updateCategory", `{"id":9,"name":"Loft"}`)
	assert.Equal(t, ResultNotFound, res.Code)
}

func TestDispatcher_DeleteReferencedCategory(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, ResultSuccess, env.call(t, "createCategory", `{"name":"Studio"}`).Code)
	require.Equal(t, ResultSuccess, env.call(t, "addHouse", `{"house_no":"A-1","category_id":1,"price":"1000"}`).Code)

	res := env.call(t, "deleteCategory", `{"id":1}`)
	assert.Equal(t, ResultConflict, res.Code)
	assert.Equal(t, "category is still used by houses", res.Message)

	cats, err := env.mem.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Len(t, cats, 1)

	res = env.call(t, "addHouse", `{"house_no":"A-2","category_id":42,"price":1000}`)
	assert.Equal(t, ResultConflict, res.Code)
}

func TestDispatcher_LoginWrongPasswordReturnsSentinel(t *testing.T) {
	env := newTestEnv(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = env.mem.UpsertUser(context.Background(), &domain.User{Name: "Admin", Username: "admin", PasswordHash: string(hash), Type: 1})
	require.NoError(t, err)

	res := env.call(t, "login", `{"username":"admin","password":"nope"}`)
	assert.Equal(t, ResultInvalidCredentials, res.Code)
	assert.Equal(t, "null", string(res.Result))

	res = env.call(t, "login", `{"username":"admin","password":"s3cret"}`)
	require.Equal(t, ResultSuccess, res.Code)
	assert.JSONEq(t, `{"id":1,"name":"Admin","username":"admin","type":1}`, string(res.Result))
}

func TestDispatcher_DashboardTotals(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	catID, err := env.mem.CreateCategory(ctx, "Studio")
	require.NoError(t, err)
	for _, no := range []string{"A-1", "A-2", "A-3"} {
		_, err := env.mem.CreateHouse(ctx, &domain.House{HouseNo: no, CategoryID: catID, Price: decimal.NewFromInt(1000)})
		require.NoError(t, err)
	}
	var tenantID int64
	for i := 0; i < 5; i++ {
		tenantID, err = env.mem.CreateTenant(ctx, &domain.Tenant{Firstname: "T", Lastname: "X"})
		require.NoError(t, err)
	}
	require.Equal(t, ResultSuccess, env.call(t, "addPayment", `{"tenant_id":5,"amount":100}`).Code)
	require.Equal(t, ResultSuccess, env.call(t, "addPayment", `{"tenant_id":5,"amount":"250"}`).Code)

	lastMonth := env.now.AddDate(0, -1, 0)
	env.mem.SetClock(func() time.Time { return lastMonth })
	_, err = env.mem.CreatePayment(ctx, &domain.Payment{TenantID: tenantID, Amount: decimal.NewFromInt(999)})
	require.NoError(t, err)

	res := env.call(t, "getDashboardData", `{}`)
	require.Equal(t, ResultSuccess, res.Code)
	var d domain.Dashboard
	require.NoError(t, json.Unmarshal(res.Result, &d))
	assert.Equal(t, int64(3), d.HouseCount)
	assert.Equal(t, int64(5), d.TenantCount)
	assert.True(t, decimal.NewFromInt(350).Equal(d.TotalPaymentsThisMonth), d.TotalPaymentsThisMonth.String())
}

func TestDispatcher_ViewTenantsLedger(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, ResultSuccess, env.call(t, "createCategory", `{"name":"Studio"}`).Code)
	require.Equal(t, ResultSuccess, env.call(t, "addHouse", `{"house_no":"A-1","category_id":1,"price":"1000"}`).Code)
	require.Equal(t, ResultSuccess, env.call(t, "addHouse", `{"house_no":"B-1","category_id":1,"price":"500"}`).Code)

	moveIn := env.now.AddDate(0, 0, -60)
	env.mem.SetClock(func() time.Time { return moveIn })
	require.Equal(t, ResultSuccess, env.call(t, "addTenant", `{"firstname":"Ana","lastname":"Reyes","house_id":1}`).Code)
	require.Equal(t, ResultSuccess, env.call(t, "addTenant", `{"firstname":"Ben","lastname":"Cruz","house_id":2}`).Code)
	require.Equal(t, ResultSuccess, env.call(t, "addTenant", `{"firstname":"Cy","lastname":"Lim"}`).Code)

	res := env.call(t, "viewTenants", `{}`)
	require.Equal(t, ResultSuccess, res.Code)

	var rows []struct {
		ID          int64   `json:"id"`
		Name        string  `json:"name"`
		HouseNo     *string `json:"house_no"`
		Payable     string  `json:"payable"`
		Paid        string  `json:"paid"`
		LastPayment string  `json:"last_payment"`
		Outstanding string  `json:"outstanding"`
		StatusText  string  `json:"status_text"`
	}
	require.NoError(t, json.Unmarshal(res.Result, &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, int64(2), rows[0].ID)
	assert.Equal(t, "Reyes, Ana", rows[1].Name)
	assert.Nil(t, rows[2].HouseNo)
	assert.Equal(t, "2000", rows[1].Payable)
	assert.Equal(t, "0", rows[1].Paid)
	assert.Equal(t, "2000", rows[1].Outstanding)
	assert.Equal(t, ledger.NotAvailable, rows[1].LastPayment)
	assert.Equal(t, "Active", rows[1].StatusText)
}

func TestDispatcher_AddHouseWithImage(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, ResultSuccess, env.call(t, "createCategory", `{"name":"Studio"}`).Code)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("operation", "addHouse"))
	require.NoError(t, mw.WriteField("json", `{"house_no":"A-1","category_id":1,"price":"1000","description":"corner"}`))
	fw, err := mw.CreateFormFile("image", "front.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, RentalPath, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	res := env.do(t, req)
	require.Equal(t, ResultSuccess, res.Code, res.Message)

	data, err := os.ReadFile(filepath.Join(env.dir, "front.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	res = env.call(t, "viewHouses", `{}`)
	require.Equal(t, ResultSuccess, res.Code)
	var houses []domain.House
	require.NoError(t, json.Unmarshal(res.Result, &houses))
	require.Len(t, houses, 1)
	assert.Equal(t, "front.jpg", houses[0].Image)
	assert.Equal(t, "Studio", houses[0].CategoryName)
}

func TestDispatcher_PaymentLifecycle(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, ResultSuccess, env.call(t, "addTenant", `{"firstname":"Ana","lastname":"Reyes"}`).Code)

	assert.Equal(t, ResultValidation, env.call(t, "addPayment", `{"tenant_id":1,"amount":-5}`).Code)
	assert.Equal(t, ResultConflict, env.call(t, "addPayment", `{"tenant_id":9,"amount":5}`).Code)
	require.Equal(t, ResultSuccess, env.call(t, "addPayment", `{"tenant_id":1,"amount":5,"invoice":"INV-1"}`).Code)
	require.Equal(t, ResultSuccess, env.call(t, "updatePayment", `{"id":1,"tenant_id":1,"amount":7,"invoice":"INV-1"}`).Code)

	res := env.call(t, "viewPayments", `{}`)
	require.Equal(t, ResultSuccess, res.Code)
	var views []domain.PaymentView
	require.NoError(t, json.Unmarshal(res.Result, &views))
	require.Len(t, views, 1)
	assert.True(t, decimal.NewFromInt(7).Equal(views[0].Amount))
	assert.Equal(t, "Reyes, Ana", views[0].TenantName)

	assert.Equal(t, ResultConflict, env.call(t, "deleteTenant", `{"id":1}`).Code)
	require.Equal(t, ResultSuccess, env.call(t, "deletePayment", `{"id":1}`).Code)
	require.Equal(t, ResultSuccess, env.call(t, "deleteTenant", `{"id":1}`).Code)
	assert.Equal(t, ResultNotFound, env.call(t, "deletePayment", `{"id":1}`).Code)
}

func TestRouter_CORSAndRequestID(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, RentalPath, nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, HealthPath, nil)
	req.Header.Set(RequestIDHeader, "abc")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get(RequestIDHeader))
}

func TestRouter_PanicBecomesEnvelope(t *testing.T) {
	router := NewRouter(zap.NewNop())
	router.Handle("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rec := httptest.NewRecorder()
	router.Handler("").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var res Result[any]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, ResultInternal, res.Code)
	assert.Equal(t, "internal error", res.Message)
}

func TestReportHandler_ExportTenantLedger(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, ResultSuccess, env.call(t, "addTenant", `{"firstname":"Ana","lastname":"Reyes"}`).Code)

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, TenantsReportPath, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "tenant-ledger.xlsx")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")), "xlsx is a zip archive")
}

func TestOperations_AllDispatched(t *testing.T) {
	d := NewDispatcher(Services{}, 0, zap.NewNop())
	for _, op := range Operations {
		_, ok := d.handlers[op]
		assert.True(t, ok, string(op))
	}
	assert.Len(t, d.handlers, len(Operations))
}
