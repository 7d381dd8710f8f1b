package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	partnerapp "github.com/bizgrid/backend/internal/application/partner"
	tradeapp "github.com/bizgrid/backend/internal/application/trade"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/domain/trade"
	"github.com/bizgrid/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// MockCustomerService is a mock implementation of CustomerService
type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) UpsertMasterCustomer(ctx context.Context, req partnerapp.UpsertCustomerRequest) (*partnerapp.UpsertCustomerResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partnerapp.UpsertCustomerResponse), args.Error(1)
}

func (m *MockCustomerService) GetLinked(ctx context.Context, linkID uuid.UUID) (*partnerapp.LinkedCustomerResponse, error) {
	args := m.Called(ctx, linkID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partnerapp.LinkedCustomerResponse), args.Error(1)
}

func (m *MockCustomerService) ListLinked(ctx context.Context, filter partnerapp.CustomerListFilter) (shared.Paginated[partnerapp.LinkedCustomerResponse], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[partnerapp.LinkedCustomerResponse]), args.Error(1)
}

// MockInvoiceService is a mock implementation of InvoiceService
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) ValidateInvoiceItems(ctx context.Context, req tradeapp.ValidateItemsRequest) (*trade.ValidationResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.ValidationResult), args.Error(1)
}

func (m *MockInvoiceService) CreateDraft(ctx context.Context, req tradeapp.SaveDraftRequest) (*tradeapp.InvoiceResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.InvoiceResponse), args.Error(1)
}

func (m *MockInvoiceService) SaveDraft(ctx context.Context, id uuid.UUID, req tradeapp.SaveDraftRequest) (*tradeapp.InvoiceResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.InvoiceResponse), args.Error(1)
}

func (m *MockInvoiceService) Finalize(ctx context.Context, id uuid.UUID) (*tradeapp.FinalizeResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.FinalizeResponse), args.Error(1)
}

func (m *MockInvoiceService) Cancel(ctx context.Context, id uuid.UUID, req tradeapp.CancelInvoiceRequest) (*tradeapp.InvoiceResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.InvoiceResponse), args.Error(1)
}

func (m *MockInvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*tradeapp.InvoiceResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.InvoiceResponse), args.Error(1)
}

func (m *MockInvoiceService) List(ctx context.Context, filter tradeapp.InvoiceListFilter) (shared.Paginated[tradeapp.InvoiceResponse], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[tradeapp.InvoiceResponse]), args.Error(1)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details []struct {
			Field string `json:"field"`
		} `json:"details"`
	} `json:"error"`
	Meta *struct {
		Total int64 `json:"total"`
		Page  int   `json:"page"`
	} `json:"meta"`
}

func perform(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func customerRouter(svc CustomerService) *gin.Engine {
	h := NewCustomerHandler(svc)
	r := gin.New()
	r.POST("/customers/upsert", h.Upsert)
	r.GET("/customers", h.List)
	r.GET("/customers/:id", h.Get)
	return r
}

func TestCustomerHandler_Upsert_StatusReflectsCreation(t *testing.T) {
	for _, created := range []bool{true, false} {
		svc := new(MockCustomerService)
		req := partnerapp.UpsertCustomerRequest{Mobile: "9876543210", LegalName: "Acme", StateCode: "ka"}
		svc.On("UpsertMasterCustomer", mock.Anything, req).Return(&partnerapp.UpsertCustomerResponse{
			LinkedCustomerResponse: partnerapp.LinkedCustomerResponse{LinkID: uuid.New(), LegalName: "Acme"},
			Created:                created,
		}, nil)

		w, env := perform(t, customerRouter(svc), http.MethodPost, "/customers/upsert", req)
		want := http.StatusOK
		if created {
			want = http.StatusCreated
		}
		assert.Equal(t, want, w.Code)
		assert.True(t, env.Success)
	}
}

func TestCustomerHandler_Upsert_ValidationErrors(t *testing.T) {
	svc := new(MockCustomerService)

	w, env := perform(t, customerRouter(svc), http.MethodPost, "/customers/upsert",
		map[string]string{"mobile": "1", "state_code": "ZZ"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	fields := make([]string, 0, len(env.Error.Details))
	for _, d := range env.Error.Details {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"legal_name", "state_code"}, fields)
	svc.AssertNotCalled(t, "UpsertMasterCustomer", mock.Anything, mock.Anything)
}

func TestCustomerHandler_Upsert_DomainErrorMapped(t *testing.T) {
	svc := new(MockCustomerService)
	svc.On("UpsertMasterCustomer", mock.Anything, mock.Anything).Return(nil, shared.ErrIdentifierRequired)

	w, env := perform(t, customerRouter(svc), http.MethodPost, "/customers/upsert",
		partnerapp.UpsertCustomerRequest{LegalName: "No Ids"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, shared.CodeIdentifierRequired, env.Error.Code)
}

func TestCustomerHandler_Get_MalformedIDIsNotFound(t *testing.T) {
	svc := new(MockCustomerService)

	w, env := perform(t, customerRouter(svc), http.MethodGet, "/customers/not-a-uuid", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, shared.CodeNotFound, env.Error.Code)
	svc.AssertNotCalled(t, "GetLinked", mock.Anything, mock.Anything)
}

func TestCustomerHandler_List(t *testing.T) {
	svc := new(MockCustomerService)
	svc.On("ListLinked", mock.Anything, partnerapp.CustomerListFilter{Search: "ac", Page: 2, PageSize: 5}).
		Return(shared.NewPaginated([]partnerapp.LinkedCustomerResponse{{LegalName: "Acme"}}, 6, 2, 5), nil)

	w, env := perform(t, customerRouter(svc), http.MethodGet, "/customers?search=ac&page=2&page_size=5", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(6), env.Meta.Total)
	assert.Equal(t, 2, env.Meta.Page)
}

func invoiceRouter(svc InvoiceService) *gin.Engine {
	h := NewInvoiceHandler(svc)
	r := gin.New()
	r.POST("/invoices/validate", h.Validate)
	r.POST("/invoices", h.Create)
	r.PUT("/invoices/:id", h.SaveDraft)
	r.POST("/invoices/:id/finalize", h.Finalize)
	r.POST("/invoices/:id/cancel", h.Cancel)
	return r
}

func TestInvoiceHandler_Finalize_IssuesReturnedAsData(t *testing.T) {
	svc := new(MockInvoiceService)
	id := uuid.New()
	svc.On("Finalize", mock.Anything, id).Return(&tradeapp.FinalizeResponse{
		Validation: trade.ValidationResult{Errors: []trade.LineIssue{{Line: 1, Code: trade.IssueMissingTaxCode}}},
	}, nil)

	w, env := perform(t, invoiceRouter(svc), http.MethodPost, "/invoices/"+id.String()+"/finalize", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp tradeapp.FinalizeResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Nil(t, resp.Invoice)
	require.Len(t, resp.Validation.Errors, 1)
	assert.Equal(t, trade.IssueMissingTaxCode, resp.Validation.Errors[0].Code)
}

func TestInvoiceHandler_SaveDraft_StaleVersionConflicts(t *testing.T) {
	svc := new(MockInvoiceService)
	id := uuid.New()
	svc.On("SaveDraft", mock.Anything, id, mock.Anything).Return(nil, shared.ErrStaleState)

	w, env := perform(t, invoiceRouter(svc), http.MethodPut, "/invoices/"+id.String(), map[string]any{"version": 1})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, shared.CodeStaleState, env.Error.Code)
}

func TestInvoiceHandler_Cancel_EmptyBody(t *testing.T) {
	svc := new(MockInvoiceService)
	id := uuid.New()
	svc.On("Cancel", mock.Anything, id, tradeapp.CancelInvoiceRequest{}).
		Return(&tradeapp.InvoiceResponse{ID: id, Status: "cancelled"}, nil)

	w, env := perform(t, invoiceRouter(svc), http.MethodPost, "/invoices/"+id.String()+"/cancel", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
}

func TestInvoiceHandler_UnexpectedErrorIsOpaque(t *testing.T) {
	svc := new(MockInvoiceService)
	svc.On("CreateDraft", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	w, env := perform(t, invoiceRouter(svc), http.MethodPost, "/invoices", map[string]any{"notes": "x"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", env.Error.Code)
	assert.NotContains(t, env.Error.Message, assert.AnError.Error())
}

func TestInvoiceHandler_Validate_MalformedJSON(t *testing.T) {
	svc := new(MockInvoiceService)
	r := invoiceRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/invoices/validate", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "BAD_REQUEST")
}
