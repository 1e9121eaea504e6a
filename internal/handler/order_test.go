package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ducnv-dev/shoestore-backend/internal/order"
	"github.com/ducnv-dev/shoestore-backend/internal/validate"
)

type mockOrderService struct {
	createCartFunc   func(ctx context.Context, input order.CreateInput) (*order.Order, error)
	getDetailsFunc   func(ctx context.Context, id string) (*order.Order, error)
	addItemFunc      func(ctx context.Context, id string, input order.AddItemInput) (*order.Order, error)
	updateStatusFunc func(ctx context.Context, id string, status string) error
	checkoutFunc     func(ctx context.Context, id string, input order.CheckoutInput) (*order.Order, error)
	listPageFunc     func(ctx context.Context, page, limit int, opts order.ListOptions) (*order.Page, error)
}

func (m *mockOrderService) CreateCart(ctx context.Context, input order.CreateInput) (*order.Order, error) {
	return m.createCartFunc(ctx, input)
}

func (m *mockOrderService) GetDetails(ctx context.Context, id string) (*order.Order, error) {
	return m.getDetailsFunc(ctx, id)
}

func (m *mockOrderService) AddItem(ctx context.Context, id string, input order.AddItemInput) (*order.Order, error) {
	return m.addItemFunc(ctx, id, input)
}

func (m *mockOrderService) RemoveItem(ctx context.Context, id string, ref order.ItemRef) (*order.Order, error) {
	return nil, nil
}

func (m *mockOrderService) IncreaseQuantity(ctx context.Context, id string, ref order.ItemRef) (*order.Order, error) {
	return nil, nil
}

func (m *mockOrderService) DecreaseQuantity(ctx context.Context, id string, ref order.ItemRef) (*order.Order, error) {
	return nil, nil
}

func (m *mockOrderService) AttachShippingInfo(ctx context.Context, id string, input order.ShippingInfoInput) (*order.Order, error) {
	return nil, nil
}

func (m *mockOrderService) Checkout(ctx context.Context, id string, input order.CheckoutInput) (*order.Order, error) {
	return m.checkoutFunc(ctx, id, input)
}

func (m *mockOrderService) UpdateStatus(ctx context.Context, id string, status string) error {
	return m.updateStatusFunc(ctx, id, status)
}

func (m *mockOrderService) SoftDelete(ctx context.Context, id string) error {
	return nil
}

func (m *mockOrderService) ListPage(ctx context.Context, page, limit int, opts order.ListOptions) (*order.Page, error) {
	return m.listPageFunc(ctx, page, limit, opts)
}

func newOrderRouter(svc order.Service) *chi.Mux {
	h := NewOrderHandler(svc, false)
	r := chi.NewRouter()
	r.Post("/orders", h.Create)
	r.Get("/orders", h.List)
	r.Get("/orders/{id}", h.GetDetails)
	r.Put("/orders/{id}/add-product", h.AddProduct)
	r.Put("/orders/{id}/status", h.UpdateStatus)
	r.Put("/orders/{id}", h.Checkout)
	return r
}

func TestOrderHandler_Create(t *testing.T) {
	orderID := primitive.NewObjectID()

	tests := []struct {
		name           string
		body           string
		createCart     func(ctx context.Context, input order.CreateInput) (*order.Order, error)
		expectedStatus int
	}{
		{
			name: "success",
			body: `{"customerId":"` + primitive.NewObjectID().Hex() + `","items":[]}`,
			createCart: func(ctx context.Context, input order.CreateInput) (*order.Order, error) {
				return &order.Order{ID: orderID, Status: order.StatusCart, Items: []order.LineItem{}}, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "validation_failure",
			body: `{"customerId":"nope"}`,
			createCart: func(ctx context.Context, input order.CreateInput) (*order.Order, error) {
				return nil, &validate.Errors{Fields: []validate.FieldError{
					{Field: "customerId", Message: "customerId fails to match the object id pattern"},
				}}
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "invalid_json",
			body:           `{invalid json}`,
			createCart:     func(ctx context.Context, input order.CreateInput) (*order.Order, error) { return nil, nil },
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newOrderRouter(&mockOrderService{createCartFunc: tt.createCart})

			req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestOrderHandler_GetDetails(t *testing.T) {
	orderID := primitive.NewObjectID()

	tests := []struct {
		name           string
		getDetails     func(ctx context.Context, id string) (*order.Order, error)
		expectedStatus int
	}{
		{
			name: "success",
			getDetails: func(ctx context.Context, id string) (*order.Order, error) {
				return &order.Order{ID: orderID, Status: order.StatusPending, Items: []order.LineItem{}}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "not_found",
			getDetails: func(ctx context.Context, id string) (*order.Order, error) {
				return nil, order.ErrNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "invalid_id",
			getDetails: func(ctx context.Context, id string) (*order.Order, error) {
				return nil, order.ErrInvalidID
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newOrderRouter(&mockOrderService{getDetailsFunc: tt.getDetails})

			req := httptest.NewRequest(http.MethodGet, "/orders/"+orderID.Hex(), nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	tests := []struct {
		name           string
		updateStatus   func(ctx context.Context, id string, status string) error
		expectedStatus int
	}{
		{
			name:           "success",
			updateStatus:   func(ctx context.Context, id string, status string) error { return nil },
			expectedStatus: http.StatusOK,
		},
		{
			name: "unknown_status",
			updateStatus: func(ctx context.Context, id string, status string) error {
				return &validate.Errors{Fields: []validate.FieldError{
					{Field: "status", Message: "status must be one of [cart pending delivering completed canceled]"},
				}}
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "illegal_transition",
			updateStatus: func(ctx context.Context, id string, status string) error {
				return order.ErrInvalidStatusTransition
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newOrderRouter(&mockOrderService{updateStatusFunc: tt.updateStatus})

			req := httptest.NewRequest(http.MethodPut, "/orders/"+primitive.NewObjectID().Hex()+"/status",
				bytes.NewBufferString(`{"status":"delivering"}`))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestOrderHandler_Checkout_TotalMismatch(t *testing.T) {
	r := newOrderRouter(&mockOrderService{
		checkoutFunc: func(ctx context.Context, id string, input order.CheckoutInput) (*order.Order, error) {
			return nil, order.ErrTotalMismatch
		},
	})

	req := httptest.NewRequest(http.MethodPut, "/orders/"+primitive.NewObjectID().Hex(),
		bytes.NewBufferString(`{"totalPrice":10,"payment":"cod"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestOrderHandler_List_PassesQuery(t *testing.T) {
	var gotPage, gotLimit int
	var gotOpts order.ListOptions

	r := newOrderRouter(&mockOrderService{
		listPageFunc: func(ctx context.Context, page, limit int, opts order.ListOptions) (*order.Page, error) {
			gotPage, gotLimit, gotOpts = page, limit, opts
			return &order.Page{Orders: []order.Order{}, Total: 0}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/orders?page=abc&limit=-5&sort=newest&search=hanoi", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, gotPage, "non-numeric page falls back to 1")
	assert.Equal(t, 12, gotLimit, "negative limit falls back to the default page size")
	assert.Equal(t, order.ListOptions{Sort: "newest", Search: "hanoi"}, gotOpts)
}
