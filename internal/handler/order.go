package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ducnv-dev/shoestore-backend/internal/order"
)

// OrderHandler handles HTTP requests for orders and carts.
type OrderHandler struct {
	errorWriter
	svc order.Service
}

func NewOrderHandler(svc order.Service, dev bool) *OrderHandler {
	return &OrderHandler{errorWriter: errorWriter{dev: dev}, svc: svc}
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input order.CreateInput
	if !decodeBody(w, r, &input) {
		return
	}

	created, err := h.svc.CreateCart(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *OrderHandler) GetDetails(w http.ResponseWriter, r *http.Request) {
	found, err := h.svc.GetDetails(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, found)
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r, 12)
	opts := order.ListOptions{
		Sort:   r.URL.Query().Get("sort"),
		Search: r.URL.Query().Get("search"),
	}

	result, err := h.svc.ListPage(r.Context(), page, limit, opts)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

func (h *OrderHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var input order.AddItemInput
	if !decodeBody(w, r, &input) {
		return
	}

	updated, err := h.svc.AddItem(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *OrderHandler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	var ref order.ItemRef
	if !decodeBody(w, r, &ref) {
		return
	}

	updated, err := h.svc.RemoveItem(r.Context(), chi.URLParam(r, "id"), ref)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *OrderHandler) IncreaseQuantity(w http.ResponseWriter, r *http.Request) {
	h.adjustQuantity(w, r, h.svc.IncreaseQuantity)
}

func (h *OrderHandler) DecreaseQuantity(w http.ResponseWriter, r *http.Request) {
	h.adjustQuantity(w, r, h.svc.DecreaseQuantity)
}

func (h *OrderHandler) adjustQuantity(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id string, ref order.ItemRef) (*order.Order, error)) {
	var ref order.ItemRef
	if !decodeBody(w, r, &ref) {
		return
	}

	updated, err := op(r.Context(), chi.URLParam(r, "id"), ref)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *OrderHandler) AddInformation(w http.ResponseWriter, r *http.Request) {
	var input order.ShippingInfoInput
	if !decodeBody(w, r, &input) {
		return
	}

	updated, err := h.svc.AttachShippingInfo(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var input order.CheckoutInput
	if !decodeBody(w, r, &input) {
		return
	}

	updated, err := h.svc.Checkout(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Status string `json:"status"`
	}
	if !decodeBody(w, r, &input) {
		return
	}

	if err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), input.Status); err != nil {
		h.respondError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"result": "updated"})
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.SoftDelete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"result": "deleted"})
}
