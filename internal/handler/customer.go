package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ducnv-dev/shoestore-backend/internal/customer"
)

type CustomerHandler struct {
	errorWriter
	svc customer.Service
}

func NewCustomerHandler(svc customer.Service, dev bool) *CustomerHandler {
	return &CustomerHandler{errorWriter: errorWriter{dev: dev}, svc: svc}
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input customer.CreateInput
	if !decodeBody(w, r, &input) {
		return
	}

	created, err := h.svc.Create(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *CustomerHandler) GetDetails(w http.ResponseWriter, r *http.Request) {
	found, err := h.svc.GetDetails(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, found)
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r, 12)
	opts := customer.ListOptions{Search: r.URL.Query().Get("search")}

	result, err := h.svc.ListPage(r.Context(), page, limit, opts)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

func (h *CustomerHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input customer.LoginInput
	if !decodeBody(w, r, &input) {
		return
	}

	found, err := h.svc.Login(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, found)
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Properties map[string]any `json:"properties"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	updated, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), body.Properties)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *CustomerHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Role string `json:"role"`
	}
	if !decodeBody(w, r, &input) {
		return
	}

	updated, err := h.svc.ChangeRole(r.Context(), chi.URLParam(r, "id"), input.Role)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *CustomerHandler) AddOrder(w http.ResponseWriter, r *http.Request) {
	var input struct {
		OrderID string `json:"orderId"`
		Status  string `json:"status"`
	}
	if !decodeBody(w, r, &input) {
		return
	}

	updated, err := h.svc.AddOrder(r.Context(), chi.URLParam(r, "id"), input.OrderID, input.Status)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *CustomerHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	var input struct {
		OrderID string `json:"orderId"`
		Status  string `json:"status"`
	}
	if !decodeBody(w, r, &input) {
		return
	}

	updated, err := h.svc.UpdateOrderStatus(r.Context(), chi.URLParam(r, "id"), input.OrderID, input.Status)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Deactivate(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"result": "deleted"})
}
