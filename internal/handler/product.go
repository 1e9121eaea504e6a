package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ducnv-dev/shoestore-backend/internal/product"
)

type ProductHandler struct {
	errorWriter
	svc product.Service
}

func NewProductHandler(svc product.Service, dev bool) *ProductHandler {
	return &ProductHandler{errorWriter: errorWriter{dev: dev}, svc: svc}
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input product.CreateInput
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

func (h *ProductHandler) GetDetails(w http.ResponseWriter, r *http.Request) {
	found, err := h.svc.GetDetails(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, found)
}

func (h *ProductHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.GetAll(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) ListPage(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r, 24)
	query := r.URL.Query()
	filters := product.ListFilters{
		Sort:   query.Get("sort"),
		Search: query.Get("search"),
		Type:   query.Get("type"),
		Brand:  query.Get("brand"),
		Color:  query.Get("color"),
		Stock:  query.Get("stock"),
	}

	result, err := h.svc.ListPage(r.Context(), page, limit, filters)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var properties map[string]any
	if !decodeBody(w, r, &properties) {
		return
	}

	updated, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), properties)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.SoftDelete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"result": "deleted"})
}

func (h *ProductHandler) UpdateQuantitySold(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Quantity int `json:"quantity"`
	}
	if !decodeBody(w, r, &input) {
		return
	}

	updated, err := h.svc.AddQuantitySold(r.Context(), chi.URLParam(r, "id"), input.Quantity)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *ProductHandler) CountAll(w http.ResponseWriter, r *http.Request) {
	total, err := h.svc.CountAll(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, total)
}

func (h *ProductHandler) TopBestSellers(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.TopBestSellers(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) ByBrandAndType(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	products, err := h.svc.ByBrandAndType(r.Context(), query.Get("brand"), query.Get("type"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, products)
}
