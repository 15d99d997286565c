package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/atelierhq/atelier/internal/models"
)

func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.ListProducts(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, map[string]any{"products": products})
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(r.Context(), productID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, product)
}

// ProductOptions returns the configurator option sets: attribute lists from
// the product plus color/size availability derived from visible inventory.
func (h *Handlers) ProductOptions(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}

	options, err := h.productService.ProductOptions(r.Context(), productID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, options)
}

type updateProductRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1"`
	Category  *string `json:"category" validate:"omitempty,min=1"`
	BasePrice *string `json:"base_price" validate:"omitempty"`
	IsActive  *bool   `json:"is_active"`
}

// UpdateProduct applies a partial admin edit to a product.
func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req updateProductRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == nil && req.Category == nil && req.BasePrice == nil && req.IsActive == nil {
		h.respondError(w, r, http.StatusBadRequest, "at least one field must be set")
		return
	}

	update := models.ProductUpdate{
		Name:     req.Name,
		Category: req.Category,
		IsActive: req.IsActive,
	}
	if req.BasePrice != nil {
		price, err := decimal.NewFromString(*req.BasePrice)
		if err != nil {
			h.respondError(w, r, http.StatusBadRequest, "base_price must be a decimal amount")
			return
		}
		update.BasePrice = &price
	}

	product, err := h.productService.UpdateProduct(r.Context(), productID, update)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, product)
}

func (h *Handlers) pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := mux.Vars(r)[name]
	id, err := uuid.Parse(raw)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, name+" must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}
