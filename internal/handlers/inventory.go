package handlers

import (
	"net/http"
	"strings"
)

// ListInventory is the admin stock view: includes hidden rows unless
// visible=true is passed.
func (h *Handlers) ListInventory(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}

	onlyVisible := strings.EqualFold(r.URL.Query().Get("visible"), "true")

	records, err := h.inventoryService.ListForProduct(r.Context(), productID, onlyVisible)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, map[string]any{"inventory": records})
}

type adjustInventoryRequest struct {
	Delta int `json:"delta" validate:"required"`
}

func (h *Handlers) AdjustInventory(w http.ResponseWriter, r *http.Request) {
	recordID, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req adjustInventoryRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.inventoryService.AdjustQuantity(r.Context(), recordID, req.Delta)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, record)
}

type inventoryVisibilityRequest struct {
	Visible *bool `json:"visible" validate:"required"`
}

func (h *Handlers) SetInventoryVisibility(w http.ResponseWriter, r *http.Request) {
	recordID, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req inventoryVisibilityRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.inventoryService.SetVisibility(r.Context(), recordID, *req.Visible)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, record)
}
