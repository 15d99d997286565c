package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/pricing"
)

type calculatePriceRequest struct {
	ProductID  string `json:"product_id" validate:"required,uuid"`
	Style      string `json:"style"`
	Material   string `json:"material"`
	DesignType string `json:"design_type"`
	Color      string `json:"color"`
	Size       string `json:"size"`
	Quantity   int    `json:"quantity" validate:"required,min=1"`
	CustomText string `json:"custom_text"`
	Placement  string `json:"placement"`
	ImageURL   string `json:"image_url" validate:"omitempty,url"`
}

type calculatePriceResponse struct {
	UnitPrice string  `json:"unit_price"`
	RuleID    *string `json:"rule_id"`
}

// CalculatePrice prices one configurator selection. The fallback to base
// price is a success response with a null rule id, not an error.
func (h *Handlers) CalculatePrice(w http.ResponseWriter, r *http.Request) {
	var req calculatePriceRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "product_id must be a UUID")
		return
	}

	q, err := h.pricingService.CalculatePrice(r.Context(), pricing.RawSelection{
		ProductID:  productID,
		Style:      req.Style,
		Material:   req.Material,
		DesignType: req.DesignType,
		Color:      req.Color,
		Size:       req.Size,
		Quantity:   req.Quantity,
		CustomText: req.CustomText,
		Placement:  req.Placement,
		ImageURL:   req.ImageURL,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	resp := calculatePriceResponse{UnitPrice: q.UnitPrice.StringFixed(2)}
	if q.RuleID != nil {
		id := q.RuleID.String()
		resp.RuleID = &id
	}
	h.respondJSON(w, r, http.StatusOK, resp)
}
