package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/db"
	"github.com/atelierhq/atelier/internal/pricing"
	"github.com/atelierhq/atelier/internal/services"
)

type orderItemRequest struct {
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

type createOrderRequest struct {
	Customer struct {
		FullName string `json:"full_name" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Phone    string `json:"phone" validate:"required"`
		Address  string `json:"address" validate:"required"`
		Notes    string `json:"notes"`
	} `json:"customer" validate:"required"`
	Items []orderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreateOrder submits a checkout. Prices are resolved again server-side; the
// client never supplies amounts.
func (h *Handlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	items := make([]pricing.RawSelection, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			h.respondError(w, r, http.StatusBadRequest, "product_id must be a UUID")
			return
		}
		items = append(items, pricing.RawSelection{
			ProductID:  productID,
			Style:      item.Style,
			Material:   item.Material,
			DesignType: item.DesignType,
			Color:      item.Color,
			Size:       item.Size,
			Quantity:   item.Quantity,
			CustomText: item.CustomText,
			Placement:  item.Placement,
			ImageURL:   item.ImageURL,
		})
	}

	order, err := h.orderService.CreateOrder(r.Context(), services.CreateOrderInput{
		Customer: db.CustomerInfo{
			FullName: strings.TrimSpace(req.Customer.FullName),
			Email:    strings.TrimSpace(req.Customer.Email),
			Phone:    strings.TrimSpace(req.Customer.Phone),
			Address:  strings.TrimSpace(req.Customer.Address),
			Notes:    strings.TrimSpace(req.Customer.Notes),
		},
		Items: items,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.respondJSON(w, r, http.StatusCreated, order)
}

func (h *Handlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	status := db.OrderStatus(strings.TrimSpace(query.Get("status")))
	limit := queryInt(query.Get("limit"), 50)
	offset := queryInt(query.Get("offset"), 0)

	orders, err := h.orderService.ListOrders(r.Context(), status, limit, offset)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), orderID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, order)
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req updateOrderStatusRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.orderService.UpdateStatus(r.Context(), orderID, db.OrderStatus(req.Status))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, order)
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
