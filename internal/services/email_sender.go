package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/db"
	"github.com/atelierhq/atelier/internal/email"
)

type OrderEmailSender interface {
	SendOrderConfirmation(ctx context.Context, order *db.Order, productNames map[uuid.UUID]string) error
	SendOrderShipped(ctx context.Context, order *db.Order) error
}

// EmailOrderSender renders and sends order lifecycle emails through the
// configured email provider.
type EmailOrderSender struct {
	provider  email.Provider
	storeName string
	storeURL  string
}

func NewEmailOrderSender(provider email.Provider, storeName, storeURL string) *EmailOrderSender {
	return &EmailOrderSender{
		provider:  provider,
		storeName: storeName,
		storeURL:  storeURL,
	}
}

func (s *EmailOrderSender) SendOrderConfirmation(ctx context.Context, order *db.Order, productNames map[uuid.UUID]string) error {
	return email.SendOrderConfirmation(ctx, s.provider, s.buildOrderInfo(order, productNames))
}

func (s *EmailOrderSender) SendOrderShipped(ctx context.Context, order *db.Order) error {
	return email.SendOrderShipped(ctx, s.provider, s.buildOrderInfo(order, nil))
}

func (s *EmailOrderSender) buildOrderInfo(order *db.Order, productNames map[uuid.UUID]string) *email.OrderInfo {
	info := &email.OrderInfo{
		OrderCode:     order.OrderCode,
		CustomerName:  order.CustomerInfo.FullName,
		CustomerEmail: order.CustomerInfo.Email,
		OrderDate:     order.CreatedAt.Format("January 2, 2006"),
		Total:         "$" + order.TotalAmount.StringFixed(2),
		StoreName:     s.storeName,
		StoreURL:      s.storeURL,
	}

	for _, item := range order.Items {
		name := productNames[item.ProductID]
		if name == "" {
			name = "Custom item"
		}
		info.Items = append(info.Items, email.OrderItemInfo{
			ProductName: name,
			Options:     describeDesign(item.DesignDetails),
			Quantity:    item.Quantity,
			UnitPrice:   "$" + item.UnitPrice.StringFixed(2),
			Subtotal:    "$" + item.Subtotal.StringFixed(2),
		})
	}

	return info
}

func describeDesign(details db.DesignDetails) string {
	parts := make([]string, 0, 6)
	appendPart := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			parts = append(parts, label+": "+value)
		}
	}
	appendPart("Style", details.Style)
	appendPart("Material", details.Material)
	appendPart("Design", details.DesignType)
	appendPart("Color", details.Color)
	appendPart("Size", details.Size)
	appendPart("Text", details.CustomText)
	return strings.Join(parts, ", ")
}

type noopOrderEmailSender struct{}

func (noopOrderEmailSender) SendOrderConfirmation(context.Context, *db.Order, map[uuid.UUID]string) error {
	return nil
}

func (noopOrderEmailSender) SendOrderShipped(context.Context, *db.Order) error {
	return nil
}
