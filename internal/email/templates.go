// Package email provides email templates.
package email

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
)

// OrderInfo carries everything the order email templates need. Prices arrive
// preformatted so the templates stay arithmetic-free.
type OrderInfo struct {
	OrderCode     string
	CustomerName  string
	CustomerEmail string
	OrderDate     string
	Items         []OrderItemInfo
	Total         string
	StoreName     string
	StoreURL      string
}

// OrderItemInfo is a single line on the order summary.
type OrderItemInfo struct {
	ProductName string
	Options     string
	Quantity    int
	UnitPrice   string
	Subtotal    string
}

// Renderer provides methods to render email templates
type Renderer struct {
	templates *template.Template
}

// NewRenderer creates a new email template renderer with built-in templates
func NewRenderer() (*Renderer, error) {
	sources := map[string]string{
		"order_confirmation_html": orderConfirmationHTML,
		"order_confirmation_text": orderConfirmationText,
		"order_shipped_html":      orderShippedHTML,
		"order_shipped_text":      orderShippedText,
	}

	tmpl := template.New("email")
	for name, source := range sources {
		if _, err := tmpl.New(name).Parse(source); err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
	}

	return &Renderer{templates: tmpl}, nil
}

// Render renders an email template with the given data
func (r *Renderer) Render(ctx context.Context, templateName string, data *OrderInfo) (*Email, error) {
	_ = ctx

	var htmlBuf, textBuf bytes.Buffer

	err := r.templates.ExecuteTemplate(&htmlBuf, templateName+"_html", data)
	if err != nil {
		return nil, fmt.Errorf("failed to render HTML template: %w", err)
	}

	err = r.templates.ExecuteTemplate(&textBuf, templateName+"_text", data)
	if err != nil {
		return nil, fmt.Errorf("failed to render text template: %w", err)
	}

	subject := ""
	switch templateName {
	case "order_confirmation":
		subject = fmt.Sprintf("Order Confirmed - %s - %s", data.OrderCode, data.StoreName)
	case "order_shipped":
		subject = fmt.Sprintf("Your Order Has Shipped - %s - %s", data.OrderCode, data.StoreName)
	}

	return &Email{
		To:      data.CustomerEmail,
		Subject: subject,
		Text:    textBuf.String(),
		HTML:    htmlBuf.String(),
	}, nil
}

// SendOrderConfirmation sends an order confirmation email
func SendOrderConfirmation(ctx context.Context, p Provider, orderInfo *OrderInfo) error {
	return sendOrderEmail(ctx, p, "order_confirmation", orderInfo)
}

// SendOrderShipped sends an order shipped email
func SendOrderShipped(ctx context.Context, p Provider, orderInfo *OrderInfo) error {
	return sendOrderEmail(ctx, p, "order_shipped", orderInfo)
}

func sendOrderEmail(ctx context.Context, p Provider, templateName string, orderInfo *OrderInfo) error {
	if p == nil {
		return nil
	}

	renderer, err := NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	email, err := renderer.Render(ctx, templateName, orderInfo)
	if err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}

	return p.SendEmail(ctx, email)
}

// Template text content - Order Confirmation
const orderConfirmationText = `Thank you for your order!

Order Code: {{.OrderCode}}
Order Date: {{.OrderDate}}

Items:
{{range .Items}}
- {{.ProductName}}{{if .Options}} ({{.Options}}){{end}} x{{.Quantity}} @ {{.UnitPrice}} = {{.Subtotal}}
{{end}}

Total: {{.Total}}

We'll send you another email when your order ships. Quote your order code in
any questions about the order.

Thank you for shopping with {{.StoreName}}!
{{.StoreURL}}
`

// Template HTML content - Order Confirmation
const orderConfirmationHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Order Confirmation</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: #1f2937; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
    .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
    .order-info { background: white; padding: 15px; border-radius: 6px; margin: 15px 0; }
    .items-table { width: 100%; border-collapse: collapse; margin: 15px 0; }
    .items-table th { text-align: left; padding: 10px; background: #f3f4f6; border-bottom: 2px solid #e5e7eb; }
    .items-table td { padding: 10px; border-bottom: 1px solid #e5e7eb; }
    .total { font-size: 18px; font-weight: bold; text-align: right; padding: 15px 0; }
    .footer { text-align: center; padding: 20px; color: #6b7280; font-size: 14px; }
  </style>
</head>
<body>
  <div class="header">
    <h1>Order Confirmed!</h1>
    <p>Thank you for your order, {{.CustomerName}}</p>
  </div>
  <div class="content">
    <div class="order-info">
      <strong>Order Code:</strong> {{.OrderCode}}<br>
      <strong>Order Date:</strong> {{.OrderDate}}
    </div>

    <h3>Order Summary</h3>
    <table class="items-table">
      <thead>
        <tr>
          <th>Item</th>
          <th>Qty</th>
          <th>Unit Price</th>
          <th>Subtotal</th>
        </tr>
      </thead>
      <tbody>
        {{range .Items}}
        <tr>
          <td>{{.ProductName}}{{if .Options}} <br><small>{{.Options}}</small>{{end}}</td>
          <td>{{.Quantity}}</td>
          <td>{{.UnitPrice}}</td>
          <td>{{.Subtotal}}</td>
        </tr>
        {{end}}
      </tbody>
    </table>

    <div class="total">
      <p>Total: {{.Total}}</p>
    </div>

    <p>We'll send you another email when your order ships.</p>
  </div>
  <div class="footer">
    <p>Thank you for shopping with <a href="{{.StoreURL}}">{{.StoreName}}</a></p>
  </div>
</body>
</html>
`

// Template text content - Order Shipped
const orderShippedText = `Great news! Your order has shipped!

Order Code: {{.OrderCode}}
Shipped Date: {{.OrderDate}}

We'll let you know if there is anything else you need to do. Quote your order
code in any questions about the delivery.

Thank you for shopping with {{.StoreName}}!
{{.StoreURL}}
`

// Template HTML content - Order Shipped
const orderShippedHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Order Shipped</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: #059669; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
    .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
    .footer { text-align: center; padding: 20px; color: #6b7280; font-size: 14px; }
  </style>
</head>
<body>
  <div class="header">
    <h1>Your Order Has Shipped!</h1>
    <p>Great news, {{.CustomerName}}! Your order is on its way.</p>
  </div>
  <div class="content">
    <p><strong>Order Code:</strong> {{.OrderCode}}</p>
    <p><strong>Shipped Date:</strong> {{.OrderDate}}</p>
  </div>
  <div class="footer">
    <p>Thank you for shopping with <a href="{{.StoreURL}}">{{.StoreName}}</a></p>
  </div>
</body>
</html>
`
