package summary

import (
	"bytes"
	"fmt"
	"html/template"
	"math/rand"
	"strings"
	"time"

	"chem-purchase-assistant/models"
	"chem-purchase-assistant/utils"
)

// Data holds everything shown in a rendered order summary
type Data struct {
	SupplierName      string
	OrderDate         string
	Items             []string
	EstimatedDelivery string
	TotalPrice        string
	OrderID           string
}

const summaryTemplate = `<div class="order-summary">
  <div class="order-summary-header">
    <div class="order-summary-icon">📋</div>
    <h3>Chemical Order Summary</h3>
  </div>
  <p><strong>Supplier:</strong> <span class="supplier">{{.SupplierName}}</span></p>
  <p><strong>Order Date:</strong> <span class="order-date">{{.OrderDate}}</span></p>
  <p><strong>Items Ordered:</strong></p>
  <ul class="order-items">
    {{- range .Items}}
    <li>{{.}}</li>
    {{- end}}
  </ul>
  <p><strong>Estimated Delivery:</strong> <span class="estimated-delivery">{{.EstimatedDelivery}}</span></p>
  <p><strong>Order Status:</strong> <span class="order-status">✅ Successfully Placed</span></p>
  <div class="order-summary-footer">
    <div><strong>Total Price:</strong> <span class="total-price">¥{{.TotalPrice}}</span></div>
    <div class="order-id">Order ID: {{.OrderID}}</div>
  </div>
</div>`

var tmpl = template.Must(template.New("order-summary").Parse(summaryTemplate))

// Build turns a purchase response into summary data. Missing order ID and
// delivery estimate are generated locally; a missing total shows as 0.00.
func Build(supplierCode, supplierName string, result *models.PurchaseOrderResult, now time.Time, rng *rand.Rand) Data {
	if result == nil {
		result = &models.PurchaseOrderResult{}
	}
	if strings.TrimSpace(supplierName) == "" {
		supplierName = utils.SupplierName(supplierCode)
	}

	orderID := result.OrderID
	if orderID == "" {
		orderID = utils.GenerateOrderID(supplierCode, now, rng)
	}

	delivery := result.EstimatedDelivery
	if delivery == "" {
		delivery = utils.FormatBusinessDays(utils.EstimatedDeliveryDays(supplierCode, rng))
	}

	items := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, ItemLine(item))
	}

	return Data{
		SupplierName:      supplierName,
		OrderDate:         utils.FormatOrderDate(now),
		Items:             items,
		EstimatedDelivery: delivery,
		TotalPrice:        utils.FormatAmount(result.TotalPrice),
		OrderID:           orderID,
	}
}

// ItemLine formats one ordered item:
// plain strings as-is, objects as "[qty ]name[ (CAS: x)][ - ¥price]".
func ItemLine(item models.OrderItem) string {
	if item.IsText() {
		return item.Text
	}
	if !item.Valid() {
		return "Invalid item data"
	}

	var b strings.Builder
	if item.Quantity != "" {
		b.WriteString(item.Quantity)
		b.WriteByte(' ')
	}
	b.WriteString(item.Name)
	if item.CAS != "" {
		fmt.Fprintf(&b, " (CAS: %s)", item.CAS)
	}
	if item.Price != nil {
		b.WriteString(" - ")
		b.WriteString(utils.FormatYuan(*item.Price))
	}
	return b.String()
}

// Render renders the summary as an HTML fragment
func Render(data Data) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute summary template: %w", err)
	}
	return buf.String(), nil
}

// Document wraps a rendered fragment in a standalone HTML page for printing
func Document(fragment string) string {
	return `<!DOCTYPE html><html><head><meta charset="utf-8"><title>Chemical Order Summary</title>` +
		`<style>body{font-family:sans-serif;margin:24px;color:#1f2937}` +
		`.order-summary{border:1px solid #e5e7eb;border-radius:8px;padding:16px;max-width:640px}` +
		`.order-summary-footer{display:flex;justify-content:space-between;border-top:1px solid #e5e7eb;padding-top:8px}` +
		`.order-status{color:#059669;font-weight:500}</style></head><body>` +
		fragment + `</body></html>`
}

// NotificationText is the one-line message used when the summary cannot be posted
func NotificationText(data Data) string {
	return fmt.Sprintf("Order placed! ID: %s. Total: ¥%s", data.OrderID, data.TotalPrice)
}
