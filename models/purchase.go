package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// PurchaseRequest represents the request body for submitting a purchase
// Example: {"supplier": "sigma", "items": ["500g Sodium Chloride (NaCl)", "1L Methanol"]}
type PurchaseRequest struct {
	Supplier string   `json:"supplier"`
	Items    []string `json:"items"`
}

// PurchaseOrderResult represents the order data returned by POST /chemical_purchase.
// Every field is optional; callers fill the gaps locally.
// Example response:
// {
//   "status": "success_simulated",
//   "supplier": "sigma",
//   "order_id": "ORD-SIM-48213",
//   "items": [
//     {"name": "Sodium Chloride (NaCl)", "quantity": "500g", "cas": "231-45-7", "price": 42.17}
//   ],
//   "total_price": 42.17,
//   "estimated_delivery": "4 business days (Est. 2026-10-20)",
//   "note": "Simulated response, no supplier integration."
// }
type PurchaseOrderResult struct {
	Status            string      `json:"status,omitempty"`
	Supplier          string      `json:"supplier,omitempty"`
	OrderID           string      `json:"order_id,omitempty"`
	Items             []OrderItem `json:"items,omitempty"`
	TotalPrice        *Amount     `json:"total_price,omitempty"`
	EstimatedDelivery string      `json:"estimated_delivery,omitempty"`
	Note              string      `json:"note,omitempty"`
}

// UnmarshalJSON tolerates unexpected field types: a non-array items list or
// an unreadable total is dropped, scalar text fields of any JSON type are
// kept as text. Only a body that is not an object is an error.
func (r *PurchaseOrderResult) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*r = PurchaseOrderResult{
		Status:            scalarText(fields["status"]),
		Supplier:          scalarText(fields["supplier"]),
		OrderID:           scalarText(fields["order_id"]),
		EstimatedDelivery: scalarText(fields["estimated_delivery"]),
		Note:              scalarText(fields["note"]),
	}

	var items []OrderItem
	if raw, ok := fields["items"]; ok && json.Unmarshal(raw, &items) == nil {
		r.Items = items
	}

	if raw := bytes.TrimSpace(fields["total_price"]); len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		var amount Amount
		if json.Unmarshal(raw, &amount) == nil {
			r.TotalPrice = &amount
		}
	}
	return nil
}

// scalarText reads a string, number or boolean as text; objects, arrays and null read as ""
func scalarText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] == '{' || trimmed[0] == '[' || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	return rawScalar(trimmed)
}

// OrderItem is one entry of PurchaseOrderResult.Items. The backend may send
// either a plain string or an object; both decode here.
type OrderItem struct {
	Text     string   `json:"-"`
	Name     string   `json:"name,omitempty"`
	Quantity string   `json:"quantity,omitempty"`
	CAS      string   `json:"cas,omitempty"`
	Price    *float64 `json:"price,omitempty"`

	isText  bool
	invalid bool
}

// TextItem builds a plain string item
func TextItem(text string) OrderItem {
	return OrderItem{Text: text, isText: true}
}

// IsText reports whether the item was sent as a plain string
func (i OrderItem) IsText() bool {
	return i.isText
}

// Valid reports whether the item is a string or an object carrying a name
func (i OrderItem) Valid() bool {
	if i.invalid {
		return false
	}
	return i.isText || i.Name != ""
}

// DisplayName returns the name shown while the item is added to the cart
func (i OrderItem) DisplayName() string {
	if i.isText {
		return i.Text
	}
	if !i.invalid && i.Name != "" {
		return i.Name
	}
	return "Unknown Item"
}

type orderItemObject struct {
	Name     string          `json:"name,omitempty"`
	Quantity json.RawMessage `json:"quantity,omitempty"`
	CAS      string          `json:"cas,omitempty"`
	Price    *float64        `json:"price,omitempty"`
}

// UnmarshalJSON accepts a string, an object, or anything else (kept as invalid)
func (i *OrderItem) UnmarshalJSON(data []byte) error {
	*i = OrderItem{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		i.invalid = true
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		i.Text = s
		i.isText = true
		return nil
	case '{':
		var obj orderItemObject
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			// Objects with unexpected field types are tolerated as invalid items
			i.invalid = true
			return nil
		}
		i.Name = obj.Name
		i.Quantity = rawScalar(obj.Quantity)
		i.CAS = obj.CAS
		i.Price = obj.Price
		return nil
	default:
		i.invalid = true
		return nil
	}
}

// MarshalJSON writes string items back as strings
func (i OrderItem) MarshalJSON() ([]byte, error) {
	if i.isText {
		return json.Marshal(i.Text)
	}
	if i.invalid {
		return []byte("null"), nil
	}
	return json.Marshal(orderItemObject{
		Name:     i.Name,
		Quantity: scalarRaw(i.Quantity),
		CAS:      i.CAS,
		Price:    i.Price,
	})
}

func rawScalar(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

func scalarRaw(s string) json.RawMessage {
	if s == "" {
		return nil
	}
	b, _ := json.Marshal(s)
	return b
}

// Amount holds a price that may arrive as a JSON number or as a string
type Amount struct {
	Number *float64
	Text   string
}

// NewAmount builds a numeric amount
func NewAmount(v float64) *Amount {
	return &Amount{Number: &v}
}

// UnmarshalJSON accepts numbers and strings
func (a *Amount) UnmarshalJSON(data []byte) error {
	*a = Amount{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '"' {
		return json.Unmarshal(trimmed, &a.Text)
	}
	var v float64
	if err := json.Unmarshal(trimmed, &v); err != nil {
		a.Text = string(trimmed)
		return nil
	}
	a.Number = &v
	return nil
}

// MarshalJSON writes the amount in the shape it was received
func (a Amount) MarshalJSON() ([]byte, error) {
	if a.Number != nil {
		return []byte(strconv.FormatFloat(*a.Number, 'f', -1, 64)), nil
	}
	if a.Text != "" {
		return json.Marshal(a.Text)
	}
	return []byte("null"), nil
}

// IsZero reports whether no usable amount was sent
func (a *Amount) IsZero() bool {
	if a == nil {
		return true
	}
	if a.Number != nil {
		return *a.Number == 0
	}
	return a.Text == ""
}

// ErrorResponse is the JSON error body used by every endpoint
// Example: {"error": "Authentication required"}
type ErrorResponse struct {
	Error string `json:"error"`
}

// SummaryExportRequest represents the request body for POST /chemical_purchase/summary
// Example: {"supplier": "sigma", "supplier_name": "Sigma-Aldrich", "order": {...}}
type SummaryExportRequest struct {
	Supplier     string              `json:"supplier"`
	SupplierName string              `json:"supplier_name,omitempty"`
	Order        PurchaseOrderResult `json:"order"`
}
