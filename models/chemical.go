package models

// ChemicalLineItem represents one line of the chemical list typed by the user.
// Example: "500g Sodium Chloride (NaCl)" parses to
// {"text": "500g Sodium Chloride (NaCl)", "quantity": "500g", "name": "Sodium Chloride", "formula": "NaCl"}
type ChemicalLineItem struct {
	RawText  string `json:"text"`
	Quantity string `json:"quantity,omitempty"`
	Name     string `json:"name,omitempty"`
	Formula  string `json:"formula,omitempty"`
}

// RawTexts returns the original trimmed lines, in order
func RawTexts(items []ChemicalLineItem) []string {
	texts := make([]string, 0, len(items))
	for _, item := range items {
		texts = append(texts, item.RawText)
	}
	return texts
}
