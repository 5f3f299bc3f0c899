package validate

import (
	"encoding/json"

	"github.com/smartkas-app/kasai/internal/schema"
)

// ProductRow is one validated row from a product scan.
type ProductRow struct {
	Name  string  `json:"name"`
	Stock int     `json:"stock"`
	Price float64 `json:"price"`
	Unit  string  `json:"unit"`
}

// ReceiptItem is one validated line item from a receipt scan.
type ReceiptItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Total    float64 `json:"total"`
}

// Receipt is a validated receipt scan result.
type Receipt struct {
	Date        string        `json:"date"`
	Items       []ReceiptItem `json:"items"`
	Merchant    string        `json:"merchant"`
	TotalAmount float64       `json:"total_amount"`
}

// Anomaly is one validated finding from an anomaly scan.
type Anomaly struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Severity         string   `json:"severity"`
	Recommendation   string   `json:"recommendation"`
	Impact           string   `json:"impact"`
	SuggestedActions []string `json:"suggested_actions"`
	Amount           float64  `json:"amount"`
}

// Action is a validated chat-action payload, safe to branch on by type.
type Action interface {
	isAction()
}

// SaveTransaction records one cash movement.
type SaveTransaction struct {
	Type        string // "in" or "out"
	Amount      float64
	Description string
	Category    string
}

// UpdateStock adjusts one product's stock by a signed, non-zero delta.
type UpdateStock struct {
	ProductName    string
	QuantityChange int
}

func (SaveTransaction) isAction() {}
func (UpdateStock) isAction()     {}

// Products validates a product-scan payload.
func Products(payload json.RawMessage) ([]ProductRow, error) {
	s, _ := schema.Lookup(schema.TaskProductScan)
	tree, err := apply(s, payload)
	if err != nil {
		return nil, err
	}
	root := tree.(map[string]any)
	items, _ := root["products"].([]map[string]any)

	rows := make([]ProductRow, 0, len(items))
	for _, m := range items {
		rows = append(rows, ProductRow{
			Name:  getString(m, "name"),
			Stock: getInt(m, "stock"),
			Price: getFloat(m, "price"),
			Unit:  getString(m, "unit"),
		})
	}
	return rows, nil
}

// ReceiptScan validates a receipt-scan payload.
func ReceiptScan(payload json.RawMessage) (*Receipt, error) {
	s, _ := schema.Lookup(schema.TaskReceiptScan)
	tree, err := apply(s, payload)
	if err != nil {
		return nil, err
	}
	root := tree.(map[string]any)
	items, _ := root["items"].([]map[string]any)

	r := &Receipt{
		Date:        getString(root, "date"),
		Merchant:    getString(root, "merchant"),
		TotalAmount: getFloat(root, "total_amount"),
	}
	for _, m := range items {
		r.Items = append(r.Items, ReceiptItem{
			Name:     getString(m, "name"),
			Price:    getFloat(m, "price"),
			Quantity: getInt(m, "quantity"),
			Total:    getFloat(m, "total"),
		})
	}
	return r, nil
}

// ChatAction validates a chat-action payload. The "action" discriminator is
// read first; an unrecognized value is a SchemaViolation on "action", never a
// crash. The returned Action is the only value later stages may branch on.
func ChatAction(payload json.RawMessage) (Action, error) {
	s, _ := schema.Lookup(schema.TaskChatAction)
	tree, err := apply(s, payload)
	if err != nil {
		return nil, err
	}
	action := getString(tree.(map[string]any), "action")

	shape, ok := schema.ActionShape(action)
	if !ok {
		return nil, violation("action", "is not a recognized action")
	}

	var node map[string]any
	if err := json.Unmarshal(payload, &node); err != nil {
		return nil, violation("(root)", "must be an object")
	}
	fields, err := coerceObject(shape, node, "")
	if err != nil {
		return nil, err
	}

	switch action {
	case schema.ActionSaveTransaction:
		return SaveTransaction{
			Type:        getString(fields, "type"),
			Amount:      getFloat(fields, "amount"),
			Description: getString(fields, "description"),
			Category:    getString(fields, "category"),
		}, nil
	default:
		return UpdateStock{
			ProductName:    getString(fields, "product_name"),
			QuantityChange: getInt(fields, "quantity_change"),
		}, nil
	}
}

// Anomalies validates an anomaly-scan payload. An empty array is a valid
// "nothing found" result.
func Anomalies(payload json.RawMessage) ([]Anomaly, error) {
	s, _ := schema.Lookup(schema.TaskAnomalyScan)
	tree, err := apply(s, payload)
	if err != nil {
		return nil, err
	}
	items := tree.([]map[string]any)

	out := make([]Anomaly, 0, len(items))
	for _, m := range items {
		out = append(out, Anomaly{
			Title:            getString(m, "title"),
			Description:      getString(m, "description"),
			Severity:         getString(m, "severity"),
			Recommendation:   getString(m, "recommendation"),
			Impact:           getString(m, "impact"),
			SuggestedActions: getStrings(m, "suggestedActions"),
			Amount:           getFloat(m, "amount"),
		})
	}
	return out, nil
}
