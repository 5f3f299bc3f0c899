package validate

import (
	"encoding/json"
	"errors"
	"testing"
)

func violationField(t *testing.T, err error) string {
	t.Helper()
	var sv *SchemaViolation
	if !errors.As(err, &sv) {
		t.Fatalf("expected SchemaViolation, got %v", err)
	}
	return sv.Field
}

func TestProducts_RoundTrip(t *testing.T) {
	payload := json.RawMessage(`{"products":[{"name":"Kopi Susu","stock":10,"price":18000,"unit":"cup"}]}`)

	rows, err := Products(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Unit != "cup" {
		t.Errorf("expected unit cup, got %q", rows[0].Unit)
	}
	if rows[0].Stock != 10 || rows[0].Price != 18000 {
		t.Errorf("unexpected row: %+v", rows[0])
	}
}

func TestProducts_UnitDefaultsToPcs(t *testing.T) {
	payload := json.RawMessage(`{"products":[{"name":"Kopi Susu","stock":10,"price":18000}]}`)

	rows, err := Products(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows[0].Unit != "pcs" {
		t.Errorf("expected default unit pcs, got %q", rows[0].Unit)
	}
}

func TestProducts_NumericStringsCoerced(t *testing.T) {
	payload := json.RawMessage(`{"products":[{"name":"Teh Botol","stock":"24","price":"5000"}]}`)

	rows, err := Products(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows[0].Stock != 24 {
		t.Errorf("expected stock 24, got %d", rows[0].Stock)
	}
	if rows[0].Price != 5000 {
		t.Errorf("expected price 5000, got %f", rows[0].Price)
	}
}

func TestProducts_MissingRequiredNameNamesField(t *testing.T) {
	payload := json.RawMessage(`{"products":[{"stock":10}]}`)

	_, err := Products(payload)
	if err == nil {
		t.Fatal("expected error")
	}
	if field := violationField(t, err); field != "products[0].name" {
		t.Errorf("expected violation on products[0].name, got %q", field)
	}
}

func TestProducts_MissingProductsRejected(t *testing.T) {
	_, err := Products(json.RawMessage(`{}`))
	if err == nil {
		t.Fatal("expected error")
	}
	if field := violationField(t, err); field != "products" {
		t.Errorf("expected violation on products, got %q", field)
	}
}

func TestReceiptScan_Valid(t *testing.T) {
	payload := json.RawMessage(`{
		"date": "2026-08-30",
		"items": [{"name":"Gula","price":12000,"quantity":2,"total":24000}],
		"merchant": "Toko Makmur",
		"total_amount": 24000
	}`)

	r, err := ReceiptScan(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Merchant != "Toko Makmur" {
		t.Errorf("expected merchant, got %q", r.Merchant)
	}
	if len(r.Items) != 1 || r.Items[0].Price != 12000 {
		t.Errorf("unexpected items: %+v", r.Items)
	}
}

func TestReceiptScan_MissingMerchant(t *testing.T) {
	payload := json.RawMessage(`{"date":"2026-08-30","items":[{"name":"Gula","price":12000}],"total_amount":24000}`)

	_, err := ReceiptScan(payload)
	if err == nil {
		t.Fatal("expected error")
	}
	if field := violationField(t, err); field != "merchant" {
		t.Errorf("expected violation on merchant, got %q", field)
	}
}

func TestChatAction_SaveTransaction(t *testing.T) {
	payload := json.RawMessage(`{"action":"save_transaction","type":"in","amount":"25000","description":"jual 2 kopi"}`)

	action, err := ChatAction(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	save, ok := action.(SaveTransaction)
	if !ok {
		t.Fatalf("expected SaveTransaction, got %T", action)
	}
	if save.Amount != 25000 {
		t.Errorf("expected amount 25000, got %f", save.Amount)
	}
	if save.Category != "Lainnya" {
		t.Errorf("expected default category Lainnya, got %q", save.Category)
	}
}

func TestChatAction_UpdateStock(t *testing.T) {
	payload := json.RawMessage(`{"action":"update_stock","product_name":"kopi susu","quantity_change":-2}`)

	action, err := ChatAction(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	upd, ok := action.(UpdateStock)
	if !ok {
		t.Fatalf("expected UpdateStock, got %T", action)
	}
	if upd.QuantityChange != -2 {
		t.Errorf("expected delta -2, got %d", upd.QuantityChange)
	}
}

func TestChatAction_UnrecognizedAction(t *testing.T) {
	payload := json.RawMessage(`{"action":"delete_everything"}`)

	_, err := ChatAction(payload)
	if err == nil {
		t.Fatal("expected error")
	}
	if field := violationField(t, err); field != "action" {
		t.Errorf("expected violation on action, got %q", field)
	}
}

func TestChatAction_InvalidType(t *testing.T) {
	payload := json.RawMessage(`{"action":"save_transaction","type":"sideways","amount":100,"description":"x"}`)

	_, err := ChatAction(payload)
	if err == nil {
		t.Fatal("expected error")
	}
	if field := violationField(t, err); field != "type" {
		t.Errorf("expected violation on type, got %q", field)
	}
}

func TestChatAction_NonPositiveAmount(t *testing.T) {
	payload := json.RawMessage(`{"action":"save_transaction","type":"out","amount":0,"description":"x"}`)

	_, err := ChatAction(payload)
	if err == nil {
		t.Fatal("expected error")
	}
	if field := violationField(t, err); field != "amount" {
		t.Errorf("expected violation on amount, got %q", field)
	}
}

func TestChatAction_NonFiniteAmount(t *testing.T) {
	for _, raw := range []string{`"NaN"`, `"Inf"`, `"+Inf"`, `"-Inf"`} {
		payload := json.RawMessage(`{"action":"save_transaction","type":"out","amount":` + raw + `,"description":"x"}`)

		_, err := ChatAction(payload)
		if err == nil {
			t.Fatalf("expected error for amount %s", raw)
		}
		if field := violationField(t, err); field != "amount" {
			t.Errorf("expected violation on amount for %s, got %q", raw, field)
		}
	}
}

func TestChatAction_ZeroQuantityChange(t *testing.T) {
	payload := json.RawMessage(`{"action":"update_stock","product_name":"kopi","quantity_change":0}`)

	_, err := ChatAction(payload)
	if err == nil {
		t.Fatal("expected error")
	}
	if field := violationField(t, err); field != "quantity_change" {
		t.Errorf("expected violation on quantity_change, got %q", field)
	}
}

func TestChatAction_MissingRequiredNotDefaulted(t *testing.T) {
	payload := json.RawMessage(`{"action":"save_transaction","type":"in","amount":100}`)

	_, err := ChatAction(payload)
	if err == nil {
		t.Fatal("expected error for missing description")
	}
	if field := violationField(t, err); field != "description" {
		t.Errorf("expected violation on description, got %q", field)
	}
}

func TestAnomalies_EmptyArrayIsClean(t *testing.T) {
	anomalies, err := Anomalies(json.RawMessage(`[]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(anomalies) != 0 {
		t.Errorf("expected no anomalies, got %d", len(anomalies))
	}
}

func TestAnomalies_Valid(t *testing.T) {
	payload := json.RawMessage(`[{
		"title": "Expense spike",
		"description": "Operational costs tripled in one day",
		"severity": "high",
		"recommendation": "Review vendor invoices",
		"impact": "Rp2.000.000",
		"suggestedActions": ["Audit receipts", "Call vendor"],
		"amount": 2000000
	}]`)

	anomalies, err := Anomalies(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(anomalies) != 1 {
		t.Fatalf("expected 1 anomaly, got %d", len(anomalies))
	}
	if anomalies[0].Severity != "high" {
		t.Errorf("expected severity high, got %q", anomalies[0].Severity)
	}
	if len(anomalies[0].SuggestedActions) != 2 {
		t.Errorf("expected 2 suggested actions, got %d", len(anomalies[0].SuggestedActions))
	}
}

func TestAnomalies_BadSeverity(t *testing.T) {
	payload := json.RawMessage(`[{"title":"x","description":"y","severity":"catastrophic"}]`)

	_, err := Anomalies(payload)
	if err == nil {
		t.Fatal("expected error")
	}
	if field := violationField(t, err); field != "[0].severity" {
		t.Errorf("expected violation on [0].severity, got %q", field)
	}
}

func TestApply_ObjectRootRejectsArray(t *testing.T) {
	_, err := ChatAction(json.RawMessage(`[1,2,3]`))
	if err == nil {
		t.Fatal("expected error for array payload against object schema")
	}
}
