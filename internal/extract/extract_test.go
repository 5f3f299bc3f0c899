package extract

import (
	"encoding/json"
	"testing"
)

func TestFind_LabeledFence(t *testing.T) {
	reply := "Here is what I found:\n```json\n{\"action\":\"update_stock\",\"product_name\":\"Kopi\",\"quantity_change\":-2}\n```\nLet me know if that looks right."

	payload, ok := Find(reply)
	if !ok {
		t.Fatal("expected payload")
	}

	var m map[string]any
	if err := json.Unmarshal(payload, &m); err != nil {
		t.Fatalf("payload does not parse: %v", err)
	}
	if m["action"] != "update_stock" {
		t.Errorf("expected update_stock, got %v", m["action"])
	}
}

func TestFind_BareObject(t *testing.T) {
	reply := `Baik, saya catat. {"action":"save_transaction","type":"in","amount":50000,"description":"jual kopi","category":"Penjualan"}`

	payload, ok := Find(reply)
	if !ok {
		t.Fatal("expected payload")
	}
	var m map[string]any
	if err := json.Unmarshal(payload, &m); err != nil {
		t.Fatalf("payload does not parse: %v", err)
	}
	if m["amount"] != float64(50000) {
		t.Errorf("expected amount 50000, got %v", m["amount"])
	}
}

func TestFind_BareArray(t *testing.T) {
	reply := `[{"title":"Spike","severity":"high","description":"unusual expense"}]`

	payload, ok := Find(reply)
	if !ok {
		t.Fatal("expected payload")
	}
	var items []map[string]any
	if err := json.Unmarshal(payload, &items); err != nil {
		t.Fatalf("payload does not parse: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected 1 item, got %d", len(items))
	}
}

func TestFind_PureProse(t *testing.T) {
	reply := "Penjualan hari ini bagus, total Rp150.000 dari 8 transaksi."

	if _, ok := Find(reply); ok {
		t.Error("expected no payload in prose reply")
	}
}

func TestFind_BrokenJSON(t *testing.T) {
	reply := "```json\n{\"action\": \"save_transaction\", \"amount\":\n```"

	if _, ok := Find(reply); ok {
		t.Error("expected no payload for unparseable candidate")
	}
}

func TestFind_FencePreferredOverBareSpan(t *testing.T) {
	reply := "{\"ignored\":true} text\n```json\n{\"picked\":true}\n```"

	payload, ok := Find(reply)
	if !ok {
		t.Fatal("expected payload")
	}
	var m map[string]bool
	if err := json.Unmarshal(payload, &m); err != nil {
		t.Fatalf("payload does not parse: %v", err)
	}
	if !m["picked"] {
		t.Errorf("expected fenced block to win, got %s", payload)
	}
}

func TestFind_BrokenFenceFallsThroughToBareSpan(t *testing.T) {
	reply := "```json\nnot json at all\n``` but later {\"ok\":true} appears"

	payload, ok := Find(reply)
	if !ok {
		t.Fatal("expected payload from bare-span fallback")
	}
	var m map[string]bool
	if err := json.Unmarshal(payload, &m); err != nil {
		t.Fatalf("payload does not parse: %v", err)
	}
	if !m["ok"] {
		t.Errorf("unexpected payload %s", payload)
	}
}

func TestFind_BracesInsideStrings(t *testing.T) {
	reply := `prefix {"description":"curly } inside","amount":10} suffix`

	payload, ok := Find(reply)
	if !ok {
		t.Fatal("expected payload")
	}
	var m map[string]any
	if err := json.Unmarshal(payload, &m); err != nil {
		t.Fatalf("payload does not parse: %v", err)
	}
	if m["description"] != "curly } inside" {
		t.Errorf("string-aware scan failed, got %v", m["description"])
	}
}
