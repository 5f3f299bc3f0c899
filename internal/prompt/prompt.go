// Package prompt compiles outbound model requests: system instructions, the
// rendered business context, and the conversation history. Compilation is a
// pure function of its inputs and always produces a request; schema
// conformance of the reply is checked downstream.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/smartkas-app/kasai/internal/ledger"
)

// Message is one entry in the outbound message sequence.
type Message struct {
	Role     string // "system", "user" or "assistant"
	Content  string
	ImageURL string // attached to the final user message when set
}

// Turn is one prior conversation turn as seen by the caller.
type Turn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

const chatSystemPrompt = `You are SmartKas, a helpful AI assistant for a small business owner.

CONTEXT DATA:
%s

CAPABILITIES:
You can answer questions about the data above.
You can also PERFORM ACTIONS by outputting a JSON block.

ACTIONS AVAILABLE:
1. Save Transaction:
   If the user wants to record a transaction (expense/income/sale), return JSON:
   ` + "```json" + `
   {
     "action": "save_transaction",
     "type": "in" | "out",
     "amount": number,
     "description": "string",
     "category": "Penjualan" | "Operasional" | "Lainnya"
   }
   ` + "```" + `

2. Update Stock:
   If the user wants to add/reduce stock, return JSON:
   ` + "```json" + `
   {
     "action": "update_stock",
     "product_name": "exact name from list",
     "quantity_change": number (positive to add, negative to reduce)
   }
   ` + "```" + `

RULES:
- If performing an action, output ONLY the JSON block. Do not add chat text.
- If just chatting, do NOT output JSON.
- Speak Indonesian.
- Be concise.`

// Chat builds the message sequence for one conversational turn.
func Chat(snap ledger.Snapshot, history []Turn, message, imageURL string) []Message {
	msgs := make([]Message, 0, len(history)+2)
	msgs = append(msgs, Message{
		Role:    "system",
		Content: fmt.Sprintf(chatSystemPrompt, RenderSnapshot(snap)),
	})
	for _, t := range history {
		role := "user"
		if t.Role == "assistant" {
			role = "assistant"
		}
		msgs = append(msgs, Message{Role: role, Content: t.Content})
	}
	msgs = append(msgs, Message{Role: "user", Content: message, ImageURL: imageURL})
	return msgs
}

// RenderSnapshot renders the context snapshot as plain text. Every catalog
// entry is included; the transaction window is capped at
// ledger.SnapshotTransactionCap, most-recent-first.
func RenderSnapshot(snap ledger.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "CURRENT TIME: %s\n\n", snap.Now.Format("02/01/2006 15:04"))

	b.WriteString("PRODUCTS & STOCK:\n")
	for _, p := range snap.Products {
		fmt.Fprintf(&b, "- %s: %d %s (Rp%.0f)\n", p.Name, p.Stock, p.Unit, p.Price)
	}

	b.WriteString("\nRECENT TRANSACTIONS:\n")
	txs := snap.Transactions
	if len(txs) > ledger.SnapshotTransactionCap {
		txs = txs[:ledger.SnapshotTransactionCap]
	}
	for _, t := range txs {
		desc := t.Description
		if desc == "" {
			desc = "No Desc"
		}
		fmt.Fprintf(&b, "- %s: %s Rp%.0f (%s)\n",
			t.Date.Format("2006-01-02"), strings.ToUpper(t.Type), t.Amount, desc)
	}

	return b.String()
}

const anomalySystemPrompt = `You are a financial fraud detection expert.`

const anomalyUserPrompt = `Analyze the following transactions for anomalies (fraud, unusual spending, spikes, etc.):
%s

Return a JSON array of anomalies found. Each object should have:
- title: Short title of the anomaly
- description: Detailed description
- severity: 'high', 'medium', or 'low'
- recommendation: Actionable advice
- impact: Potential financial impact
- suggestedActions: Array of strings (actions to take)
- amount: The amount involved (if applicable)

If no anomalies are found, return an empty array [].
Output ONLY the JSON array.`

// anomalyTransaction is the trimmed transaction view sent to the model.
type anomalyTransaction struct {
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
}

// Anomaly builds the message sequence for an anomaly scan over recent
// transactions.
func Anomaly(txs []ledger.Transaction) []Message {
	simplified := make([]anomalyTransaction, 0, len(txs))
	for _, t := range txs {
		simplified = append(simplified, anomalyTransaction{
			Date:        t.Date.Format("2006-01-02"),
			Amount:      t.Amount,
			Type:        t.Type,
			Category:    t.Category,
			Description: t.Description,
		})
	}
	data, _ := json.Marshal(simplified)

	return []Message{
		{Role: "system", Content: anomalySystemPrompt},
		{Role: "user", Content: fmt.Sprintf(anomalyUserPrompt, data)},
	}
}
