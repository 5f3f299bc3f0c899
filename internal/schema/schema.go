// Package schema declares the expected output shape of every extraction task.
// The validator is driven entirely by these declarations; nothing else in the
// service may interpret model output directly.
package schema

// Task identifiers.
const (
	TaskProductScan = "product_scan"
	TaskReceiptScan = "receipt_scan"
	TaskChatAction  = "chat_action"
	TaskAnomalyScan = "anomaly_scan"
)

// Action discriminator values for the chat_action task.
const (
	ActionSaveTransaction = "save_transaction"
	ActionUpdateStock     = "update_stock"
)

// Kind is the primitive type of a declared field.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindArray   Kind = "array"
)

// Field declares one payload field.
type Field struct {
	Name       string
	Kind       Kind
	Required   bool
	Default    string   // applied to optional string fields when absent
	Enum       []string // allowed values for string fields, empty = any
	Positive   bool     // numeric fields: must be > 0
	NonZero    bool     // numeric fields: must be != 0
	Elem       []Field  // element shape for array fields; nil means array of strings
	AllowEmpty bool     // array fields: zero items is a valid result
}

// Schema is one task's declared payload shape. Exactly one of Fields or Items
// is set: Fields when the payload root is an object, Items when it is an
// array of objects.
type Schema struct {
	Task       string
	Fields     []Field
	Items      []Field
	AllowEmpty bool // array roots / array fields: zero items is a valid result
}

var productScan = Schema{
	Task: TaskProductScan,
	Fields: []Field{
		{Name: "products", Kind: KindArray, Required: true, Elem: []Field{
			{Name: "name", Kind: KindString, Required: true},
			{Name: "stock", Kind: KindInteger},
			{Name: "price", Kind: KindNumber},
			{Name: "unit", Kind: KindString, Default: "pcs"},
		}},
	},
}

var receiptScan = Schema{
	Task: TaskReceiptScan,
	Fields: []Field{
		{Name: "date", Kind: KindString, Required: true},
		{Name: "items", Kind: KindArray, Required: true, Elem: []Field{
			{Name: "name", Kind: KindString, Required: true},
			{Name: "price", Kind: KindNumber, Required: true},
			{Name: "quantity", Kind: KindInteger},
			{Name: "total", Kind: KindNumber},
		}},
		{Name: "merchant", Kind: KindString, Required: true},
		{Name: "total_amount", Kind: KindNumber, Required: true},
	},
}

// chatAction covers only the discriminator; the per-action shapes live in
// actionShapes and are selected after the discriminator is read.
var chatAction = Schema{
	Task: TaskChatAction,
	Fields: []Field{
		{Name: "action", Kind: KindString, Required: true,
			Enum: []string{ActionSaveTransaction, ActionUpdateStock}},
	},
}

var anomalyScan = Schema{
	Task:       TaskAnomalyScan,
	AllowEmpty: true,
	Items: []Field{
		{Name: "title", Kind: KindString, Required: true},
		{Name: "description", Kind: KindString, Required: true},
		{Name: "severity", Kind: KindString, Required: true, Enum: []string{"high", "medium", "low"}},
		{Name: "recommendation", Kind: KindString},
		{Name: "impact", Kind: KindString},
		{Name: "suggestedActions", Kind: KindArray, AllowEmpty: true},
		{Name: "amount", Kind: KindNumber},
	},
}

var registry = map[string]Schema{
	TaskProductScan: productScan,
	TaskReceiptScan: receiptScan,
	TaskChatAction:  chatAction,
	TaskAnomalyScan: anomalyScan,
}

var actionShapes = map[string][]Field{
	ActionSaveTransaction: {
		{Name: "type", Kind: KindString, Required: true, Enum: []string{"in", "out"}},
		{Name: "amount", Kind: KindNumber, Required: true, Positive: true},
		{Name: "description", Kind: KindString, Required: true},
		{Name: "category", Kind: KindString, Default: "Lainnya"},
	},
	ActionUpdateStock: {
		{Name: "product_name", Kind: KindString, Required: true},
		{Name: "quantity_change", Kind: KindInteger, Required: true, NonZero: true},
	},
}

// Lookup returns the schema for a task.
func Lookup(task string) (Schema, bool) {
	s, ok := registry[task]
	return s, ok
}

// ActionShape returns the payload shape for a chat_action discriminator value.
func ActionShape(action string) ([]Field, bool) {
	f, ok := actionShapes[action]
	return f, ok
}
