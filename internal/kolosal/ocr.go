package kolosal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/smartkas-app/kasai/internal/schema"
)

type ocrRequest struct {
	AutoFix      bool         `json:"auto_fix"`
	CustomSchema customSchema `json:"custom_schema"`
	ImageData    string       `json:"image_data"`
	Invoice      bool         `json:"invoice"`
	Language     string       `json:"language"`
}

type customSchema struct {
	Name   string         `json:"name"`
	Schema map[string]any `json:"schema"`
	Strict bool           `json:"strict"`
}

type ocrError struct {
	Message string `json:"message"`
}

// ScanImage runs the OCR endpoint against a base64 image with the task's
// declared schema attached. The response body is the structured payload; it
// still passes through the validator before anything trusts it.
func (c *Client) ScanImage(ctx context.Context, task, imageData string) (json.RawMessage, error) {
	s, ok := schema.Lookup(task)
	if !ok {
		return nil, fmt.Errorf("unknown task %q", task)
	}

	body, err := json.Marshal(ocrRequest{
		AutoFix: true,
		CustomSchema: customSchema{
			Name:   task,
			Schema: jsonSchema(s),
			Strict: true,
		},
		ImageData: imageData,
		Language:  "auto",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal ocr request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ocr", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create ocr request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ocr call: %v: %w", err, ErrUnavailable)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read ocr response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("ocr: %w", ErrRateLimited)
	case resp.StatusCode != http.StatusOK:
		var errResp ocrError
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Message != "" {
			return nil, fmt.Errorf("ocr error %d: %s: %w", resp.StatusCode, errResp.Message, ErrUnavailable)
		}
		return nil, fmt.Errorf("ocr error %d: %w", resp.StatusCode, ErrUnavailable)
	}

	return json.RawMessage(respBody), nil
}

// jsonSchema renders a registry schema as a JSON Schema document for the OCR
// endpoint's custom_schema parameter.
func jsonSchema(s schema.Schema) map[string]any {
	if s.Items != nil {
		return map[string]any{
			"type":  "array",
			"items": objectSchema(s.Items),
		}
	}
	return objectSchema(s.Fields)
}

func objectSchema(fields []schema.Field) map[string]any {
	props := make(map[string]any, len(fields))
	var required []string
	for _, f := range fields {
		props[f.Name] = fieldSchema(f)
		if f.Required {
			required = append(required, f.Name)
		}
	}
	out := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

func fieldSchema(f schema.Field) map[string]any {
	switch f.Kind {
	case schema.KindNumber, schema.KindInteger:
		return map[string]any{"type": "number"}
	case schema.KindArray:
		if f.Elem == nil {
			return map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
		}
		return map[string]any{"type": "array", "items": objectSchema(f.Elem)}
	default:
		out := map[string]any{"type": "string"}
		if len(f.Enum) > 0 {
			out["enum"] = f.Enum
		}
		return out
	}
}
