package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// candidateShape is the only accepted shape for an imported quote.
// Pointer fields distinguish a missing key from an empty string.
type candidateShape struct {
	Text     *string `json:"text"`
	Category *string `json:"category"`
}

// ShapeResult is the typed outcome of checking one import candidate.
type ShapeResult struct {
	Quote  Quote
	Valid  bool
	Reason string
}

// CheckShape reports whether raw is a JSON object of the form
// {"text": string, "category": string} with non-blank values.
func CheckShape(raw json.RawMessage) ShapeResult {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ShapeResult{Reason: "not an object"}
	}

	var shape candidateShape
	if err := json.Unmarshal(trimmed, &shape); err != nil {
		return ShapeResult{Reason: "text and category must be strings"}
	}

	text, category := present(shape.Text), present(shape.Category)
	if text == "" || category == "" {
		return ShapeResult{Reason: "text and category are required"}
	}

	return ShapeResult{
		Quote: Quote{Text: text, Category: category},
		Valid: true,
	}
}

// present returns the trimmed value, or "" for a missing key.
func present(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}
