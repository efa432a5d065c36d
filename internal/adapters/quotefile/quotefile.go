// Package quotefile is the JSON wire format for quote collections.
// The same flat {text, category} array is used for the durable "quotes" key,
// file export and import, and the body pushed to the remote endpoint.
package quotefile

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jsamuelsen/quote-generator/internal/domain"
)

// FileName is the suggested name for exported collections.
const FileName = "quotes.json"

// Record is the serialized form of a domain.Quote.
type Record struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// Envelope is the wrapped import form and the remote push body.
type Envelope struct {
	Quotes []Record `json:"quotes"`
}

// rawEnvelope keeps elements undecoded so each one can be shape-checked.
type rawEnvelope struct {
	Quotes []json.RawMessage `json:"quotes"`
}

// FromDomain converts quotes to records, preserving order.
func FromDomain(quotes []domain.Quote) []Record {
	out := make([]Record, len(quotes))
	for i, q := range quotes {
		out[i] = Record{Text: q.Text, Category: q.Category}
	}
	return out
}

// ToDomain converts records to quotes without validation.
func ToDomain(records []Record) []domain.Quote {
	out := make([]domain.Quote, len(records))
	for i, r := range records {
		out[i] = domain.Quote{Text: r.Text, Category: r.Category}
	}
	return out
}

// Marshal encodes quotes as a compact JSON array.
func Marshal(quotes []domain.Quote) ([]byte, error) {
	data, err := json.Marshal(FromDomain(quotes))
	if err != nil {
		return nil, fmt.Errorf("encoding quotes: %w", err)
	}
	return data, nil
}

// MarshalPretty encodes quotes as a JSON array indented by two spaces.
func MarshalPretty(quotes []domain.Quote) ([]byte, error) {
	data, err := json.MarshalIndent(FromDomain(quotes), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding quotes: %w", err)
	}
	return data, nil
}

// MarshalEnvelope encodes quotes wrapped as {"quotes": [...]}.
func MarshalEnvelope(quotes []domain.Quote) ([]byte, error) {
	data, err := json.Marshal(Envelope{Quotes: FromDomain(quotes)})
	if err != nil {
		return nil, fmt.Errorf("encoding quotes: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a flat JSON array of quotes.
// Elements are not validated; callers decide what counts as well-formed.
func Unmarshal(data []byte) ([]domain.Quote, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding quotes: %w", err)
	}
	return ToDomain(records), nil
}

// ParseImport accepts either a bare array or {"quotes": [...]} and returns
// the undecoded candidates for shape checking.
// Anything else is a ValidationError "invalid JSON structure".
func ParseImport(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, invalidStructure()
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, invalidStructure()
		}
		return items, nil

	case '{':
		var env rawEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil || env.Quotes == nil {
			return nil, invalidStructure()
		}
		return env.Quotes, nil

	default:
		return nil, invalidStructure()
	}
}

func invalidStructure() error {
	return domain.NewValidationError("file", "invalid JSON structure")
}
