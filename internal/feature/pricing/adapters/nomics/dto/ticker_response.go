// Package dto defines data transfer objects for the Nomics ticker API responses.
package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TickerResponse represents the JSON array returned by the /currencies/ticker endpoint.
type TickerResponse []Ticker

// Ticker is one element of TickerResponse with every field kept as text.
//
// Strings are kept verbatim, numbers and booleans keep their literal JSON text,
// nested objects and arrays (e.g. the "1d" interval block) are kept as compact
// JSON, and null fields are dropped.
type Ticker map[string]string

// symbolField must always be a JSON string since it keys the decoded table.
const symbolField = "symbol"

// UnmarshalJSON implements json.Unmarshaler.
func (t *Ticker) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	out := make(Ticker, len(raw))
	for k, v := range raw {
		if k == symbolField && !isStringOrNull(v) {
			return fmt.Errorf("field %q: not a string", k)
		}
		s, ok, err := fieldText(v)
		if err != nil {
			return fmt.Errorf("field %q: %w", k, err)
		}
		if ok {
			out[k] = s
		}
	}
	*t = out
	return nil
}

func fieldText(v json.RawMessage) (string, bool, error) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return "", false, nil
	}

	switch v[0] {
	case 'n':
		return "", false, nil
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return "", false, err
		}
		return s, true, nil
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err != nil {
			return "", false, err
		}
		return buf.String(), true, nil
	default:
		return string(v), true, nil
	}
}

func isStringOrNull(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	return len(v) > 0 && (v[0] == '"' || v[0] == 'n')
}
