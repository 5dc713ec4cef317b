package models

import (
	"bytes"
	"encoding/json"
)

// AdditionalInfo holds the free-form answers a customer gave in the quote wizard.
// The API sends it either as a JSON object or as a string containing one; when
// neither parses, Raw keeps the original text.
type AdditionalInfo struct {
	Fields map[string]any
	Raw    string
}

// IsZero reports whether no information was sent
func (a AdditionalInfo) IsZero() bool {
	return a.Fields == nil && a.Raw == ""
}

// Structured reports whether the blob decoded into key/value fields
func (a AdditionalInfo) Structured() bool {
	return a.Fields != nil
}

func (a AdditionalInfo) MarshalJSON() ([]byte, error) {
	switch {
	case a.Fields != nil:
		return json.Marshal(a.Fields)
	case a.Raw != "":
		return json.Marshal(a.Raw)
	}
	return []byte("null"), nil
}

func (a *AdditionalInfo) UnmarshalJSON(data []byte) error {
	*a = AdditionalInfo{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	var fields map[string]any
	if json.Unmarshal(trimmed, &fields) == nil {
		a.Fields = fields
		return nil
	}

	var text string
	if json.Unmarshal(trimmed, &text) == nil {
		if json.Unmarshal([]byte(text), &fields) == nil && fields != nil {
			a.Fields = fields
			return nil
		}
		a.Raw = text
		return nil
	}

	a.Raw = string(trimmed)
	return nil
}
