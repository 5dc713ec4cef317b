// Package documents renders the customer's free-form quote answers and resolves
// the uploaded files and policy PDFs they reference.
package documents

import (
	"encoding/json"
	"fmt"
	"path"
	"slices"
	"strings"

	"insurance-portal/internal/models"
)

var fileExtensions = []string{
	".pdf", ".jpg", ".jpeg", ".png", ".gif", ".doc", ".docx",
	".xls", ".xlsx", ".txt", ".webp", ".heic",
}

// RawKey is the key of the single field produced for an answer blob that is not JSON
const RawKey = "raw"

// Field is one rendered answer
type Field struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	IsFile bool   `json:"isFile"`
	URL    string `json:"url,omitempty"`
}

// IsFileReference guesses whether an answer value points at an uploaded file.
// The API sends no type tag, so the guess is by path: anything under /uploads/
// or ending in a known document or image extension.
func IsFileReference(v any) bool {
	s, ok := v.(string)
	if !ok || s == "" {
		return false
	}
	if strings.Contains(s, "/uploads/") {
		return true
	}
	ext := strings.ToLower(path.Ext(strings.SplitN(s, "?", 2)[0]))
	return slices.Contains(fileExtensions, ext)
}

// ParseAdditionalInfo flattens an answer blob into fields sorted by key.
// A blob that did not decode as an object becomes one raw text field.
func ParseAdditionalInfo(info models.AdditionalInfo) []Field {
	if info.IsZero() {
		return []Field{}
	}
	if !info.Structured() {
		return []Field{{Key: RawKey, Value: info.Raw}}
	}

	keys := make([]string, 0, len(info.Fields))
	for k := range info.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	fields := make([]Field, 0, len(keys))
	for _, k := range keys {
		v := info.Fields[k]
		fields = append(fields, Field{Key: k, Value: display(v), IsFile: IsFileReference(v)})
	}
	return fields
}

func display(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool, float64, json.Number:
		return fmt.Sprint(t)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
