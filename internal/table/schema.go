// Package table derives the rows a dashboard table renders from a raw collection:
// tab filter, free-text search and single-column sort. Every function here is
// total and leaves its input untouched.
package table

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Tab is a coarse status partition of a table
type Tab[T any] struct {
	Name  string
	Match func(T) bool
}

// SearchField extracts one searchable field; absent fields are skipped
type SearchField[T any] func(T) (string, bool)

// View holds the UI-selected parameters of a table
type View struct {
	Tab   int       `json:"tab"`
	Sort  SortState `json:"sort"`
	Query string    `json:"query,omitempty"`
}

// Schema is the column-descriptor set for one entity kind
type Schema[T any] struct {
	Columns      []Column[T]
	Tabs         []Tab[T]
	SearchFields []SearchField[T]
	DefaultSort  SortState
	Language     language.Tag
}

// DefaultView is tab 0 with the schema's default sort
func (s *Schema[T]) DefaultView() View {
	return View{Tab: 0, Sort: s.DefaultSort}
}

// Column looks up a column by key
func (s *Schema[T]) Column(key string) (Column[T], bool) {
	for _, col := range s.Columns {
		if col.Key == key {
			return col, true
		}
	}
	return Column[T]{}, false
}

// Keys lists the sortable column keys in declaration order
func (s *Schema[T]) Keys() []string {
	keys := make([]string, 0, len(s.Columns))
	for _, col := range s.Columns {
		keys = append(keys, col.Key)
	}
	return keys
}

// Filter keeps the rows matching the tab's predicate in their original order.
// An unknown tab index matches nothing.
func (s *Schema[T]) Filter(items []T, tab int) []T {
	out := make([]T, 0, len(items))
	if tab < 0 || tab >= len(s.Tabs) {
		return out
	}
	match := s.Tabs[tab].Match
	for _, item := range items {
		if match(item) {
			out = append(out, item)
		}
	}
	return out
}

// Search keeps rows where query is a case-insensitive substring of any search field.
// An empty query keeps every row.
func (s *Schema[T]) Search(items []T, query string) []T {
	if query == "" {
		return slices.Clone(items)
	}
	needle := strings.ToLower(query)
	out := make([]T, 0, len(items))
	for _, item := range items {
		if s.matches(item, needle) {
			out = append(out, item)
		}
	}
	return out
}

func (s *Schema[T]) matches(item T, needle string) bool {
	for _, field := range s.SearchFields {
		value, ok := field(item)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(value), needle) {
			return true
		}
	}
	return false
}

// Sort orders a copy of items by the active column. An unknown key leaves the order as is.
func (s *Schema[T]) Sort(items []T, state SortState) []T {
	out := slices.Clone(items)
	if out == nil {
		out = []T{}
	}
	col, ok := s.Column(state.Key)
	if !ok {
		return out
	}

	// Collators keep internal buffers and are not safe for concurrent use.
	collator := collate.New(s.Language)
	sign := 1
	if state.Direction == Desc {
		sign = -1
	}
	slices.SortStableFunc(out, func(a, b T) int {
		return sign * col.Compare(collator, a, b)
	})
	return out
}

// Derive runs the whole pipeline: tab filter, then search, then sort
func (s *Schema[T]) Derive(raw []T, v View) []T {
	filtered := s.Filter(raw, v.Tab)
	if len(s.SearchFields) > 0 {
		filtered = s.Search(filtered, v.Query)
	}
	return s.Sort(filtered, v.Sort)
}
