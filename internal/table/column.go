package table

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
)

// ColumnType selects the comparator used for a column
type ColumnType string

const (
	Numeric ColumnType = "number"
	Date    ColumnType = "date"
	Text    ColumnType = "string"
	Boolean ColumnType = "boolean"
)

var epoch = time.Unix(0, 0).UTC()

// Column describes one sortable column of a table over rows of type T.
// Accessors report whether the value is present; absent values compare as
// the type's default (0, the Unix epoch, "" or false).
type Column[T any] struct {
	Key  string
	Type ColumnType

	compare func(c *collate.Collator, a, b T) int
}

// Compare orders a before b (negative), after b (positive) or as a tie (zero)
func (col Column[T]) Compare(c *collate.Collator, a, b T) int {
	return col.compare(c, a, b)
}

// NumberColumn compares by numeric difference; missing values count as 0
func NumberColumn[T any](key string, value func(T) (decimal.Decimal, bool)) Column[T] {
	get := func(row T) decimal.Decimal {
		if v, ok := value(row); ok {
			return v
		}
		return decimal.Zero
	}
	return Column[T]{
		Key:  key,
		Type: Numeric,
		compare: func(_ *collate.Collator, a, b T) int {
			return get(a).Sub(get(b)).Sign()
		},
	}
}

// DateColumn compares by instant; missing values count as the Unix epoch
func DateColumn[T any](key string, value func(T) (time.Time, bool)) Column[T] {
	get := func(row T) time.Time {
		if v, ok := value(row); ok && !v.IsZero() {
			return v
		}
		return epoch
	}
	return Column[T]{
		Key:  key,
		Type: Date,
		compare: func(_ *collate.Collator, a, b T) int {
			return get(a).Compare(get(b))
		},
	}
}

// StringColumn compares with the locale collator; missing values count as ""
func StringColumn[T any](key string, value func(T) (string, bool)) Column[T] {
	get := func(row T) string {
		if v, ok := value(row); ok {
			return v
		}
		return ""
	}
	return Column[T]{
		Key:  key,
		Type: Text,
		compare: func(c *collate.Collator, a, b T) int {
			return c.CompareString(get(a), get(b))
		},
	}
}

// BoolColumn sorts false before true
func BoolColumn[T any](key string, value func(T) bool) Column[T] {
	rank := func(row T) int {
		if value(row) {
			return 1
		}
		return 0
	}
	return Column[T]{
		Key:  key,
		Type: Boolean,
		compare: func(_ *collate.Collator, a, b T) int {
			return rank(a) - rank(b)
		},
	}
}
