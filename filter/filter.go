// Package filter provides ready-made column predicates and AND/OR/NOT
// combinators for datatable filter values.
//
// Every constructor returns a datatable.FilterFunc, so the results can be
// passed directly to Model.SetFilter or combined with each other.
package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/magpierre/go-datatable/datatable"
)

// Substring matches when the cell value contains the pattern,
// case-insensitively. Non-string values are string-coerced first.
func Substring[T any](pattern string) datatable.FilterFunc[T] {
	folded := strings.ToLower(pattern)
	return func(value interface{}, _ T) bool {
		value = datatable.RawValue(value)
		if value == nil {
			return false
		}
		return strings.Contains(strings.ToLower(stringify(value)), folded)
	}
}

// Equals matches when the cell value equals want, case-insensitively.
func Equals[T any](want string) datatable.FilterFunc[T] {
	return func(value interface{}, _ T) bool {
		value = datatable.RawValue(value)
		if value == nil {
			return false
		}
		return strings.EqualFold(stringify(value), want)
	}
}

// GreaterThan matches when the cell value is numerically above the
// threshold. Values that cannot be coerced to a number never match.
func GreaterThan[T any](threshold float64) datatable.FilterFunc[T] {
	return func(value interface{}, _ T) bool {
		f, ok := toFloat(datatable.RawValue(value))
		return ok && f > threshold
	}
}

// LessThan matches when the cell value is numerically below the threshold.
func LessThan[T any](threshold float64) datatable.FilterFunc[T] {
	return func(value interface{}, _ T) bool {
		f, ok := toFloat(datatable.RawValue(value))
		return ok && f < threshold
	}
}

// NotNull matches every non-null cell value.
func NotNull[T any]() datatable.FilterFunc[T] {
	return func(value interface{}, _ T) bool {
		return datatable.RawValue(value) != nil
	}
}

// Predicate adapts a plain row predicate that ignores the cell value.
func Predicate[T any](fn func(row T) bool) datatable.FilterFunc[T] {
	return func(_ interface{}, row T) bool {
		return fn(row)
	}
}

// And requires all filters to pass. Evaluation short-circuits on the first
// failure. An empty filter list passes all rows.
func And[T any](filters ...datatable.FilterFunc[T]) datatable.FilterFunc[T] {
	return func(value interface{}, row T) bool {
		for _, f := range filters {
			if !f(value, row) {
				return false
			}
		}
		return true
	}
}

// Or requires at least one filter to pass. Evaluation short-circuits on the
// first success. An empty filter list rejects all rows.
func Or[T any](filters ...datatable.FilterFunc[T]) datatable.FilterFunc[T] {
	return func(value interface{}, row T) bool {
		for _, f := range filters {
			if f(value, row) {
				return true
			}
		}
		return false
	}
}

// Not inverts a filter.
func Not[T any](f datatable.FilterFunc[T]) datatable.FilterFunc[T] {
	return func(value interface{}, row T) bool {
		return !f(value, row)
	}
}

func stringify(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
