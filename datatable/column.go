// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package datatable

import (
	"fmt"
	"reflect"
)

// SortMode selects how a column's values are compared when sorting.
type SortMode int

const (
	// SortLexicographic compares values as locale-aware strings. Nulls sort
	// to the end regardless of direction.
	SortLexicographic SortMode = iota
	// SortNumeric coerces values to floats and compares numerically.
	SortNumeric
	// SortDatetime compares values as timestamps.
	SortDatetime
	// SortCustom delegates to the column's Comparator.
	SortCustom
)

// String returns the string representation of a SortMode.
func (m SortMode) String() string {
	switch m {
	case SortLexicographic:
		return "Lexicographic"
	case SortNumeric:
		return "Numeric"
	case SortDatetime:
		return "Datetime"
	case SortCustom:
		return "Custom"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// Column describes one field projection over rows of type T.
//
// Exactly one accessor must be set: either Field (a map key or struct field
// name, resolved once when the model is created) or Projection (a pure
// function from row to cell value). Projection wins when both are set.
//
// Columns are immutable once passed to a model; the model keeps normalized
// copies and never mutates the caller's slice.
type Column[T any] struct {
	// ID uniquely identifies the column. Required.
	ID string

	// Title is the display name. Defaults to ID.
	Title string

	// Field names a map key or struct field to read the cell value from.
	Field string

	// Projection extracts the cell value from a row.
	Projection func(row T) interface{}

	// DisableSort excludes this column from sorting.
	DisableSort bool

	// SortMode selects the comparison used when sorting by this column.
	SortMode SortMode

	// Comparator is the custom comparison for SortCustom. It must order
	// values in natural (ascending) polarity; the model negates for
	// descending. It is called for every pair, so it must handle nil
	// values itself.
	Comparator func(a, b interface{}) int

	// Width is a display width hint in pixels (0 means automatic).
	Width float32

	// Hidden hides the column from rendering initially.
	Hidden bool
}

// column is the normalized, internal form of a Column: the accessor variant
// has been resolved into a single getter.
type column[T any] struct {
	Column[T]
	get func(row T) interface{}
}

// normalizeColumns validates the column set and resolves accessors.
func normalizeColumns[T any](cols []Column[T]) ([]column[T], map[string]int, error) {
	if len(cols) == 0 {
		return nil, nil, ErrNoColumns
	}

	out := make([]column[T], 0, len(cols))
	index := make(map[string]int, len(cols))

	for i, c := range cols {
		if c.ID == "" {
			return nil, nil, fmt.Errorf("%w: column %d has empty id", ErrInvalidColumn, i)
		}
		if _, dup := index[c.ID]; dup {
			return nil, nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.ID)
		}
		if c.SortMode == SortCustom && c.Comparator == nil {
			return nil, nil, fmt.Errorf("%w: column %q uses SortCustom without a comparator", ErrInvalidSortColumn, c.ID)
		}
		if c.Title == "" {
			c.Title = c.ID
		}

		get, err := resolveAccessor(c)
		if err != nil {
			return nil, nil, err
		}

		index[c.ID] = len(out)
		out = append(out, column[T]{Column: c, get: get})
	}

	return out, index, nil
}

// resolveAccessor turns the Field/Projection variant into a concrete getter.
// Field resolution happens here, once, rather than on every access.
func resolveAccessor[T any](c Column[T]) (func(T) interface{}, error) {
	if c.Projection != nil {
		return c.Projection, nil
	}
	if c.Field == "" {
		return nil, fmt.Errorf("%w: %q", ErrNoAccessor, c.ID)
	}

	field := c.Field
	rt := reflect.TypeFor[T]()

	switch rt.Kind() {
	case reflect.Map:
		if rt.Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: %q: map rows need string keys", ErrNoAccessor, c.ID)
		}
		return func(row T) interface{} {
			rv := reflect.ValueOf(row)
			if !rv.IsValid() || rv.IsNil() {
				return nil
			}
			v := rv.MapIndex(reflect.ValueOf(field).Convert(rt.Key()))
			if !v.IsValid() {
				return nil
			}
			return v.Interface()
		}, nil

	case reflect.Struct:
		sf, ok := rt.FieldByName(field)
		if !ok || !sf.IsExported() {
			// Missing field: an authoring mistake, not a crash. The column
			// projects nil for every row.
			return func(T) interface{} { return nil }, nil
		}
		idx := sf.Index
		return func(row T) interface{} {
			return reflect.ValueOf(row).FieldByIndex(idx).Interface()
		}, nil

	case reflect.Pointer:
		if rt.Elem().Kind() == reflect.Struct {
			sf, ok := rt.Elem().FieldByName(field)
			if !ok || !sf.IsExported() {
				return func(T) interface{} { return nil }, nil
			}
			idx := sf.Index
			return func(row T) interface{} {
				rv := reflect.ValueOf(row)
				if rv.IsNil() {
					return nil
				}
				return rv.Elem().FieldByIndex(idx).Interface()
			}, nil
		}
		return nil, fmt.Errorf("%w: %q: unsupported row type %s", ErrNoAccessor, c.ID, rt)

	case reflect.Interface:
		// The concrete row type is only known at access time.
		return func(row T) interface{} {
			return dynamicField(interface{}(row), field)
		}, nil

	default:
		return nil, fmt.Errorf("%w: %q: unsupported row type %s", ErrNoAccessor, c.ID, rt)
	}
}

// dynamicField reads a named field from an arbitrary map or struct value.
// Unknown shapes and missing fields yield nil.
func dynamicField(row interface{}, field string) interface{} {
	if row == nil {
		return nil
	}
	rv := reflect.ValueOf(row)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}
		v := rv.MapIndex(reflect.ValueOf(field).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil
		}
		return v.Interface()
	case reflect.Struct:
		v := rv.FieldByName(field)
		if !v.IsValid() || !v.CanInterface() {
			return nil
		}
		return v.Interface()
	default:
		return nil
	}
}

// RawValue unwraps a Value cell into its raw representation, so comparisons
// and filters operate on raw values. Null values become nil; anything else
// passes through unchanged.
func RawValue(v interface{}) interface{} {
	if val, ok := v.(Value); ok {
		if val.IsNull {
			return nil
		}
		return val.Raw
	}
	return v
}
