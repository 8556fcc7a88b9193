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

import "fmt"

// SourceOption customizes a model built by FromSource.
type SourceOption func(*Options[[]Value])

// WithInitialState supplies the initial state for a source-backed model.
func WithInitialState(s State) SourceOption {
	return func(o *Options[[]Value]) { o.Initial = s }
}

// WithCallbacks supplies the callbacks for a source-backed model.
func WithCallbacks(cb Callbacks) SourceOption {
	return func(o *Options[[]Value]) { o.Callbacks = cb }
}

// WithRowID supplies a row-identity function for a source-backed model.
// The default is the positional index.
func WithRowID(fn func(row []Value, index int) string) SourceOption {
	return func(o *Options[[]Value]) { o.GetRowID = fn }
}

// WithOptions applies arbitrary tweaks to the model options (disable flags,
// manual modes, page sizes, logger).
func WithOptions(fn func(*Options[[]Value])) SourceOption {
	return func(o *Options[[]Value]) { fn(o) }
}

// FromSource materializes a DataSource into a model. One column is derived
// per source column; the sort mode follows the column's data type (numbers
// sort numerically, dates chronologically, everything else as text).
//
// Rows are read once, up front. A source that changes later is re-read by
// calling FromSource again, or by handing the new rows to SetData.
func FromSource(ds DataSource, opts ...SourceOption) (*Model[[]Value], error) {
	if ds == nil {
		return nil, ErrNoDataSource
	}

	cols := make([]Column[[]Value], ds.ColumnCount())
	for i := range cols {
		name, err := ds.ColumnName(i)
		if err != nil {
			return nil, fmt.Errorf("reading source schema: %w", err)
		}
		dt, err := ds.ColumnType(i)
		if err != nil {
			return nil, fmt.Errorf("reading source schema: %w", err)
		}

		idx := i
		cols[i] = Column[[]Value]{
			ID:       name,
			Title:    name,
			SortMode: sortModeFor(dt),
			Projection: func(row []Value) interface{} {
				if idx >= len(row) {
					return nil
				}
				return row[idx]
			},
		}
	}

	data := make([][]Value, ds.RowCount())
	for i := range data {
		row, err := ds.Row(i)
		if err != nil {
			return nil, fmt.Errorf("reading source row %d: %w", i, err)
		}
		data[i] = row
	}

	o := Options[[]Value]{Data: data, Columns: cols}
	for _, opt := range opts {
		opt(&o)
	}
	return New(o)
}

// sortModeFor maps a source column type to the comparison used for sorting.
func sortModeFor(dt DataType) SortMode {
	switch dt {
	case TypeInt, TypeFloat, TypeDecimal, TypeBool:
		return SortNumeric
	case TypeDate, TypeTimestamp:
		return SortDatetime
	default:
		return SortLexicographic
	}
}
