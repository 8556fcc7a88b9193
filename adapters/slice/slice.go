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

// Package slice adapts in-memory Go values (slices of maps or rows) to the
// datatable.DataSource interface.
package slice

import (
	"fmt"
	"sort"
	"time"

	"github.com/magpierre/go-datatable/datatable"
)

// Source is an in-memory data source.
type Source struct {
	names []string
	types []datatable.DataType
	cells [][]datatable.Value
	meta  datatable.Metadata
}

// NewFromMaps creates a data source from a slice of records. The column set
// is the union of all keys, in alphabetical order; column types are inferred
// from the first non-nil value seen.
func NewFromMaps(data []map[string]interface{}) (*Source, error) {
	if len(data) == 0 {
		return nil, datatable.ErrEmptyData
	}

	seen := map[string]bool{}
	names := make([]string, 0)
	for _, rec := range data {
		for k := range rec {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}
	sort.Strings(names)

	types := make([]datatable.DataType, len(names))
	for i, name := range names {
		types[i] = datatable.TypeString
		for _, rec := range data {
			if v, ok := rec[name]; ok && v != nil {
				types[i] = InferType(v)
				break
			}
		}
	}

	cells := make([][]datatable.Value, len(data))
	for r, rec := range data {
		row := make([]datatable.Value, len(names))
		for c, name := range names {
			v, ok := rec[name]
			if !ok || v == nil {
				row[c] = datatable.NewNullValue(types[c])
				continue
			}
			row[c] = datatable.NewValue(v, types[c])
		}
		cells[r] = row
	}

	return &Source{names: names, types: types, cells: cells, meta: datatable.Metadata{}}, nil
}

// NewFromRows creates a data source from explicit headers and row values.
// Rows shorter than the header set are padded with nulls.
func NewFromRows(headers []string, rows [][]interface{}) (*Source, error) {
	if len(headers) == 0 {
		return nil, fmt.Errorf("%w: no headers", datatable.ErrEmptyData)
	}

	types := make([]datatable.DataType, len(headers))
	for c := range headers {
		types[c] = datatable.TypeString
		for _, row := range rows {
			if c < len(row) && row[c] != nil {
				types[c] = InferType(row[c])
				break
			}
		}
	}

	cells := make([][]datatable.Value, len(rows))
	for r, row := range rows {
		vals := make([]datatable.Value, len(headers))
		for c := range headers {
			if c >= len(row) || row[c] == nil {
				vals[c] = datatable.NewNullValue(types[c])
				continue
			}
			vals[c] = datatable.NewValue(row[c], types[c])
		}
		cells[r] = vals
	}

	return &Source{names: headers, types: types, cells: cells, meta: datatable.Metadata{}}, nil
}

// InferType maps a Go value to the closest DataType.
func InferType(v interface{}) datatable.DataType {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return datatable.TypeInt
	case float32, float64:
		return datatable.TypeFloat
	case bool:
		return datatable.TypeBool
	case time.Time:
		return datatable.TypeTimestamp
	case []byte:
		return datatable.TypeBinary
	case map[string]interface{}:
		return datatable.TypeStruct
	case []interface{}:
		return datatable.TypeList
	default:
		return datatable.TypeString
	}
}

// RowCount returns the total number of rows in the data source.
func (s *Source) RowCount() int { return len(s.cells) }

// ColumnCount returns the total number of columns in the data source.
func (s *Source) ColumnCount() int { return len(s.names) }

// ColumnName returns the name of the column at the given index.
func (s *Source) ColumnName(col int) (string, error) {
	if col < 0 || col >= len(s.names) {
		return "", datatable.ErrInvalidColumn
	}
	return s.names[col], nil
}

// ColumnType returns the data type of the column at the given index.
func (s *Source) ColumnType(col int) (datatable.DataType, error) {
	if col < 0 || col >= len(s.types) {
		return 0, datatable.ErrInvalidColumn
	}
	return s.types[col], nil
}

// Cell returns the value at the specified row and column.
func (s *Source) Cell(row, col int) (datatable.Value, error) {
	if row < 0 || row >= len(s.cells) {
		return datatable.Value{}, datatable.ErrInvalidRow
	}
	if col < 0 || col >= len(s.names) {
		return datatable.Value{}, datatable.ErrInvalidColumn
	}
	return s.cells[row][col], nil
}

// Row returns all values for the specified row.
func (s *Source) Row(row int) ([]datatable.Value, error) {
	if row < 0 || row >= len(s.cells) {
		return nil, datatable.ErrInvalidRow
	}
	out := make([]datatable.Value, len(s.cells[row]))
	copy(out, s.cells[row])
	return out, nil
}

// Metadata returns optional metadata about the data source.
func (s *Source) Metadata() datatable.Metadata { return s.meta }
