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

// Package arrow adapts Apache Arrow tables to the datatable.DataSource
// interface. The table is materialized once; the source does not retain the
// Arrow table, so callers may Release it after construction.
package arrow

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/magpierre/go-datatable/datatable"
)

// Source is an Arrow-backed data source, fully materialized into values.
type Source struct {
	names []string
	types []datatable.DataType
	cells [][]datatable.Value
	meta  datatable.Metadata
}

// NewFromArrowTable materializes an Arrow table into a data source.
func NewFromArrowTable(table arrow.Table) (*Source, error) {
	if table == nil {
		return nil, datatable.ErrNoDataSource
	}

	schema := table.Schema()
	names := make([]string, schema.NumFields())
	types := make([]datatable.DataType, schema.NumFields())
	for i, field := range schema.Fields() {
		names[i] = field.Name
		types[i] = dataTypeFor(field.Type.ID())
	}

	cells := make([][]datatable.Value, 0, table.NumRows())

	tr := array.NewTableReader(table, table.NumRows())
	defer tr.Release()

	for tr.Next() {
		rec := tr.Record()
		numRows := int(rec.NumRows())

		for rowIdx := 0; rowIdx < numRows; rowIdx++ {
			row := make([]datatable.Value, len(names))
			for colIdx, col := range rec.Columns() {
				row[colIdx] = valueAt(col, rowIdx, types[colIdx])
			}
			cells = append(cells, row)
		}
	}
	if tr.Err() != nil {
		return nil, fmt.Errorf("error reading table: %w", tr.Err())
	}

	meta := datatable.Metadata{}
	for i, key := range schema.Metadata().Keys() {
		meta[key] = schema.Metadata().Values()[i]
	}

	return &Source{names: names, types: types, cells: cells, meta: meta}, nil
}

// dataTypeFor maps an Arrow type id to the datatable type system.
func dataTypeFor(id arrow.Type) datatable.DataType {
	switch id {
	case arrow.STRING, arrow.LARGE_STRING:
		return datatable.TypeString
	case arrow.BINARY, arrow.LARGE_BINARY:
		return datatable.TypeBinary
	case arrow.BOOL:
		return datatable.TypeBool
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return datatable.TypeInt
	case arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64:
		return datatable.TypeFloat
	case arrow.DATE32, arrow.DATE64:
		return datatable.TypeDate
	case arrow.TIMESTAMP:
		return datatable.TypeTimestamp
	case arrow.DECIMAL128:
		return datatable.TypeDecimal
	case arrow.STRUCT:
		return datatable.TypeStruct
	case arrow.LIST, arrow.LARGE_LIST:
		return datatable.TypeList
	default:
		return datatable.TypeString
	}
}

// valueAt extracts a typed value from an Arrow array at a position.
func valueAt(col arrow.Array, pos int, dt datatable.DataType) datatable.Value {
	if col.IsNull(pos) {
		return datatable.NewNullValue(dt)
	}

	switch col.DataType().ID() {
	case arrow.STRING:
		s := col.(*array.String)
		return datatable.NewValue(s.Value(pos), dt)
	case arrow.LARGE_STRING:
		s := col.(*array.LargeString)
		return datatable.NewValue(s.Value(pos), dt)
	case arrow.BINARY:
		b := col.(*array.Binary)
		return datatable.NewValue(b.Value(pos), dt)
	case arrow.BOOL:
		b := col.(*array.Boolean)
		return datatable.NewValue(b.Value(pos), dt)
	case arrow.INT8:
		v := col.(*array.Int8)
		return datatable.NewValue(int64(v.Value(pos)), dt)
	case arrow.INT16:
		v := col.(*array.Int16)
		return datatable.NewValue(int64(v.Value(pos)), dt)
	case arrow.INT32:
		v := col.(*array.Int32)
		return datatable.NewValue(int64(v.Value(pos)), dt)
	case arrow.INT64:
		v := col.(*array.Int64)
		return datatable.NewValue(v.Value(pos), dt)
	case arrow.UINT8:
		v := col.(*array.Uint8)
		return datatable.NewValue(int64(v.Value(pos)), dt)
	case arrow.UINT16:
		v := col.(*array.Uint16)
		return datatable.NewValue(int64(v.Value(pos)), dt)
	case arrow.UINT32:
		v := col.(*array.Uint32)
		return datatable.NewValue(int64(v.Value(pos)), dt)
	case arrow.UINT64:
		v := col.(*array.Uint64)
		return datatable.NewValue(v.Value(pos), dt)
	case arrow.FLOAT16:
		v := col.(*array.Float16)
		return datatable.NewValue(float64(v.Value(pos).Float32()), dt)
	case arrow.FLOAT32:
		v := col.(*array.Float32)
		return datatable.NewValue(float64(v.Value(pos)), dt)
	case arrow.FLOAT64:
		v := col.(*array.Float64)
		return datatable.NewValue(v.Value(pos), dt)
	case arrow.DATE32:
		v := col.(*array.Date32)
		return datatable.NewValue(v.Value(pos).ToTime(), dt)
	case arrow.DATE64:
		v := col.(*array.Date64)
		return datatable.NewValue(v.Value(pos).ToTime(), dt)
	case arrow.TIMESTAMP:
		v := col.(*array.Timestamp)
		unit := col.DataType().(*arrow.TimestampType).Unit
		return datatable.NewValue(v.Value(pos).ToTime(unit), dt)
	case arrow.DECIMAL128:
		v := col.(*array.Decimal128)
		scale := col.DataType().(*arrow.Decimal128Type).Scale
		return datatable.NewValue(v.Value(pos).ToFloat64(scale), dt)
	case arrow.STRUCT:
		s := col.(*array.Struct)
		b, _ := s.MarshalJSON()
		return datatable.NewValue(string(b), dt)
	case arrow.LIST, arrow.LARGE_LIST:
		as := array.NewSlice(col, int64(pos), int64(pos+1))
		defer as.Release()
		return datatable.NewValue(fmt.Sprintf("%v", as), dt)
	default:
		return datatable.NewValue(fmt.Sprintf("%v", col), dt)
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
