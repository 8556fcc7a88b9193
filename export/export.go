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

// Package export writes table views to CSV, JSON and Parquet files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/magpierre/go-datatable/datatable"
)

// Format represents the supported export formats
type Format int

const (
	FormatParquet Format = iota
	FormatCSV
	FormatJSON
)

// Table is a flat, column-named view ready for export.
type Table struct {
	// Columns are the output column names, in order.
	Columns []string

	// Types are the per-column data types.
	Types []datatable.DataType

	// Rows hold one value per column, in column order.
	Rows [][]datatable.Value
}

// FromModel snapshots the current filtered and sorted view of a value
// model, restricted to its visible columns. Hidden columns and rows
// filtered out of the view are not exported.
func FromModel(m *datatable.Model[[]datatable.Value]) Table {
	st := m.State()
	cols := m.Columns()

	var names []string
	var types []datatable.DataType
	var keep []int
	for i, c := range cols {
		if st.HiddenColumns[c.ID] {
			continue
		}
		name := c.Title
		if name == "" {
			name = c.ID
		}
		names = append(names, name)
		keep = append(keep, i)
		types = append(types, datatable.TypeString)
	}

	data := m.FilteredData()
	rows := make([][]datatable.Value, 0, len(data))
	for _, src := range data {
		row := make([]datatable.Value, len(keep))
		for out, in := range keep {
			if in < len(src) {
				row[out] = src[in]
			} else {
				row[out] = datatable.NewNullValue(datatable.TypeString)
			}
		}
		rows = append(rows, row)
	}

	// Column types come from the first non-null cell.
	for out := range keep {
		for _, row := range rows {
			if !row[out].IsNull {
				types[out] = row[out].Type
				break
			}
		}
	}

	return Table{Columns: names, Types: types, Rows: rows}
}

// FromSource snapshots an entire data source.
func FromSource(ds datatable.DataSource) (Table, error) {
	if ds == nil {
		return Table{}, datatable.ErrNoDataSource
	}

	names := make([]string, ds.ColumnCount())
	types := make([]datatable.DataType, ds.ColumnCount())
	for i := range names {
		name, err := ds.ColumnName(i)
		if err != nil {
			return Table{}, err
		}
		names[i] = name
		dt, err := ds.ColumnType(i)
		if err != nil {
			return Table{}, err
		}
		types[i] = dt
	}

	rows := make([][]datatable.Value, 0, ds.RowCount())
	for i := 0; i < ds.RowCount(); i++ {
		row, err := ds.Row(i)
		if err != nil {
			return Table{}, err
		}
		rows = append(rows, row)
	}

	return Table{Columns: names, Types: types, Rows: rows}, nil
}

// Export writes the table to a file in the given format.
func Export(t Table, format Format, filePath string) error {
	switch format {
	case FormatParquet:
		return ExportToParquet(t, filePath)
	case FormatCSV:
		return ExportToCSV(t, filePath)
	case FormatJSON:
		return ExportToJSON(t, filePath)
	default:
		return fmt.Errorf("%w: unknown format %d", datatable.ErrExportFailed, format)
	}
}

// ExportToCSV writes the table to a CSV file.
func ExportToCSV(t Table, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()
	return WriteCSV(file, t)
}

// WriteCSV writes the table to a writer in CSV form. Cells use the
// pre-formatted display representation; nulls are empty.
func WriteCSV(w io.Writer, t Table) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i := range record {
			if i < len(row) {
				record[i] = row[i].Formatted
			} else {
				record[i] = ""
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ExportToJSON writes the table to a JSON file.
func ExportToJSON(t Table, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()
	return WriteJSON(file, t)
}

// WriteJSON writes the table as an indented JSON array of objects,
// preserving value types where JSON can express them.
func WriteJSON(w io.Writer, t Table) error {
	records := make([]map[string]interface{}, 0, len(t.Rows))
	for _, row := range t.Rows {
		record := make(map[string]interface{}, len(t.Columns))
		for i, name := range t.Columns {
			if i >= len(row) {
				record[name] = nil
				continue
			}
			record[name] = jsonValue(row[i])
		}
		records = append(records, record)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// jsonValue converts a cell into its JSON representation.
func jsonValue(v datatable.Value) interface{} {
	if v.IsNull {
		return nil
	}

	switch v.Type {
	case datatable.TypeDate:
		if tm, ok := v.Raw.(time.Time); ok {
			return tm.Format("2006-01-02")
		}
	case datatable.TypeTimestamp:
		if tm, ok := v.Raw.(time.Time); ok {
			return tm.Format("2006-01-02T15:04:05.999999999Z")
		}
	case datatable.TypeBinary:
		if b, ok := v.Raw.([]byte); ok {
			return string(b)
		}
	case datatable.TypeStruct:
		if s, ok := v.Raw.(string); ok {
			var result interface{}
			if json.Unmarshal([]byte(s), &result) == nil {
				return result
			}
		}
	}

	return v.Raw
}

// ExportToParquet writes the table to a Parquet file with Snappy
// compression.
func ExportToParquet(t Table, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer file.Close()
	return WriteParquet(file, t)
}

// WriteParquet builds an Arrow table from the view and writes it as
// Parquet.
func WriteParquet(w io.Writer, t Table) error {
	arrowTable, err := buildArrowTable(t)
	if err != nil {
		return err
	}
	defer arrowTable.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	writer, err := pqarrow.NewFileWriter(arrowTable.Schema(), w, props, arrowProps)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	defer writer.Close()

	if err := writer.WriteTable(arrowTable, arrowTable.NumRows()); err != nil {
		return fmt.Errorf("failed to write table to parquet: %w", err)
	}
	return nil
}

// buildArrowTable converts the view into an in-memory Arrow table.
func buildArrowTable(t Table) (arrow.Table, error) {
	fields := make([]arrow.Field, len(t.Columns))
	for i, name := range t.Columns {
		fields[i] = arrow.Field{Name: name, Type: arrowTypeFor(t.Types[i]), Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	pool := memory.NewGoAllocator()
	columns := make([]arrow.Column, len(fields))
	for i, field := range fields {
		builder := array.NewBuilder(pool, field.Type)

		for _, row := range t.Rows {
			if i >= len(row) {
				builder.AppendNull()
				continue
			}
			appendCell(builder, row[i])
		}

		arr := builder.NewArray()
		chunked := arrow.NewChunked(field.Type, []arrow.Array{arr})
		columns[i] = *arrow.NewColumn(field, chunked)
		arr.Release()
		builder.Release()
	}

	return array.NewTable(schema, columns, int64(len(t.Rows))), nil
}

// arrowTypeFor maps a data type to its Arrow storage type. Nested and
// decimal values are stored as strings.
func arrowTypeFor(dt datatable.DataType) arrow.DataType {
	switch dt {
	case datatable.TypeInt:
		return arrow.PrimitiveTypes.Int64
	case datatable.TypeFloat, datatable.TypeDecimal:
		return arrow.PrimitiveTypes.Float64
	case datatable.TypeBool:
		return arrow.FixedWidthTypes.Boolean
	case datatable.TypeDate:
		return arrow.FixedWidthTypes.Date32
	case datatable.TypeTimestamp:
		return arrow.FixedWidthTypes.Timestamp_ns
	case datatable.TypeBinary:
		return arrow.BinaryTypes.Binary
	default:
		return arrow.BinaryTypes.String
	}
}

// appendCell appends a typed cell value to an Arrow builder.
func appendCell(builder array.Builder, v datatable.Value) {
	if v.IsNull {
		builder.AppendNull()
		return
	}

	switch b := builder.(type) {
	case *array.StringBuilder:
		b.Append(v.Formatted)
	case *array.BinaryBuilder:
		if raw, ok := v.Raw.([]byte); ok {
			b.Append(raw)
		} else {
			b.Append([]byte(v.Formatted))
		}
	case *array.BooleanBuilder:
		if raw, ok := v.Raw.(bool); ok {
			b.Append(raw)
		} else {
			b.AppendNull()
		}
	case *array.Int64Builder:
		if n, ok := asInt64(v.Raw); ok {
			b.Append(n)
		} else {
			b.AppendNull()
		}
	case *array.Float64Builder:
		if f, ok := asFloat64(v.Raw); ok {
			b.Append(f)
		} else {
			b.AppendNull()
		}
	case *array.Date32Builder:
		if tm, ok := v.Raw.(time.Time); ok {
			b.Append(arrow.Date32FromTime(tm))
		} else {
			b.AppendNull()
		}
	case *array.TimestampBuilder:
		tm, ok := v.Raw.(time.Time)
		if !ok {
			b.AppendNull()
			return
		}
		ts, err := arrow.TimestampFromTime(tm, arrow.Nanosecond)
		if err != nil {
			b.AppendNull()
			return
		}
		b.Append(ts)
	default:
		builder.AppendNull()
	}
}

func asInt64(raw interface{}) (int64, bool) {
	switch n := raw.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float32:
		return int64(n), true
	case float64:
		return int64(n), true
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}

func asFloat64(raw interface{}) (float64, bool) {
	switch n := raw.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}
