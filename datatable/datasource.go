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

// DataSource is the read contract adapters implement to feed tabular
// data into a model. Rows and columns are addressed by zero-based
// index. Implementations must tolerate concurrent readers and report
// bad indexes through errors, never panics.
type DataSource interface {
	// RowCount reports how many rows the source holds.
	RowCount() int

	// ColumnCount reports how many columns the source holds.
	ColumnCount() int

	// ColumnName names the column at col, or returns ErrInvalidColumn
	// when col is out of range.
	ColumnName(col int) (string, error)

	// ColumnType gives the data type of the column at col, or returns
	// ErrInvalidColumn when col is out of range.
	ColumnType(col int) (DataType, error)

	// Cell reads a single value. Out-of-range indexes return
	// ErrInvalidRow or ErrInvalidColumn.
	Cell(row, col int) (Value, error)

	// Row reads every value of one row, in column order, or returns
	// ErrInvalidRow when row is out of range.
	Row(row int) ([]Value, error)

	// Metadata describes the source (file path, share name, and the
	// like). Sources without metadata return an empty map.
	Metadata() Metadata
}
