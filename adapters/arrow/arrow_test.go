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

package arrow

import (
	"testing"
	"time"

	stdarrow "github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/go-datatable/datatable"
)

func testArrowTable(t *testing.T) stdarrow.Table {
	t.Helper()

	schema := stdarrow.NewSchema([]stdarrow.Field{
		{Name: "name", Type: stdarrow.BinaryTypes.String, Nullable: true},
		{Name: "count", Type: stdarrow.PrimitiveTypes.Int32, Nullable: true},
		{Name: "ratio", Type: stdarrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: "ok", Type: stdarrow.FixedWidthTypes.Boolean, Nullable: true},
		{Name: "at", Type: stdarrow.FixedWidthTypes.Timestamp_us, Nullable: true},
	}, nil)

	pool := memory.NewGoAllocator()
	b := array.NewRecordBuilder(pool, schema)
	defer b.Release()

	b.Field(0).(*array.StringBuilder).AppendValues([]string{"alpha", "beta", ""}, []bool{true, true, false})
	b.Field(1).(*array.Int32Builder).AppendValues([]int32{10, 20, 30}, nil)
	b.Field(2).(*array.Float64Builder).AppendValues([]float64{0.5, 1.25, 2.0}, nil)
	b.Field(3).(*array.BooleanBuilder).AppendValues([]bool{true, false, true}, nil)

	at := time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)
	ts, err := stdarrow.TimestampFromTime(at, stdarrow.Microsecond)
	require.NoError(t, err)
	b.Field(4).(*array.TimestampBuilder).AppendValues([]stdarrow.Timestamp{ts, ts, ts}, nil)

	rec := b.NewRecord()
	defer rec.Release()

	return array.NewTableFromRecords(schema, []stdarrow.Record{rec})
}

func TestNewFromArrowTable(t *testing.T) {
	tbl := testArrowTable(t)
	defer tbl.Release()

	src, err := NewFromArrowTable(tbl)
	require.NoError(t, err)

	assert.Equal(t, 3, src.RowCount())
	assert.Equal(t, 5, src.ColumnCount())

	name, err := src.ColumnName(0)
	require.NoError(t, err)
	assert.Equal(t, "name", name)

	for i, want := range []datatable.DataType{
		datatable.TypeString,
		datatable.TypeInt,
		datatable.TypeFloat,
		datatable.TypeBool,
		datatable.TypeTimestamp,
	} {
		dt, err := src.ColumnType(i)
		require.NoError(t, err)
		assert.Equal(t, want, dt, "column %d", i)
	}
}

func TestCellMaterialization(t *testing.T) {
	tbl := testArrowTable(t)
	defer tbl.Release()

	src, err := NewFromArrowTable(tbl)
	require.NoError(t, err)

	cell, err := src.Cell(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "alpha", cell.Raw)

	// Integer columns narrower than 64 bits widen to int64.
	cell, err = src.Cell(1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(20), cell.Raw)

	cell, err = src.Cell(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1.25, cell.Raw)

	cell, err = src.Cell(2, 3)
	require.NoError(t, err)
	assert.Equal(t, true, cell.Raw)

	cell, err = src.Cell(0, 4)
	require.NoError(t, err)
	at, ok := cell.Raw.(time.Time)
	require.True(t, ok)
	assert.Equal(t, 2024, at.Year())
	assert.Equal(t, 30, at.Minute())
}

func TestNullCells(t *testing.T) {
	tbl := testArrowTable(t)
	defer tbl.Release()

	src, err := NewFromArrowTable(tbl)
	require.NoError(t, err)

	cell, err := src.Cell(2, 0)
	require.NoError(t, err)
	assert.True(t, cell.IsNull)
	assert.Equal(t, "", cell.Formatted)
}

func TestBounds(t *testing.T) {
	tbl := testArrowTable(t)
	defer tbl.Release()

	src, err := NewFromArrowTable(tbl)
	require.NoError(t, err)

	_, err = src.Cell(99, 0)
	assert.ErrorIs(t, err, datatable.ErrInvalidRow)
	_, err = src.ColumnType(99)
	assert.ErrorIs(t, err, datatable.ErrInvalidColumn)
}

func TestNilTable(t *testing.T) {
	_, err := NewFromArrowTable(nil)
	assert.Error(t, err)
}

func TestSourceDrivesModel(t *testing.T) {
	tbl := testArrowTable(t)
	defer tbl.Release()

	src, err := NewFromArrowTable(tbl)
	require.NoError(t, err)

	m, err := datatable.FromSource(src)
	require.NoError(t, err)

	// Second call cycles ascending to descending.
	m.SetSort("count")
	m.SetSort("count")
	rows := m.PageData()
	require.Len(t, rows, 3)
	assert.Equal(t, int64(30), rows[0][1].Raw)
}
