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

package slice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/go-datatable/datatable"
)

func TestNewFromMaps(t *testing.T) {
	src, err := NewFromMaps([]map[string]interface{}{
		{"name": "Ada", "age": 36},
		{"name": "Bo", "city": "Oslo"},
	})
	require.NoError(t, err)

	// Columns are the union of keys, alphabetically ordered.
	assert.Equal(t, 3, src.ColumnCount())
	name, _ := src.ColumnName(0)
	assert.Equal(t, "age", name)
	name, _ = src.ColumnName(1)
	assert.Equal(t, "city", name)
	name, _ = src.ColumnName(2)
	assert.Equal(t, "name", name)

	dt, _ := src.ColumnType(0)
	assert.Equal(t, datatable.TypeInt, dt)
	dt, _ = src.ColumnType(2)
	assert.Equal(t, datatable.TypeString, dt)

	// Missing keys become nulls.
	cell, err := src.Cell(0, 1)
	require.NoError(t, err)
	assert.True(t, cell.IsNull)

	cell, err = src.Cell(1, 1)
	require.NoError(t, err)
	assert.Equal(t, "Oslo", cell.Raw)
}

func TestNewFromMapsEmpty(t *testing.T) {
	_, err := NewFromMaps(nil)
	assert.ErrorIs(t, err, datatable.ErrEmptyData)
}

func TestNewFromRows(t *testing.T) {
	src, err := NewFromRows(
		[]string{"id", "score"},
		[][]interface{}{
			{1, 9.5},
			{2}, // short row
		},
	)
	require.NoError(t, err)

	assert.Equal(t, 2, src.RowCount())

	dt, _ := src.ColumnType(1)
	assert.Equal(t, datatable.TypeFloat, dt)

	cell, err := src.Cell(1, 1)
	require.NoError(t, err)
	assert.True(t, cell.IsNull)
}

func TestNewFromRowsNoHeaders(t *testing.T) {
	_, err := NewFromRows(nil, [][]interface{}{{1}})
	assert.ErrorIs(t, err, datatable.ErrEmptyData)
}

func TestInferType(t *testing.T) {
	assert.Equal(t, datatable.TypeInt, InferType(7))
	assert.Equal(t, datatable.TypeInt, InferType(uint16(7)))
	assert.Equal(t, datatable.TypeFloat, InferType(3.14))
	assert.Equal(t, datatable.TypeBool, InferType(true))
	assert.Equal(t, datatable.TypeTimestamp, InferType(time.Now()))
	assert.Equal(t, datatable.TypeBinary, InferType([]byte("x")))
	assert.Equal(t, datatable.TypeStruct, InferType(map[string]interface{}{}))
	assert.Equal(t, datatable.TypeList, InferType([]interface{}{}))
	assert.Equal(t, datatable.TypeString, InferType("text"))
}

func TestBoundsChecking(t *testing.T) {
	src, err := NewFromRows([]string{"a"}, [][]interface{}{{1}})
	require.NoError(t, err)

	_, err = src.ColumnName(5)
	assert.ErrorIs(t, err, datatable.ErrInvalidColumn)
	_, err = src.Cell(5, 0)
	assert.ErrorIs(t, err, datatable.ErrInvalidRow)
	_, err = src.Row(-1)
	assert.ErrorIs(t, err, datatable.ErrInvalidRow)
}

func TestRowReturnsCopy(t *testing.T) {
	src, err := NewFromRows([]string{"a"}, [][]interface{}{{"original"}})
	require.NoError(t, err)

	row, err := src.Row(0)
	require.NoError(t, err)
	row[0] = datatable.NewValue("mutated", datatable.TypeString)

	cell, err := src.Cell(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "original", cell.Raw)
}
