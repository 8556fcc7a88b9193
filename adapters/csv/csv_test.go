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

package csv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/go-datatable/datatable"
)

const sampleCSV = `name, age ,score,member,joined
Ada,36,91.5,true,2024-01-15
Bo,28,77.25,false,2024-03-02
Cy,,64.0,true,2024-06-30
`

func TestNewFromReader(t *testing.T) {
	src, err := NewFromReader(strings.NewReader(sampleCSV), DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 3, src.RowCount())
	assert.Equal(t, 5, src.ColumnCount())

	// Header fields are trimmed.
	name, _ := src.ColumnName(1)
	assert.Equal(t, "age", name)

	// Inferred column types.
	for i, want := range []datatable.DataType{
		datatable.TypeString,
		datatable.TypeInt,
		datatable.TypeFloat,
		datatable.TypeBool,
		datatable.TypeDate,
	} {
		dt, err := src.ColumnType(i)
		require.NoError(t, err)
		assert.Equal(t, want, dt, "column %d", i)
	}

	cell, err := src.Cell(0, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(36), cell.Raw)

	cell, err = src.Cell(1, 3)
	require.NoError(t, err)
	assert.Equal(t, false, cell.Raw)

	cell, err = src.Cell(2, 4)
	require.NoError(t, err)
	joined, ok := cell.Raw.(time.Time)
	require.True(t, ok)
	assert.Equal(t, 2024, joined.Year())

	// Empty field in a typed column becomes a null.
	cell, err = src.Cell(2, 1)
	require.NoError(t, err)
	assert.True(t, cell.IsNull)
}

func TestNewFromReaderNoHeaders(t *testing.T) {
	src, err := NewFromReader(strings.NewReader("1,2\n3,4\n"), Config{
		Delimiter:  ',',
		InferTypes: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, src.RowCount())
	name, _ := src.ColumnName(0)
	assert.Equal(t, "column_1", name)
	name, _ = src.ColumnName(1)
	assert.Equal(t, "column_2", name)

	dt, _ := src.ColumnType(0)
	assert.Equal(t, datatable.TypeInt, dt)
}

func TestNewFromReaderWithoutInference(t *testing.T) {
	src, err := NewFromReader(strings.NewReader("n\n42\n"), Config{
		Delimiter:  ',',
		HasHeaders: true,
	})
	require.NoError(t, err)

	dt, _ := src.ColumnType(0)
	assert.Equal(t, datatable.TypeString, dt)

	cell, err := src.Cell(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "42", cell.Raw)
}

func TestNewFromReaderEmpty(t *testing.T) {
	_, err := NewFromReader(strings.NewReader(""), DefaultConfig())
	assert.ErrorIs(t, err, datatable.ErrEmptyData)
}

func TestNewFromReaderRaggedRows(t *testing.T) {
	src, err := NewFromReader(strings.NewReader("a,b\n1,2\n3\n"), DefaultConfig())
	require.NoError(t, err)

	cell, err := src.Cell(1, 1)
	require.NoError(t, err)
	assert.True(t, cell.IsNull)
}

func TestTimestampInference(t *testing.T) {
	input := "ts\n2024-01-15T10:30:00Z\n2024-06-01 08:00:00\n"
	src, err := NewFromReader(strings.NewReader(input), DefaultConfig())
	require.NoError(t, err)

	dt, _ := src.ColumnType(0)
	assert.Equal(t, datatable.TypeTimestamp, dt)

	cell, err := src.Cell(1, 0)
	require.NoError(t, err)
	ts, ok := cell.Raw.(time.Time)
	require.True(t, ok)
	assert.Equal(t, 8, ts.Hour())
}

func TestDetectDelimiter(t *testing.T) {
	dir := t.TempDir()

	cases := []struct {
		name    string
		content string
		want    rune
	}{
		{"semicolon", "a;b;c\n1;2;3\n", ';'},
		{"tab", "a\tb\tc\n", '\t'},
		{"pipe", "a|b|c\n", '|'},
		{"comma", "a,b,c\n", ','},
		{"none", "single\n", ','},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name+".csv")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o644))

			sep, err := DetectDelimiter(path)
			require.NoError(t, err)
			assert.Equal(t, tc.want, sep)
		})
	}
}

func TestNewFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cities.csv")
	require.NoError(t, os.WriteFile(path, []byte("city;pop\nOslo;709037\n"), 0o644))

	sep, err := DetectDelimiter(path)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Delimiter = sep
	src, err := NewFromFile(path, cfg)
	require.NoError(t, err)

	assert.Equal(t, 1, src.RowCount())
	assert.Equal(t, path, src.Metadata()["path"])

	m, err := datatable.FromSource(src)
	require.NoError(t, err)
	rows := m.PageData()
	require.Len(t, rows, 1)
	assert.Equal(t, "Oslo", rows[0][0].Raw)
}
