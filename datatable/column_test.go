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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldAccessorOnStructRows(t *testing.T) {
	cols, _, err := normalizeColumns([]Column[person]{
		{ID: "name", Field: "Name"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", cols[0].get(person{Name: "Ada"}))
}

func TestFieldAccessorOnMapRows(t *testing.T) {
	cols, _, err := normalizeColumns([]Column[map[string]interface{}]{
		{ID: "city", Field: "city"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Oslo", cols[0].get(map[string]interface{}{"city": "Oslo"}))
	assert.Nil(t, cols[0].get(map[string]interface{}{"other": 1}))
	assert.Nil(t, cols[0].get(nil))
}

func TestFieldAccessorOnPointerRows(t *testing.T) {
	cols, _, err := normalizeColumns([]Column[*person]{
		{ID: "age", Field: "Age"},
	})
	require.NoError(t, err)

	assert.Equal(t, 41, cols[0].get(&person{Age: 41}))
	assert.Nil(t, cols[0].get(nil))
}

func TestFieldAccessorMissingStructField(t *testing.T) {
	// A misspelled field name projects nil instead of failing.
	cols, _, err := normalizeColumns([]Column[person]{
		{ID: "oops", Field: "Nmae"},
	})
	require.NoError(t, err)
	assert.Nil(t, cols[0].get(person{Name: "Ada"}))
}

func TestFieldAccessorOnInterfaceRows(t *testing.T) {
	cols, _, err := normalizeColumns([]Column[interface{}]{
		{ID: "name", Field: "Name"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Ada", cols[0].get(person{Name: "Ada"}))
	assert.Equal(t, "Ada", cols[0].get(&person{Name: "Ada"}))
	assert.Equal(t, "Oslo", cols[0].get(map[string]string{"Name": "Oslo"}))
	assert.Nil(t, cols[0].get(42))
	assert.Nil(t, cols[0].get(nil))
}

func TestProjectionWinsOverField(t *testing.T) {
	cols, _, err := normalizeColumns([]Column[person]{
		{
			ID:         "name",
			Field:      "Name",
			Projection: func(p person) interface{} { return "projected" },
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "projected", cols[0].get(person{Name: "Ada"}))
}

func TestTitleDefaultsToID(t *testing.T) {
	cols, _, err := normalizeColumns([]Column[person]{
		{ID: "name", Field: "Name"},
		{ID: "age", Title: "Age (years)", Field: "Age"},
	})
	require.NoError(t, err)
	assert.Equal(t, "name", cols[0].Title)
	assert.Equal(t, "Age (years)", cols[1].Title)
}

func TestRawValueUnwrapsCells(t *testing.T) {
	assert.Equal(t, int64(7), RawValue(NewValue(int64(7), TypeInt)))
	assert.Nil(t, RawValue(NewNullValue(TypeString)))
	assert.Equal(t, "plain", RawValue("plain"))
	assert.Nil(t, RawValue(nil))
}
