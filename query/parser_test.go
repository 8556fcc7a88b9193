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

package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/go-datatable/datatable"
)

var testColumns = []string{"name", "age", "city"}

func row(name string, age string, city string) []datatable.Value {
	return []datatable.Value{
		datatable.NewValue(name, datatable.TypeString),
		datatable.NewValue(age, datatable.TypeString),
		datatable.NewValue(city, datatable.TypeString),
	}
}

func TestParseEmptyInput(t *testing.T) {
	p := NewParser(testColumns)
	q, err := p.Parse("")
	require.NoError(t, err)
	assert.Nil(t, q)
	assert.True(t, p.Match(q, row("any", "1", "x")))
}

func TestParseSingleComparison(t *testing.T) {
	p := NewParser(testColumns)
	q, err := p.Parse("name = smith")
	require.NoError(t, err)
	require.Len(t, q.Expressions, 1)
	assert.Equal(t, "name", q.Expressions[0].ColumnName)
	assert.Equal(t, OpEqual, q.Expressions[0].Operator)
	assert.Equal(t, "smith", q.Expressions[0].Value)
}

func TestParseQuotedValue(t *testing.T) {
	p := NewParser(testColumns)
	q, err := p.Parse(`city = "New York"`)
	require.NoError(t, err)
	assert.Equal(t, "New York", q.Expressions[0].Value)
}

func TestParseTwoCharOperators(t *testing.T) {
	p := NewParser(testColumns)

	q, err := p.Parse("age >= 30")
	require.NoError(t, err)
	assert.Equal(t, OpGreaterEqual, q.Expressions[0].Operator)

	q, err = p.Parse("age != 30")
	require.NoError(t, err)
	assert.Equal(t, OpNotEqual, q.Expressions[0].Operator)
}

func TestParseLogicOperators(t *testing.T) {
	p := NewParser(testColumns)
	q, err := p.Parse("name ~ smith AND age > 30 OR city = Oslo")
	require.NoError(t, err)
	require.Len(t, q.Expressions, 3)
	assert.Equal(t, []LogicOp{LogicAND, LogicOR}, q.LogicOps)
}

func TestParseUnknownColumn(t *testing.T) {
	p := NewParser(testColumns)
	_, err := p.Parse("bogus = 1")
	require.ErrorIs(t, err, datatable.ErrColumnNotFound)
	assert.Contains(t, err.Error(), "bogus")
}

func TestParseColumnNamesAreCaseInsensitive(t *testing.T) {
	p := NewParser(testColumns)
	q, err := p.Parse("NAME = smith")
	require.NoError(t, err)
	assert.True(t, p.Match(q, row("Smith", "1", "x")))
}

func TestBareTermSearchesAllColumns(t *testing.T) {
	p := NewParser(testColumns)
	q, err := p.Parse("oslo")
	require.NoError(t, err)
	require.Len(t, q.Expressions, 1)
	assert.Equal(t, "", q.Expressions[0].ColumnName)
	assert.Equal(t, OpContains, q.Expressions[0].Operator)

	assert.True(t, p.Match(q, row("x", "1", "Oslo")))
	assert.True(t, p.Match(q, row("Osloite", "1", "y")))
	assert.False(t, p.Match(q, row("x", "1", "Bergen")))
}

func TestMatchComparisons(t *testing.T) {
	p := NewParser(testColumns)

	q, err := p.Parse("age > 30")
	require.NoError(t, err)
	assert.True(t, p.Match(q, row("a", "31", "x")))
	assert.False(t, p.Match(q, row("a", "30", "x")))
	// "9" is numerically below 30, even though it sorts after "30" as text.
	assert.False(t, p.Match(q, row("a", "9", "x")))

	q, err = p.Parse("name != smith")
	require.NoError(t, err)
	assert.False(t, p.Match(q, row("Smith", "1", "x")))
	assert.True(t, p.Match(q, row("Jones", "1", "x")))

	q, err = p.Parse("name ~ mit")
	require.NoError(t, err)
	assert.True(t, p.Match(q, row("Smith", "1", "x")))
}

func TestMatchNonNumericComparisonFallsBackToString(t *testing.T) {
	p := NewParser(testColumns)
	q, err := p.Parse("name > b")
	require.NoError(t, err)
	assert.True(t, p.Match(q, row("carol", "1", "x")))
	assert.False(t, p.Match(q, row("alice", "1", "x")))
}

func TestMatchAndOrPrecedenceIsLeftToRight(t *testing.T) {
	p := NewParser(testColumns)
	q, err := p.Parse("name = smith AND age > 30")
	require.NoError(t, err)
	assert.True(t, p.Match(q, row("Smith", "40", "x")))
	assert.False(t, p.Match(q, row("Smith", "20", "x")))
	assert.False(t, p.Match(q, row("Jones", "40", "x")))

	q, err = p.Parse("city = Oslo OR city = Bergen")
	require.NoError(t, err)
	assert.True(t, p.Match(q, row("a", "1", "Bergen")))
	assert.False(t, p.Match(q, row("a", "1", "Tromsø")))
}

func TestAndInsideWordIsNotAnOperator(t *testing.T) {
	p := NewParser([]string{"brand"})
	q, err := p.Parse("brand = sandvik")
	require.NoError(t, err)
	require.Len(t, q.Expressions, 1)
	assert.Equal(t, "sandvik", q.Expressions[0].Value)
}

func TestFilterBridgesToModel(t *testing.T) {
	fn, err := Filter("age >= 30", testColumns)
	require.NoError(t, err)
	assert.True(t, fn(nil, row("a", "30", "x")))
	assert.False(t, fn(nil, row("a", "29", "x")))

	_, err = Filter("bogus = 1", testColumns)
	assert.Error(t, err)
}
