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
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

func testCollator() *collate.Collator {
	return collate.New(language.Und)
}

func TestCompareNumeric(t *testing.T) {
	coll := testCollator()

	assert.Negative(t, compareValues(1, 2, SortNumeric, coll))
	assert.Positive(t, compareValues(2.5, int64(2), SortNumeric, coll))
	assert.Zero(t, compareValues(uint8(3), 3.0, SortNumeric, coll))

	// Numeric strings are coerced.
	assert.Negative(t, compareValues("9", "10", SortNumeric, coll))

	// Non-numeric operands fall back to string comparison.
	assert.Negative(t, compareValues("apple", "banana", SortNumeric, coll))

	// Booleans order false before true.
	assert.Negative(t, compareValues(false, true, SortNumeric, coll))
}

func TestCompareDatetime(t *testing.T) {
	coll := testCollator()
	earlier := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	later := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	assert.Negative(t, compareValues(earlier, later, SortDatetime, coll))
	assert.Positive(t, compareValues(later, earlier, SortDatetime, coll))
	assert.Zero(t, compareValues(earlier, earlier, SortDatetime, coll))

	// Date strings parse through the known layouts.
	assert.Negative(t, compareValues("2025-01-01", "2025-06-15", SortDatetime, coll))
	assert.Negative(t, compareValues("2025-01-01 10:00:00", "2025-01-01 11:00:00", SortDatetime, coll))
}

func TestCompareLexicographic(t *testing.T) {
	coll := testCollator()

	assert.Negative(t, compareValues("alpha", "beta", SortLexicographic, coll))
	assert.Zero(t, compareValues("same", "same", SortLexicographic, coll))

	// Mixed non-string operands coerce numerically when possible.
	assert.Negative(t, compareValues(2, 10, SortLexicographic, coll))
}

func TestToFloat64(t *testing.T) {
	f, ok := toFloat64(" 42.5 ")
	assert.True(t, ok)
	assert.Equal(t, 42.5, f)

	_, ok = toFloat64("not a number")
	assert.False(t, ok)

	_, ok = toFloat64(struct{}{})
	assert.False(t, ok)
}
