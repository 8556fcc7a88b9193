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
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/collate"
)

// toFloat64 coerces numeric-ish values to float64.
func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
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
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	case time.Time:
		return float64(n.UnixNano()), true
	default:
		return 0, false
	}
}

// timeLayouts are tried in order when coercing strings to timestamps.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// toTime coerces timestamp-ish values to time.Time.
func toTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case string:
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	case int64:
		return time.Unix(t, 0), true
	default:
		return time.Time{}, false
	}
}

// compareValues orders two non-nil cell values under the given mode.
// The result is in natural (ascending) polarity; the caller applies the
// direction multiplier.
func compareValues(a, b interface{}, mode SortMode, coll *collate.Collator) int {
	switch mode {
	case SortNumeric:
		fa, okA := toFloat64(a)
		fb, okB := toFloat64(b)
		if !okA || !okB {
			return compareFallback(a, b, coll)
		}
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}

	case SortDatetime:
		ta, okA := toTime(a)
		tb, okB := toTime(b)
		if !okA || !okB {
			return compareFallback(a, b, coll)
		}
		return ta.Compare(tb)

	default:
		return compareFallback(a, b, coll)
	}
}

// compareFallback is the default comparison: locale-aware for strings,
// numeric for coercible scalars, string-coerced otherwise.
func compareFallback(a, b interface{}, coll *collate.Collator) int {
	sa, aIsStr := a.(string)
	sb, bIsStr := b.(string)
	if aIsStr && bIsStr {
		return coll.CompareString(sa, sb)
	}

	if fa, ok := toFloat64(a); ok {
		if fb, ok := toFloat64(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			default:
				return 0
			}
		}
	}

	return strings.Compare(fmt.Sprintf("%v", a), fmt.Sprintf("%v", b))
}
