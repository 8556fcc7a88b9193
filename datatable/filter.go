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
	"strings"
)

// FilterFunc is a per-column row predicate. It receives the column's
// projected value and the whole row, and reports whether the row matches.
type FilterFunc[T any] func(value interface{}, row T) bool

// matcher is the normalized form of one filter entry.
type matcher[T any] struct {
	raw interface{}
	fn  FilterFunc[T]
}

// normalizeFilter turns a caller-supplied filter value into a matcher.
// A nil or empty value means "clear the filter" and yields ok == false.
func normalizeFilter[T any](value interface{}) (matcher[T], bool) {
	switch v := value.(type) {
	case nil:
		return matcher[T]{}, false
	case string:
		if v == "" {
			return matcher[T]{}, false
		}
		return matcher[T]{raw: value, fn: substringMatcher[T](v)}, true
	case FilterFunc[T]:
		if v == nil {
			return matcher[T]{}, false
		}
		return matcher[T]{raw: value, fn: v}, true
	case func(interface{}, T) bool:
		if v == nil {
			return matcher[T]{}, false
		}
		return matcher[T]{raw: value, fn: v}, true
	default:
		// Scalar filter value: string-coerce both sides and match by
		// substring containment.
		s := fmt.Sprintf("%v", v)
		if s == "" {
			return matcher[T]{}, false
		}
		return matcher[T]{raw: value, fn: substringMatcher[T](s)}, true
	}
}

// substringMatcher matches when the projected value contains the needle,
// case-insensitively. Non-string values are string-coerced first.
func substringMatcher[T any](needle string) FilterFunc[T] {
	folded := strings.ToLower(needle)
	return func(value interface{}, _ T) bool {
		value = RawValue(value)
		if value == nil {
			return false
		}
		var hay string
		if s, ok := value.(string); ok {
			hay = s
		} else {
			hay = fmt.Sprintf("%v", value)
		}
		return strings.Contains(strings.ToLower(hay), folded)
	}
}
