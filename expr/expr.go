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

// Package expr compiles Go expressions into row predicates at runtime
// using the yaegi interpreter. Expressions see each row as a
// map[string]interface{} named row, keyed by column id:
//
//	p, err := expr.Compile(`row["age"].(int64) > 30`)
//
// Common standard library packages (strings, strconv, fmt, math, time,
// regexp, encoding/json) are imported and ready to use inside
// expressions.
package expr

import (
	"bytes"
	"fmt"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/magpierre/go-datatable/datatable"
)

// Predicate evaluates a compiled expression against a single row.
type Predicate func(row map[string]interface{}) bool

// preamble imports the packages expressions may reference. The
// interpreter needs the imports in source even with stdlib symbols
// loaded; the blank anchors keep the program valid when an expression
// uses none of them.
const preamble = `package main

import (
	"fmt"
	"strings"
	"strconv"
	"math"
	"time"
	"regexp"
	"encoding/json"
)

var _ = fmt.Sprint
var _ = strings.Contains
var _ = strconv.Itoa
var _ = math.Abs
var _ = time.Now
var _ = regexp.MatchString
var _ = json.Valid
`

// Compile builds a predicate from a Go boolean expression over row.
func Compile(expression string) (Predicate, error) {
	if expression == "" {
		return nil, datatable.ErrInvalidFilter
	}
	return compile(fmt.Sprintf(`%s
func Match(row map[string]interface{}) bool {
	return %s
}
`, preamble, expression))
}

// CompileFunc builds a predicate from a full function body. The body has
// access to row and must return a bool.
func CompileFunc(body string) (Predicate, error) {
	if body == "" {
		return nil, datatable.ErrInvalidFilter
	}
	return compile(fmt.Sprintf(`%s
func Match(row map[string]interface{}) bool {
	%s
}
`, preamble, body))
}

func compile(program string) (Predicate, error) {
	// Interpreter output is discarded; expressions should not print.
	var outputBuffer bytes.Buffer

	i := interp.New(interp.Options{
		Stdout: &outputBuffer,
		Stderr: &outputBuffer,
	})

	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("error loading stdlib: %w", err)
	}

	if _, err := i.Eval(program); err != nil {
		return nil, fmt.Errorf("error compiling expression: %w", err)
	}

	v, err := i.Eval("main.Match")
	if err != nil {
		return nil, fmt.Errorf("error resolving expression: %w", err)
	}

	fn, ok := v.Interface().(func(map[string]interface{}) bool)
	if !ok {
		return nil, fmt.Errorf("%w: expression is not a row predicate", datatable.ErrInvalidFilter)
	}

	// Interpreted panics (bad type assertions and the like) reject the row
	// instead of crashing the caller.
	return func(row map[string]interface{}) (matched bool) {
		defer func() {
			if r := recover(); r != nil {
				matched = false
			}
		}()
		return fn(row)
	}, nil
}

// RowFilter compiles an expression into a whole-row filter over value
// rows. Column ids map to the unwrapped raw cell values.
func RowFilter(expression string, columns []string) (datatable.FilterFunc[[]datatable.Value], error) {
	p, err := Compile(expression)
	if err != nil {
		return nil, err
	}
	return func(_ interface{}, row []datatable.Value) bool {
		m := make(map[string]interface{}, len(columns))
		for i, name := range columns {
			if i < len(row) {
				m[name] = datatable.RawValue(row[i])
			}
		}
		return p(m)
	}, nil
}
