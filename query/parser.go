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

// Package query parses and evaluates search expressions over table rows.
//
// The language is the one the filter bar speaks: comparisons of the form
// "column OP value" with OP one of =, !=, >, <, >=, <= and ~ (contains),
// joined by AND/OR. A bare term without an operator is a contains-search
// across all columns. Values may be quoted.
package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/magpierre/go-datatable/datatable"
)

// CompOp is a comparison operator.
type CompOp int

const (
	OpEqual CompOp = iota
	OpNotEqual
	OpGreater
	OpLess
	OpGreaterEqual
	OpLessEqual
	OpContains
)

// LogicOp joins two expressions.
type LogicOp int

const (
	LogicAND LogicOp = iota
	LogicOR
)

// Expression represents a single comparison.
type Expression struct {
	ColumnName string
	Operator   CompOp
	Value      string
}

// Query represents a complete query with multiple expressions.
type Query struct {
	Expressions []Expression
	LogicOps    []LogicOp // Operations between expressions
}

// Parser parses and evaluates queries against a fixed column set.
type Parser struct {
	columns   []string
	columnMap map[string]int // Maps lower-cased column names to indices
}

// NewParser creates a parser for the given column names.
func NewParser(columns []string) *Parser {
	columnMap := make(map[string]int, len(columns))
	for i, name := range columns {
		columnMap[strings.ToLower(name)] = i
	}
	return &Parser{columns: columns, columnMap: columnMap}
}

// Parse parses a query string. An empty input yields a nil query, which
// matches every row.
func (p *Parser) Parse(input string) (*Query, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}

	query := &Query{}
	parts := p.splitByLogicOps(input)
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty query")
	}

	for _, part := range parts {
		if part.isOperator {
			if strings.EqualFold(part.text, "AND") {
				query.LogicOps = append(query.LogicOps, LogicAND)
			} else {
				query.LogicOps = append(query.LogicOps, LogicOR)
			}
			continue
		}
		expr, err := p.parseExpression(part.text)
		if err != nil {
			return nil, err
		}
		query.Expressions = append(query.Expressions, expr)
	}

	if len(query.LogicOps) != len(query.Expressions)-1 {
		return nil, fmt.Errorf("invalid query: mismatched expressions and operators")
	}
	return query, nil
}

type queryPart struct {
	text       string
	isOperator bool
}

// splitByLogicOps splits query by AND/OR while preserving the operators.
func (p *Parser) splitByLogicOps(query string) []queryPart {
	parts := make([]queryPart, 0)
	current := ""
	i := 0

	flush := func() {
		if strings.TrimSpace(current) != "" {
			parts = append(parts, queryPart{text: strings.TrimSpace(current)})
			current = ""
		}
	}

	for i < len(query) {
		if i+3 <= len(query) && strings.EqualFold(query[i:i+3], "AND") {
			if (i == 0 || isWhitespace(query[i-1])) && (i+3 >= len(query) || isWhitespace(query[i+3])) {
				flush()
				parts = append(parts, queryPart{text: "AND", isOperator: true})
				i += 3
				continue
			}
		}

		if i+2 <= len(query) && strings.EqualFold(query[i:i+2], "OR") {
			if (i == 0 || isWhitespace(query[i-1])) && (i+2 >= len(query) || isWhitespace(query[i+2])) {
				flush()
				parts = append(parts, queryPart{text: "OR", isOperator: true})
				i += 2
				continue
			}
		}

		current += string(query[i])
		i++
	}
	flush()

	return parts
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// compOps is ordered so that two-character operators match before their
// one-character prefixes.
var compOps = []struct {
	op     CompOp
	symbol string
}{
	{OpGreaterEqual, ">="},
	{OpLessEqual, "<="},
	{OpNotEqual, "!="},
	{OpEqual, "="},
	{OpGreater, ">"},
	{OpLess, "<"},
	{OpContains, "~"},
}

// parseExpression parses a single expression like "column = value".
func (p *Parser) parseExpression(input string) (Expression, error) {
	input = strings.TrimSpace(input)

	for _, opInfo := range compOps {
		idx := strings.Index(input, opInfo.symbol)
		if idx <= 0 {
			continue
		}

		columnName := strings.TrimSpace(input[:idx])
		value := strings.TrimSpace(input[idx+len(opInfo.symbol):])
		value = strings.Trim(value, "\"'")

		if _, exists := p.columnMap[strings.ToLower(columnName)]; !exists {
			return Expression{}, fmt.Errorf("%w: %s", datatable.ErrColumnNotFound, columnName)
		}

		return Expression{ColumnName: columnName, Operator: opInfo.op, Value: value}, nil
	}

	// No operator found: contains-search across all columns.
	return Expression{Operator: OpContains, Value: input}, nil
}

// Match evaluates a query against one row of values. A nil query matches.
func (p *Parser) Match(query *Query, row []datatable.Value) bool {
	if query == nil || len(query.Expressions) == 0 {
		return true
	}

	result := p.evaluateExpression(query.Expressions[0], row)
	for i := 0; i < len(query.LogicOps); i++ {
		next := p.evaluateExpression(query.Expressions[i+1], row)
		switch query.LogicOps[i] {
		case LogicAND:
			result = result && next
		case LogicOR:
			result = result || next
		}
	}
	return result
}

// evaluateExpression evaluates a single expression against a row.
func (p *Parser) evaluateExpression(expr Expression, row []datatable.Value) bool {
	if expr.ColumnName == "" && expr.Operator == OpContains {
		needle := strings.ToLower(expr.Value)
		for _, cell := range row {
			if strings.Contains(strings.ToLower(cell.Formatted), needle) {
				return true
			}
		}
		return false
	}

	colIdx, exists := p.columnMap[strings.ToLower(expr.ColumnName)]
	if !exists || colIdx >= len(row) {
		return false
	}
	cell := row[colIdx].Formatted

	switch expr.Operator {
	case OpEqual:
		return strings.EqualFold(cell, expr.Value)
	case OpNotEqual:
		return !strings.EqualFold(cell, expr.Value)
	case OpContains:
		return strings.Contains(strings.ToLower(cell), strings.ToLower(expr.Value))
	case OpGreater, OpLess, OpGreaterEqual, OpLessEqual:
		return compareNumeric(cell, expr.Value, expr.Operator)
	}
	return false
}

// compareNumeric compares two values numerically, falling back to a
// case-folded string comparison when either side is not a number.
func compareNumeric(cellValue, compareValue string, op CompOp) bool {
	cell, err1 := strconv.ParseFloat(strings.TrimSpace(cellValue), 64)
	compare, err2 := strconv.ParseFloat(strings.TrimSpace(compareValue), 64)
	if err1 != nil || err2 != nil {
		return compareString(cellValue, compareValue, op)
	}

	switch op {
	case OpGreater:
		return cell > compare
	case OpLess:
		return cell < compare
	case OpGreaterEqual:
		return cell >= compare
	case OpLessEqual:
		return cell <= compare
	}
	return false
}

// compareString compares two strings lexicographically, ignoring case.
func compareString(cellValue, compareValue string, op CompOp) bool {
	cmp := strings.Compare(strings.ToLower(cellValue), strings.ToLower(compareValue))

	switch op {
	case OpGreater:
		return cmp > 0
	case OpLess:
		return cmp < 0
	case OpGreaterEqual:
		return cmp >= 0
	case OpLessEqual:
		return cmp <= 0
	}
	return false
}

// Filter compiles a query string into a whole-row filter for a
// source-backed model. Attach it to any column: the predicate ignores the
// single cell value and evaluates the query over the full row.
func Filter(input string, columns []string) (datatable.FilterFunc[[]datatable.Value], error) {
	p := NewParser(columns)
	q, err := p.Parse(input)
	if err != nil {
		return nil, err
	}
	return func(_ interface{}, row []datatable.Value) bool {
		return p.Match(q, row)
	}, nil
}
