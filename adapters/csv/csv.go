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

// Package csv adapts CSV files to the datatable.DataSource interface.
package csv

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/magpierre/go-datatable/datatable"
)

// Config controls how CSV input is read.
type Config struct {
	// Delimiter is the field separator.
	Delimiter rune

	// HasHeaders treats the first record as column names. Without headers,
	// columns are named column_1, column_2, ...
	HasHeaders bool

	// TrimSpace removes leading and trailing whitespace from fields.
	TrimSpace bool

	// InferTypes scans each column and types it Int/Float/Bool/Date/
	// Timestamp when every non-empty field parses as such. Off, every
	// column is a string.
	InferTypes bool
}

// DefaultConfig returns the config most files want: comma-separated,
// headers, trimmed fields, inferred types.
func DefaultConfig() Config {
	return Config{Delimiter: ',', HasHeaders: true, TrimSpace: true, InferTypes: true}
}

// Source is a CSV-backed data source, fully read into memory.
type Source struct {
	names []string
	types []datatable.DataType
	cells [][]datatable.Value
	meta  datatable.Metadata
}

// NewFromFile reads a CSV file into a data source.
func NewFromFile(path string, config Config) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	s, err := NewFromReader(f, config)
	if err != nil {
		return nil, err
	}
	s.meta["path"] = path
	return s, nil
}

// NewFromReader reads CSV data into a data source.
func NewFromReader(r io.Reader, config Config) (*Source, error) {
	if config.Delimiter == 0 {
		config.Delimiter = ','
	}

	reader := csv.NewReader(r)
	reader.Comma = config.Delimiter
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, datatable.ErrEmptyData
	}

	var names []string
	if config.HasHeaders {
		names = records[0]
		records = records[1:]
	} else {
		names = make([]string, len(records[0]))
		for i := range names {
			names[i] = fmt.Sprintf("column_%d", i+1)
		}
	}
	if config.TrimSpace {
		for i, n := range names {
			names[i] = strings.TrimSpace(n)
		}
		for _, rec := range records {
			for i, field := range rec {
				rec[i] = strings.TrimSpace(field)
			}
		}
	}

	types := make([]datatable.DataType, len(names))
	for c := range names {
		if config.InferTypes {
			types[c] = inferColumnType(records, c)
		} else {
			types[c] = datatable.TypeString
		}
	}

	cells := make([][]datatable.Value, len(records))
	for r, rec := range records {
		row := make([]datatable.Value, len(names))
		for c := range names {
			if c >= len(rec) {
				row[c] = datatable.NewNullValue(types[c])
				continue
			}
			row[c] = parseCell(rec[c], types[c])
		}
		cells[r] = row
	}

	return &Source{names: names, types: types, cells: cells, meta: datatable.Metadata{}}, nil
}

// DetectDelimiter guesses the separator from the first line of a file by
// counting candidate separators and picking the most frequent one. Files
// where no candidate appears default to comma.
func DetectDelimiter(path string) (rune, error) {
	f, err := os.Open(path)
	if err != nil {
		return ',', fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return ',', nil
	}
	firstLine := scanner.Text()
	if firstLine == "" {
		return ',', nil
	}

	separators := map[rune]int{
		',':  strings.Count(firstLine, ","),
		';':  strings.Count(firstLine, ";"),
		'\t': strings.Count(firstLine, "\t"),
		'|':  strings.Count(firstLine, "|"),
	}

	maxCount := 0
	detected := ','
	for sep, count := range separators {
		if count > maxCount {
			maxCount = count
			detected = sep
		}
	}
	return detected, nil
}

// dateLayouts are the string shapes recognized during type inference.
var (
	dateLayout       = "2006-01-02"
	timestampLayouts = []string{time.RFC3339, "2006-01-02 15:04:05"}
)

// inferColumnType types a column by what every non-empty field parses as.
func inferColumnType(records [][]string, col int) datatable.DataType {
	isInt, isFloat, isBool, isDate, isTimestamp := true, true, true, true, true
	seen := false

	for _, rec := range records {
		if col >= len(rec) || rec[col] == "" {
			continue
		}
		seen = true
		field := rec[col]

		if isInt {
			if _, err := strconv.ParseInt(field, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, err := strconv.ParseFloat(field, 64); err != nil {
				isFloat = false
			}
		}
		if isBool {
			if _, err := strconv.ParseBool(field); err != nil {
				isBool = false
			}
		}
		if isDate {
			if _, err := time.Parse(dateLayout, field); err != nil {
				isDate = false
			}
		}
		if isTimestamp {
			if !parsesAsTimestamp(field) {
				isTimestamp = false
			}
		}

		if !isInt && !isFloat && !isBool && !isDate && !isTimestamp {
			break
		}
	}

	switch {
	case !seen:
		return datatable.TypeString
	case isInt:
		return datatable.TypeInt
	case isFloat:
		return datatable.TypeFloat
	case isBool:
		return datatable.TypeBool
	case isDate:
		return datatable.TypeDate
	case isTimestamp:
		return datatable.TypeTimestamp
	default:
		return datatable.TypeString
	}
}

func parsesAsTimestamp(field string) bool {
	for _, layout := range timestampLayouts {
		if _, err := time.Parse(layout, field); err == nil {
			return true
		}
	}
	return false
}

// parseCell converts one field into a typed Value. Empty fields become
// nulls for non-string columns.
func parseCell(field string, dt datatable.DataType) datatable.Value {
	if field == "" && dt != datatable.TypeString {
		return datatable.NewNullValue(dt)
	}

	switch dt {
	case datatable.TypeInt:
		if n, err := strconv.ParseInt(field, 10, 64); err == nil {
			return datatable.NewValue(n, dt)
		}
	case datatable.TypeFloat:
		if f, err := strconv.ParseFloat(field, 64); err == nil {
			return datatable.NewValue(f, dt)
		}
	case datatable.TypeBool:
		if b, err := strconv.ParseBool(field); err == nil {
			return datatable.NewValue(b, dt)
		}
	case datatable.TypeDate:
		if t, err := time.Parse(dateLayout, field); err == nil {
			return datatable.NewValue(t, dt)
		}
	case datatable.TypeTimestamp:
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, field); err == nil {
				return datatable.NewValue(t, dt)
			}
		}
	}
	return datatable.NewValue(field, datatable.TypeString)
}

// RowCount returns the total number of rows in the data source.
func (s *Source) RowCount() int { return len(s.cells) }

// ColumnCount returns the total number of columns in the data source.
func (s *Source) ColumnCount() int { return len(s.names) }

// ColumnName returns the name of the column at the given index.
func (s *Source) ColumnName(col int) (string, error) {
	if col < 0 || col >= len(s.names) {
		return "", datatable.ErrInvalidColumn
	}
	return s.names[col], nil
}

// ColumnType returns the data type of the column at the given index.
func (s *Source) ColumnType(col int) (datatable.DataType, error) {
	if col < 0 || col >= len(s.types) {
		return 0, datatable.ErrInvalidColumn
	}
	return s.types[col], nil
}

// Cell returns the value at the specified row and column.
func (s *Source) Cell(row, col int) (datatable.Value, error) {
	if row < 0 || row >= len(s.cells) {
		return datatable.Value{}, datatable.ErrInvalidRow
	}
	if col < 0 || col >= len(s.names) {
		return datatable.Value{}, datatable.ErrInvalidColumn
	}
	return s.cells[row][col], nil
}

// Row returns all values for the specified row.
func (s *Source) Row(row int) ([]datatable.Value, error) {
	if row < 0 || row >= len(s.cells) {
		return nil, datatable.ErrInvalidRow
	}
	out := make([]datatable.Value, len(s.cells[row]))
	copy(out, s.cells[row])
	return out, nil
}

// Metadata returns optional metadata about the data source.
func (s *Source) Metadata() datatable.Metadata { return s.meta }
