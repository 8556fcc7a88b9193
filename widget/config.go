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

package widget

// SelectionMode controls what a tap on the table selects.
type SelectionMode int

const (
	// SelectionModeCell selects individual cells.
	SelectionModeCell SelectionMode = iota
	// SelectionModeRow selects whole rows and toggles the row in the
	// model's selection state.
	SelectionModeRow
)

// Config controls which parts of the DataTable widget are shown.
type Config struct {
	// ShowFilterBar shows a query entry above the table.
	ShowFilterBar bool

	// ShowStatusBar shows row/column counts and sort state below the table.
	ShowStatusBar bool

	// ShowPager shows page navigation and a page size selector.
	ShowPager bool

	// ShowColumnSelector adds a button that opens a column
	// visibility dialog.
	ShowColumnSelector bool

	// SelectionMode selects cell or row selection behavior.
	SelectionMode SelectionMode

	// AutoAdjustColumnWidths sizes columns to fit their headers.
	AutoAdjustColumnWidths bool

	// MinColumnWidth is the smallest width a column is given when
	// AutoAdjustColumnWidths is on.
	MinColumnWidth float32
}

// DefaultConfig returns the default widget configuration.
func DefaultConfig() Config {
	return Config{
		ShowFilterBar:          true,
		ShowStatusBar:          true,
		ShowPager:              true,
		ShowColumnSelector:     false,
		SelectionMode:          SelectionModeCell,
		AutoAdjustColumnWidths: true,
		MinColumnWidth:         100,
	}
}
