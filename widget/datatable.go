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

// Package widget provides a Fyne table widget driven by a datatable
// model. Sorting, filtering, pagination and column visibility are wired
// to the model's intents; the widget redraws itself from model
// notifications.
package widget

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	fynetooltip "github.com/dweymouth/fyne-tooltip"

	"github.com/magpierre/go-datatable/datatable"
	"github.com/magpierre/go-datatable/query"
)

// DataTable is a table widget over a value model.
type DataTable struct {
	widget.BaseWidget

	model *datatable.Model[[]datatable.Value]
	cfg   Config
	w     fyne.Window

	table       *widget.Table
	filterEntry *widget.Entry
	status      *widget.Label
	pageLabel   *widget.Label
	prevButton  *widget.Button
	nextButton  *widget.Button
	sizeSelect  *widget.Select
	content     *fyne.Container

	// view caches rebuilt on every model notification
	rows    [][]datatable.Value
	cols    []datatable.Column[[]datatable.Value]
	colPos  []int
	rowIDs  []string
	onCell  func(row, col int)
	unsub   func()
}

// NewDataTable creates a table widget with the default configuration.
func NewDataTable(model *datatable.Model[[]datatable.Value]) *DataTable {
	return NewDataTableWithConfig(model, DefaultConfig())
}

// NewDataTableWithConfig creates a table widget with the given
// configuration.
func NewDataTableWithConfig(model *datatable.Model[[]datatable.Value], cfg Config) *DataTable {
	dt := &DataTable{
		model: model,
		cfg:   cfg,
	}
	dt.ExtendBaseWidget(dt)

	dt.buildTable()
	dt.buildChrome()
	dt.unsub = model.Subscribe(func(datatable.State) {
		dt.refreshView()
	})
	dt.refreshView()

	return dt
}

// SetWindow attaches the parent window, used for dialogs.
func (dt *DataTable) SetWindow(w fyne.Window) {
	dt.w = w
}

// OnCellSelected registers a selection handler. In row selection mode
// the column is reported as -1.
func (dt *DataTable) OnCellSelected(fn func(row, col int)) {
	dt.onCell = fn
}

// Model returns the underlying table model.
func (dt *DataTable) Model() *datatable.Model[[]datatable.Value] {
	return dt.model
}

// Close detaches the widget from model notifications.
func (dt *DataTable) Close() {
	if dt.unsub != nil {
		dt.unsub()
		dt.unsub = nil
	}
}

// CreateRenderer implements fyne.Widget.
func (dt *DataTable) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(dt.content)
}

func (dt *DataTable) buildTable() {
	dt.table = widget.NewTable(
		func() (int, int) {
			return len(dt.rows), len(dt.cols)
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("")
		},
		func(id widget.TableCellID, o fyne.CanvasObject) {
			label := o.(*widget.Label)
			label.SetText(dt.cellText(id.Row, id.Col))
		},
	)

	dt.table.ShowHeaderRow = true
	dt.table.CreateHeader = func() fyne.CanvasObject {
		return widget.NewButton("", nil)
	}
	dt.table.UpdateHeader = func(id widget.TableCellID, o fyne.CanvasObject) {
		button := o.(*widget.Button)
		if id.Col < 0 || id.Col >= len(dt.cols) {
			button.SetText("")
			button.OnTapped = nil
			return
		}
		col := dt.cols[id.Col]
		button.SetText(dt.headerText(col))
		button.OnTapped = func() {
			dt.model.SetSort(col.ID)
		}
	}

	dt.table.OnSelected = func(id widget.TableCellID) {
		if id.Row < 0 || id.Row >= len(dt.rows) {
			return
		}
		if dt.cfg.SelectionMode == SelectionModeRow {
			if id.Row < len(dt.rowIDs) {
				dt.model.ToggleRowSelected(dt.rowIDs[id.Row])
			}
			if dt.onCell != nil {
				dt.onCell(id.Row, -1)
			}
			return
		}
		if dt.onCell != nil {
			dt.onCell(id.Row, id.Col)
		}
	}
}

func (dt *DataTable) buildChrome() {
	var top fyne.CanvasObject
	if dt.cfg.ShowFilterBar {
		dt.filterEntry = widget.NewEntry()
		dt.filterEntry.SetPlaceHolder(`Filter (e.g. name ~ smith AND age >= 30)`)
		dt.filterEntry.OnSubmitted = func(input string) {
			dt.applyQuery(input)
		}

		clearButton := widget.NewButtonWithIcon("", theme.ContentClearIcon(), func() {
			dt.filterEntry.SetText("")
			dt.applyQuery("")
		})

		items := []fyne.CanvasObject{clearButton}
		if dt.cfg.ShowColumnSelector {
			items = append(items, widget.NewButtonWithIcon("", theme.SettingsIcon(), dt.showColumnSelector))
		}
		top = container.NewBorder(nil, nil, nil, container.NewHBox(items...), dt.filterEntry)
	}

	var bottomItems []fyne.CanvasObject
	if dt.cfg.ShowPager {
		dt.prevButton = widget.NewButtonWithIcon("", theme.NavigateBackIcon(), func() {
			dt.model.SetPage(dt.model.State().Page - 1)
		})
		dt.nextButton = widget.NewButtonWithIcon("", theme.NavigateNextIcon(), func() {
			dt.model.SetPage(dt.model.State().Page + 1)
		})
		dt.pageLabel = widget.NewLabel("")

		sizes := dt.model.PageSizes()
		options := make([]string, len(sizes))
		for i, size := range sizes {
			options[i] = strconv.Itoa(size)
		}
		dt.sizeSelect = widget.NewSelect(options, func(selected string) {
			if n, err := strconv.Atoi(selected); err == nil {
				dt.model.SetPageSize(n)
			}
		})
		dt.sizeSelect.SetSelected(strconv.Itoa(dt.model.State().PageSize))

		bottomItems = append(bottomItems,
			container.NewHBox(dt.prevButton, dt.pageLabel, dt.nextButton, dt.sizeSelect))
	}
	if dt.cfg.ShowStatusBar {
		dt.status = widget.NewLabel("")
		bottomItems = append(bottomItems, dt.status)
	}

	var bottom fyne.CanvasObject
	if len(bottomItems) > 0 {
		bottom = container.NewVBox(bottomItems...)
	}

	dt.content = container.NewBorder(top, bottom, nil, nil, dt.table)
}

// refreshView rebuilds the cached page view and redraws the widget.
func (dt *DataTable) refreshView() {
	dt.rows = dt.model.PageData()
	dt.rowIDs = dt.model.PageRowIDs()

	st := dt.model.State()
	all := dt.model.Columns()
	dt.cols = dt.cols[:0]
	dt.colPos = dt.colPos[:0]
	for i, c := range all {
		if st.HiddenColumns[c.ID] {
			continue
		}
		dt.cols = append(dt.cols, c)
		dt.colPos = append(dt.colPos, i)
	}

	if dt.cfg.AutoAdjustColumnWidths {
		for i, c := range dt.cols {
			width := fyne.MeasureText(dt.headerText(c), theme.TextSize(), fyne.TextStyle{Bold: true}).Width + theme.Padding()*6
			if width < dt.cfg.MinColumnWidth {
				width = dt.cfg.MinColumnWidth
			}
			dt.table.SetColumnWidth(i, width)
		}
	}

	dt.updateStatus(st)
	dt.updatePager(st)
	dt.table.Refresh()
}

func (dt *DataTable) cellText(row, col int) string {
	if row < 0 || row >= len(dt.rows) || col < 0 || col >= len(dt.colPos) {
		return ""
	}
	values := dt.rows[row]
	pos := dt.colPos[col]
	if pos >= len(values) {
		return ""
	}
	return values[pos].Formatted
}

func (dt *DataTable) headerText(c datatable.Column[[]datatable.Value]) string {
	title := c.Title
	if title == "" {
		title = c.ID
	}

	st := dt.model.State()
	if st.Sort.ColumnID == c.ID {
		switch st.Sort.Direction {
		case datatable.SortAscending:
			return title + " ↑"
		case datatable.SortDescending:
			return title + " ↓"
		}
	}
	return title
}

func (dt *DataTable) updateStatus(st datatable.State) {
	if dt.status == nil {
		return
	}

	total := dt.model.OriginalRowCount()
	visible := dt.model.TotalRows()

	var text string
	if visible != total {
		text = fmt.Sprintf("%d columns x %d/%d rows", len(dt.cols), visible, total)
	} else {
		text = fmt.Sprintf("%d columns x %d rows", len(dt.cols), total)
	}

	if st.Sort.IsSorted() {
		direction := "↑"
		if st.Sort.Direction == datatable.SortDescending {
			direction = "↓"
		}
		text += fmt.Sprintf(" | Sorted: %s %s", st.Sort.ColumnID, direction)
	}
	if n := len(st.SelectedRows); n > 0 {
		text += fmt.Sprintf(" | Selected: %d", n)
	}

	dt.status.SetText(text)
}

func (dt *DataTable) updatePager(st datatable.State) {
	if dt.pageLabel == nil {
		return
	}

	pages := dt.model.TotalPages()
	dt.pageLabel.SetText(fmt.Sprintf("Page %d/%d", st.Page+1, pages))

	if st.Page <= 0 {
		dt.prevButton.Disable()
	} else {
		dt.prevButton.Enable()
	}
	if st.Page >= pages-1 {
		dt.nextButton.Disable()
	} else {
		dt.nextButton.Enable()
	}
}

// applyQuery parses the filter bar input and installs it as a whole-row
// filter. An empty input clears all filters.
func (dt *DataTable) applyQuery(input string) {
	cols := dt.model.Columns()
	if len(cols) == 0 {
		return
	}

	if input == "" {
		dt.model.ClearFilters()
		return
	}

	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.ID
	}

	fn, err := query.Filter(input, names)
	if err != nil {
		if dt.w != nil {
			dialog.ShowError(err, dt.w)
		}
		return
	}

	// The predicate inspects the whole row, so the column it is keyed
	// under only serves as the filter map entry.
	dt.model.SetFilter(cols[0].ID, fn)
}

// showColumnSelector opens a dialog with a visibility checkbox per
// column.
func (dt *DataTable) showColumnSelector() {
	if dt.w == nil {
		return
	}

	st := dt.model.State()
	checks := make([]fyne.CanvasObject, 0, len(dt.model.Columns()))
	for _, c := range dt.model.Columns() {
		col := c
		title := col.Title
		if title == "" {
			title = col.ID
		}
		check := widget.NewCheck(title, func(bool) {
			dt.model.ToggleColumnVisibility(col.ID)
		})
		check.SetChecked(!st.HiddenColumns[col.ID])
		checks = append(checks, check)
	}

	dialog.ShowCustom("Columns", "Close", container.NewVScroll(container.NewVBox(checks...)), dt.w)
}

// WrapWithTooltips wraps the widget in a tooltip layer for the given
// canvas, enabling hover tooltips on its cells.
func WrapWithTooltips(content fyne.CanvasObject, canvas fyne.Canvas) fyne.CanvasObject {
	return fynetooltip.AddWindowToolTipLayer(content, canvas)
}
