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
	"log/slog"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Model is the headless table engine. It owns the table state and derives
// the visible row set through the pipeline raw -> sort -> filter -> paginate.
//
// All methods are synchronous. The model is written from a single goroutine
// (typically the UI loop); an internal mutex additionally serializes access
// so that background loaders can read derived views safely.
type Model[T any] struct {
	mu sync.Mutex

	columns []column[T]
	colIdx  map[string]int
	data    []T
	ids     []string

	state   State
	filters map[string]matcher[T]

	getID     func(T, int) string
	pageSizes []int
	resets    ResetOptions
	cb        Callbacks
	coll      *collate.Collator
	logger    *slog.Logger

	manualSorting    bool
	manualFiltering  bool
	manualPagination bool

	disableSortBy       bool
	disableFilters      bool
	disablePagination   bool
	disableSelection    bool
	disableExpanding    bool
	disableColumnHiding bool

	observers map[int]func(State)
	nextObs   int
}

// New creates a model from the given options. Configuration mistakes
// (no columns, duplicate ids, missing accessors, negative page size) are
// reported as errors; data-shape mistakes degrade gracefully at runtime
// instead.
func New[T any](opts Options[T]) (*Model[T], error) {
	cols, colIdx, err := normalizeColumns(opts.Columns)
	if err != nil {
		return nil, err
	}
	if opts.Initial.PageSize < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPageSize, opts.Initial.PageSize)
	}

	m := &Model[T]{
		columns:             cols,
		colIdx:              colIdx,
		data:                opts.Data,
		state:               opts.Initial.clone().withDefaults(),
		filters:             map[string]matcher[T]{},
		getID:               opts.GetRowID,
		pageSizes:           opts.PageSizes,
		resets:              DefaultResets(),
		cb:                  opts.Callbacks,
		coll:                collate.New(language.Und),
		logger:              opts.Logger,
		manualSorting:       opts.ManualSorting,
		manualFiltering:     opts.ManualFiltering,
		manualPagination:    opts.ManualPagination,
		disableSortBy:       opts.DisableSortBy,
		disableFilters:      opts.DisableFilters,
		disablePagination:   opts.DisablePagination,
		disableSelection:    opts.DisableSelection,
		disableExpanding:    opts.DisableExpanding,
		disableColumnHiding: opts.DisableColumnHiding,
		observers:           map[int]func(State){},
	}
	if m.getID == nil {
		m.getID = func(_ T, index int) string { return strconv.Itoa(index) }
	}
	if len(m.pageSizes) == 0 {
		m.pageSizes = DefaultPageSizes
	}
	if opts.Resets != nil {
		m.resets = *opts.Resets
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}

	// Columns flagged Hidden start out in the hidden set.
	for _, c := range cols {
		if c.Hidden {
			m.state.HiddenColumns[c.ID] = true
		}
	}

	// Normalize any filters supplied through the initial state.
	for id, v := range m.state.Filters {
		mt, ok := normalizeFilter[T](v)
		if !ok {
			delete(m.state.Filters, id)
			continue
		}
		m.filters[id] = mt
	}

	m.ids = m.computeIDs(m.data)
	m.state.Page = m.clampPageLocked(m.state.Page)
	return m, nil
}

// computeIDs derives the row id for every raw row.
func (m *Model[T]) computeIDs(data []T) []string {
	ids := make([]string, len(data))
	for i, row := range data {
		ids[i] = m.getID(row, i)
	}
	return ids
}

// ---------------------------------------------------------------------------
// Derived views
// ---------------------------------------------------------------------------

// sortedIndexLocked returns raw-row indices in sorted order. The sort is
// stable, so rows with equal keys keep their original relative order and
// pagination stays deterministic across recomputation.
func (m *Model[T]) sortedIndexLocked() []int {
	idx := make([]int, len(m.data))
	for i := range idx {
		idx[i] = i
	}

	if m.manualSorting || m.disableSortBy || !m.state.Sort.IsSorted() {
		return idx
	}
	ci, ok := m.colIdx[m.state.Sort.ColumnID]
	if !ok || m.columns[ci].DisableSort {
		// Unknown or unsortable column: sorting is a no-op, not an error.
		return idx
	}

	col := m.columns[ci]
	dir := 1
	if m.state.Sort.Direction == SortDescending {
		dir = -1
	}

	sort.SliceStable(idx, func(i, j int) bool {
		a := RawValue(col.get(m.data[idx[i]]))
		b := RawValue(col.get(m.data[idx[j]]))

		// Custom comparators see every pair, nils included.
		if col.SortMode == SortCustom {
			return dir*col.Comparator(a, b) < 0
		}

		// Nulls sort to the end regardless of direction.
		switch {
		case a == nil && b == nil:
			return false
		case a == nil:
			return false
		case b == nil:
			return true
		}

		return dir*compareValues(a, b, col.SortMode, m.coll) < 0
	})
	return idx
}

// filteredIndexLocked applies every active filter (logical AND) to the
// sorted index.
func (m *Model[T]) filteredIndexLocked(sorted []int) []int {
	if m.manualFiltering || m.disableFilters || len(m.filters) == 0 {
		return sorted
	}

	out := make([]int, 0, len(sorted))
rows:
	for _, ri := range sorted {
		row := m.data[ri]
		for id, mt := range m.filters {
			ci, ok := m.colIdx[id]
			if !ok {
				// Unknown filter column: no constraint.
				continue
			}
			if !mt.fn(m.columns[ci].get(row), row) {
				continue rows
			}
		}
		out = append(out, ri)
	}
	return out
}

// totalPagesLocked computes the page count over the given filtered length.
// It is never below 1, so an empty result still reads "page 1 of 1".
func (m *Model[T]) totalPagesLocked(filtered int) int {
	if m.manualPagination || m.disablePagination {
		return 1
	}
	pages := (filtered + m.state.PageSize - 1) / m.state.PageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

// pageIndexLocked slices one page out of the filtered index.
func (m *Model[T]) pageIndexLocked(filtered []int) []int {
	if m.manualPagination || m.disablePagination {
		return filtered
	}
	start := m.state.Page * m.state.PageSize
	if start >= len(filtered) {
		return nil
	}
	end := start + m.state.PageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end]
}

func (m *Model[T]) rowsAt(idx []int) []T {
	rows := make([]T, len(idx))
	for i, ri := range idx {
		rows[i] = m.data[ri]
	}
	return rows
}

func (m *Model[T]) idsAt(idx []int) []string {
	ids := make([]string, len(idx))
	for i, ri := range idx {
		ids[i] = m.ids[ri]
	}
	return ids
}

// SortedData returns all rows in sorted order.
func (m *Model[T]) SortedData() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rowsAt(m.sortedIndexLocked())
}

// FilteredData returns the sorted rows that pass every active filter.
func (m *Model[T]) FilteredData() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rowsAt(m.filteredIndexLocked(m.sortedIndexLocked()))
}

// PageData returns the rows of the current page.
func (m *Model[T]) PageData() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rowsAt(m.pageIndexLocked(m.filteredIndexLocked(m.sortedIndexLocked())))
}

// PageRowIDs returns the row ids of the current page, aligned with PageData.
func (m *Model[T]) PageRowIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.idsAt(m.pageIndexLocked(m.filteredIndexLocked(m.sortedIndexLocked())))
}

// OriginalRowCount returns the raw row count, before filtering.
func (m *Model[T]) OriginalRowCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

// TotalRows returns the filtered row count.
func (m *Model[T]) TotalRows() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.filteredIndexLocked(m.sortedIndexLocked()))
}

// TotalPages returns the page count (at least 1).
func (m *Model[T]) TotalPages() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalPagesLocked(len(m.filteredIndexLocked(m.sortedIndexLocked())))
}

// Columns returns all column definitions in declaration order.
func (m *Model[T]) Columns() []Column[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	cols := make([]Column[T], len(m.columns))
	for i, c := range m.columns {
		cols[i] = c.Column
	}
	return cols
}

// VisibleColumns returns the columns not currently hidden, preserving
// declaration order.
func (m *Model[T]) VisibleColumns() []Column[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	cols := make([]Column[T], 0, len(m.columns))
	for _, c := range m.columns {
		if !m.state.HiddenColumns[c.ID] {
			cols = append(cols, c.Column)
		}
	}
	return cols
}

// ColumnByID looks up a column definition.
func (m *Model[T]) ColumnByID(id string) (Column[T], bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ci, ok := m.colIdx[id]
	if !ok {
		return Column[T]{}, false
	}
	return m.columns[ci].Column, true
}

// PageSizes returns the candidate page sizes for pagers.
func (m *Model[T]) PageSizes() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, len(m.pageSizes))
	copy(out, m.pageSizes)
	return out
}

// State returns the current state snapshot. Treat it as read-only.
func (m *Model[T]) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsRowSelected reports whether the row id is selected.
func (m *Model[T]) IsRowSelected(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.SelectedRows[id]
}

// IsRowExpanded reports whether the row id is expanded.
func (m *Model[T]) IsRowExpanded(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.ExpandedRows[id]
}

// AreAllRowsSelected reports whether every row on the current page is
// selected. It is false for an empty page. It drives a header checkbox's
// checked state.
func (m *Model[T]) AreAllRowsSelected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.idsAt(m.pageIndexLocked(m.filteredIndexLocked(m.sortedIndexLocked())))
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		if !m.state.SelectedRows[id] {
			return false
		}
	}
	return true
}

// AreSomeRowsSelected reports whether at least one, but not all, rows on the
// current page are selected. It drives a header checkbox's indeterminate
// state.
func (m *Model[T]) AreSomeRowsSelected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.idsAt(m.pageIndexLocked(m.filteredIndexLocked(m.sortedIndexLocked())))
	selected := 0
	for _, id := range ids {
		if m.state.SelectedRows[id] {
			selected++
		}
	}
	return selected > 0 && selected < len(ids)
}

// ---------------------------------------------------------------------------
// Intents
// ---------------------------------------------------------------------------

// SetSort cycles the sort for the column: ascending -> descending -> none.
// Sorting a different column starts at ascending. Unknown or unsortable
// columns are ignored.
func (m *Model[T]) SetSort(columnID string) {
	if m.disableSortBy {
		return
	}

	m.mu.Lock()
	ci, ok := m.colIdx[columnID]
	if !ok || m.columns[ci].DisableSort {
		m.mu.Unlock()
		m.logger.Debug("ignoring sort on unknown or unsortable column", "column", columnID)
		return
	}

	next := SortState{ColumnID: columnID, Direction: SortAscending}
	if m.state.Sort.ColumnID == columnID {
		switch m.state.Sort.Direction {
		case SortAscending:
			next.Direction = SortDescending
		case SortDescending:
			next = SortState{}
		}
	}

	st := m.state.clone()
	st.Sort = next
	m.state = st
	m.mu.Unlock()

	m.emit(st, func() {
		if m.cb.OnSort != nil {
			m.cb.OnSort(next)
		}
	})
}

// SetFilter sets (or, with a nil or empty value, clears) the filter for a
// column. The value is either a substring pattern or a FilterFunc predicate.
// Setting any filter returns to the first page, since the previous page's
// row positions are no longer meaningful.
func (m *Model[T]) SetFilter(columnID string, value interface{}) {
	if m.disableFilters {
		return
	}

	m.mu.Lock()
	st := m.state.clone()
	mt, active := normalizeFilter[T](value)
	if active {
		st.Filters[columnID] = mt.raw
		m.filters[columnID] = mt
	} else {
		delete(st.Filters, columnID)
		delete(m.filters, columnID)
	}
	st.Page = 0
	m.state = st
	filters := st.Filters
	m.mu.Unlock()

	m.emit(st, func() {
		if m.cb.OnFilterChange != nil {
			m.cb.OnFilterChange(filters)
		}
	})
}

// ClearFilters removes every active filter and returns to the first page.
func (m *Model[T]) ClearFilters() {
	if m.disableFilters {
		return
	}

	m.mu.Lock()
	st := m.state.clone()
	st.Filters = map[string]interface{}{}
	st.Page = 0
	m.filters = map[string]matcher[T]{}
	m.state = st
	m.mu.Unlock()

	m.emit(st, func() {
		if m.cb.OnFilterChange != nil {
			m.cb.OnFilterChange(st.Filters)
		}
	})
}

// SetPage requests a page change. Out-of-range requests are clamped to the
// valid range; the effective page is returned so boundary bugs surface in
// tests instead of producing silently empty slices.
func (m *Model[T]) SetPage(n int) int {
	if m.disablePagination {
		return 0
	}

	m.mu.Lock()
	page := m.clampPageLocked(n)
	if page != n {
		m.logger.Debug("page request clamped", "requested", n, "page", page)
	}
	if page == m.state.Page {
		m.mu.Unlock()
		return page
	}
	st := m.state.clone()
	st.Page = page
	m.state = st
	m.mu.Unlock()

	m.emit(st, func() {
		if m.cb.OnPageChange != nil {
			m.cb.OnPageChange(page)
		}
	})
	return page
}

// clampPageLocked bounds a page index into [0, totalPages-1] for the current
// filtered row count.
func (m *Model[T]) clampPageLocked(n int) int {
	last := m.totalPagesLocked(len(m.filteredIndexLocked(m.sortedIndexLocked()))) - 1
	if n > last {
		n = last
	}
	if n < 0 {
		n = 0
	}
	return n
}

// SetPageSize changes the rows-per-page and returns to the first page (an
// offset valid under the old size is confusing under the new one).
// Non-positive sizes are rejected.
func (m *Model[T]) SetPageSize(n int) {
	if m.disablePagination {
		return
	}
	if n <= 0 {
		m.logger.Warn("rejecting invalid page size", "size", n)
		return
	}

	m.mu.Lock()
	st := m.state.clone()
	st.PageSize = n
	st.Page = 0
	m.state = st
	m.mu.Unlock()

	m.emit(st, func() {
		if m.cb.OnPageSizeChange != nil {
			m.cb.OnPageSizeChange(n)
		}
	})
}

// ToggleRowSelected flips the selection of one row id.
func (m *Model[T]) ToggleRowSelected(id string) {
	if m.disableSelection {
		return
	}

	m.mu.Lock()
	st := m.state.clone()
	if st.SelectedRows[id] {
		delete(st.SelectedRows, id)
	} else {
		st.SelectedRows[id] = true
	}
	m.state = st
	m.mu.Unlock()

	m.emit(st, func() {
		if m.cb.OnRowSelect != nil {
			m.cb.OnRowSelect(st.SelectedRows)
		}
	})
}

// SelectAllVisible toggles selection for the rows of the current page only:
// if every visible row is already selected they are all deselected,
// otherwise they are all selected. Rows outside the current page keep their
// previous state.
func (m *Model[T]) SelectAllVisible() {
	if m.disableSelection {
		return
	}

	m.mu.Lock()
	ids := m.idsAt(m.pageIndexLocked(m.filteredIndexLocked(m.sortedIndexLocked())))
	if len(ids) == 0 {
		m.mu.Unlock()
		return
	}

	all := true
	for _, id := range ids {
		if !m.state.SelectedRows[id] {
			all = false
			break
		}
	}

	st := m.state.clone()
	for _, id := range ids {
		if all {
			delete(st.SelectedRows, id)
		} else {
			st.SelectedRows[id] = true
		}
	}
	m.state = st
	m.mu.Unlock()

	m.emit(st, func() {
		if m.cb.OnRowSelect != nil {
			m.cb.OnRowSelect(st.SelectedRows)
		}
	})
}

// ToggleRowExpanded flips the expansion of one row id.
func (m *Model[T]) ToggleRowExpanded(id string) {
	if m.disableExpanding {
		return
	}

	m.mu.Lock()
	st := m.state.clone()
	if st.ExpandedRows[id] {
		delete(st.ExpandedRows, id)
	} else {
		st.ExpandedRows[id] = true
	}
	m.state = st
	m.mu.Unlock()

	m.emit(st, func() {
		if m.cb.OnRowExpand != nil {
			m.cb.OnRowExpand(st.ExpandedRows)
		}
	})
}

// ToggleColumnVisibility flips a column in or out of the hidden set. It is a
// no-op when column hiding is disabled or the column is unknown.
func (m *Model[T]) ToggleColumnVisibility(columnID string) {
	if m.disableColumnHiding {
		return
	}

	m.mu.Lock()
	if _, ok := m.colIdx[columnID]; !ok {
		m.mu.Unlock()
		return
	}
	st := m.state.clone()
	if st.HiddenColumns[columnID] {
		delete(st.HiddenColumns, columnID)
	} else {
		st.HiddenColumns[columnID] = true
	}
	m.state = st
	m.mu.Unlock()

	m.emit(st)
}

// SetData replaces the raw row set and applies the configured auto-resets.
// The page is re-clamped even when page reset is off, so the invariant
// page < totalPages survives a shrinking data set.
func (m *Model[T]) SetData(data []T) {
	m.mu.Lock()
	m.data = data
	m.ids = m.computeIDs(data)

	st := m.state.clone()
	if m.resets.Sort {
		st.Sort = SortState{}
	}
	if m.resets.Selection {
		st.SelectedRows = map[string]bool{}
	}
	if m.resets.Expansion {
		st.ExpandedRows = map[string]bool{}
	}
	if m.resets.Page {
		st.Page = 0
	}
	if m.resets.Filters {
		st.Filters = map[string]interface{}{}
		m.filters = map[string]matcher[T]{}
	}
	m.state = st
	m.state.Page = m.clampPageLocked(m.state.Page)
	st = m.state
	m.mu.Unlock()

	m.emit(st)
}

// SetColumns replaces the column set. State keyed by column id (sort,
// filters, hidden set) is kept; entries referencing columns that no longer
// exist simply stop having an effect.
func (m *Model[T]) SetColumns(cols []Column[T]) error {
	normalized, colIdx, err := normalizeColumns(cols)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.columns = normalized
	m.colIdx = colIdx
	st := m.state.clone()
	for _, c := range normalized {
		if c.Hidden {
			st.HiddenColumns[c.ID] = true
		}
	}
	m.state = st
	m.mu.Unlock()

	m.emit(st)
	return nil
}

// SetState replaces the whole state on explicit caller request.
func (m *Model[T]) SetState(s State) {
	m.mu.Lock()
	m.state = s.clone().withDefaults()
	m.filters = map[string]matcher[T]{}
	for id, v := range m.state.Filters {
		mt, ok := normalizeFilter[T](v)
		if !ok {
			delete(m.state.Filters, id)
			continue
		}
		m.filters[id] = mt
	}
	m.state.Page = m.clampPageLocked(m.state.Page)
	st := m.state
	m.mu.Unlock()

	m.emit(st)
}
