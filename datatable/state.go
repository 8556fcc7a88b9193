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
	"log/slog"
	"maps"
)

// DefaultPageSize is used when no initial page size is supplied.
const DefaultPageSize = 10

// DefaultPageSizes is the default candidate set offered by pagers.
var DefaultPageSizes = []int{10, 25, 50, 100}

// State is the full table state. The model replaces the whole State on every
// transition and hands out snapshots; callers must treat a snapshot (and its
// maps) as read-only.
type State struct {
	// Sort is the single active sort column and direction.
	Sort SortState

	// SelectedRows maps row id -> true for selected rows. Absent means
	// unselected.
	SelectedRows map[string]bool

	// ExpandedRows maps row id -> true for expanded rows.
	ExpandedRows map[string]bool

	// Page is the zero-based current page index.
	Page int

	// PageSize is the number of rows per page.
	PageSize int

	// Filters maps column id -> filter value (a string for substring
	// matching, or a FilterFunc predicate).
	Filters map[string]interface{}

	// HiddenColumns is the set of column ids currently hidden.
	HiddenColumns map[string]bool
}

// clone returns a deep copy of the state, so a new snapshot can be built
// without mutating the previous one.
func (s State) clone() State {
	s.SelectedRows = maps.Clone(s.SelectedRows)
	s.ExpandedRows = maps.Clone(s.ExpandedRows)
	s.Filters = maps.Clone(s.Filters)
	s.HiddenColumns = maps.Clone(s.HiddenColumns)
	return s
}

// withDefaults merges the zero parts of a caller-supplied initial state over
// the engine defaults.
func (s State) withDefaults() State {
	if s.PageSize == 0 {
		s.PageSize = DefaultPageSize
	}
	if s.SelectedRows == nil {
		s.SelectedRows = map[string]bool{}
	}
	if s.ExpandedRows == nil {
		s.ExpandedRows = map[string]bool{}
	}
	if s.Filters == nil {
		s.Filters = map[string]interface{}{}
	}
	if s.HiddenColumns == nil {
		s.HiddenColumns = map[string]bool{}
	}
	if s.Page < 0 {
		s.Page = 0
	}
	return s
}

// ResetOptions selects which parts of the state are reset when the raw row
// set is replaced via SetData. The default (see DefaultResets) resets
// everything, so stale ids never point at rows that moved.
type ResetOptions struct {
	Sort      bool
	Selection bool
	Expansion bool
	Page      bool
	Filters   bool
}

// DefaultResets returns the default auto-reset policy: all on.
func DefaultResets() ResetOptions {
	return ResetOptions{Sort: true, Selection: true, Expansion: true, Page: true, Filters: true}
}

// Callbacks are optional hooks invoked after a state transition has been
// applied. A panic inside a callback is recovered and logged; it never rolls
// back the transition.
type Callbacks struct {
	// OnStateChange receives the new full state after every transition.
	OnStateChange func(State)

	// OnRowSelect receives the full updated selection map.
	OnRowSelect func(map[string]bool)

	// OnRowExpand receives the full updated expansion map.
	OnRowExpand func(map[string]bool)

	// OnSort receives the new sort state.
	OnSort func(SortState)

	// OnPageChange receives the new page index.
	OnPageChange func(int)

	// OnPageSizeChange receives the new page size.
	OnPageSizeChange func(int)

	// OnFilterChange receives the full updated filter map.
	OnFilterChange func(map[string]interface{})
}

// Options configures a Model.
type Options[T any] struct {
	// Data is the raw row set. The model never mutates it.
	Data []T

	// Columns describe the projections over rows. Required.
	Columns []Column[T]

	// Initial is merged over the engine defaults (page size 10, no sort,
	// empty maps). Zero fields keep their defaults.
	Initial State

	// GetRowID derives a stable identity for a row, used as the key for
	// selection and expansion. Defaults to the positional index, which is
	// only safe when rows are never reordered or filtered; callers with
	// dynamic data should supply a real id.
	GetRowID func(row T, index int) string

	// PageSizes is the candidate page-size set offered to pagers.
	// Defaults to DefaultPageSizes.
	PageSizes []int

	// ManualSorting, ManualFiltering and ManualPagination turn the
	// corresponding pipeline stage into a pass-through; the caller supplies
	// already-processed data (server-side mode).
	ManualSorting    bool
	ManualFiltering  bool
	ManualPagination bool

	// Disable flags switch whole feature groups off; the corresponding
	// intents become no-ops.
	DisableSortBy       bool
	DisableFilters      bool
	DisablePagination   bool
	DisableSelection    bool
	DisableExpanding    bool
	DisableColumnHiding bool

	// Resets is the auto-reset policy applied by SetData.
	// Defaults to DefaultResets.
	Resets *ResetOptions

	// Callbacks are the per-intent notification hooks.
	Callbacks Callbacks

	// Logger receives diagnostics (recovered observer panics, rejected
	// intents). Defaults to slog.Default.
	Logger *slog.Logger
}
