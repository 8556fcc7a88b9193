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

// Package datatable provides a headless table model: it owns all table state
// (sorting, filtering, pagination, row selection, row expansion and column
// visibility) and derives the visible row set through a fixed pipeline of
// raw rows -> sort -> filter -> paginate.
//
// The model is rendering-agnostic. A consumer (a Fyne widget, a CLI printer,
// an export routine) reads derived views such as PageData and VisibleColumns
// and dispatches intents such as SetSort or SetPage. After every state
// transition the model notifies registered observers with a fresh immutable
// snapshot, so consumers that compare snapshots by reference behave
// correctly.
//
// Two entry points exist:
//
//   - New creates a Model over a caller-owned slice of arbitrary row values,
//     described by Column definitions with field-name or projection
//     accessors.
//   - FromSource creates a Model over a DataSource (see the adapters
//     subpackages for CSV, Arrow, Parquet and Delta Sharing sources), with
//     columns derived from the source schema.
//
// The model never mutates rows; it only reads them through column accessors.
package datatable
