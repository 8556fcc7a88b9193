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

// tablebrowser opens a data file (CSV, Parquet, JSON or a Delta Sharing
// profile) in a sortable, filterable table window, or exports it from
// the command line.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/magpierre/go-datatable/datatable"
	"github.com/magpierre/go-datatable/export"
	dtwidget "github.com/magpierre/go-datatable/widget"
)

func main() {
	exportPath := flag.String("export", "", "export to this file (.csv, .json or .parquet) instead of opening a window")
	tableRef := flag.String("table", "", "share.schema.table to load from a Delta Sharing profile (default: first table)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <file>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	path := flag.Arg(0)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	source, err := loadSource(context.Background(), path, *tableRef)
	if err != nil {
		logger.Error("failed to load data", "path", path, "error", err)
		os.Exit(1)
	}

	model, err := datatable.FromSource(source)
	if err != nil {
		logger.Error("failed to create table model", "error", err)
		os.Exit(1)
	}

	logger.Info("loaded data",
		"path", path,
		"rows", source.RowCount(),
		"columns", source.ColumnCount())

	if *exportPath != "" {
		if err := runExport(model, *exportPath); err != nil {
			logger.Error("export failed", "path", *exportPath, "error", err)
			os.Exit(1)
		}
		logger.Info("exported data", "path", *exportPath)
		return
	}

	showWindow(model, filepath.Base(path))
}

func runExport(model *datatable.Model[[]datatable.Value], path string) error {
	view := export.FromModel(model)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return export.ExportToCSV(view, path)
	case ".json":
		return export.ExportToJSON(view, path)
	case ".parquet":
		return export.ExportToParquet(view, path)
	default:
		return fmt.Errorf("unsupported export format: %s", filepath.Ext(path))
	}
}

func showWindow(model *datatable.Model[[]datatable.Value], title string) {
	a := app.New()
	w := a.NewWindow(title)

	config := dtwidget.DefaultConfig()
	config.ShowColumnSelector = true
	config.SelectionMode = dtwidget.SelectionModeRow

	dataTable := dtwidget.NewDataTableWithConfig(model, config)
	dataTable.SetWindow(w)

	w.SetContent(dtwidget.WrapWithTooltips(dataTable, w.Canvas()))
	w.Resize(fyne.NewSize(1000, 700))
	w.ShowAndRun()
}
