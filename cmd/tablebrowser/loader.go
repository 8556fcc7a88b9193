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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magpierre/go-datatable/adapters/csv"
	"github.com/magpierre/go-datatable/adapters/deltasharing"
	"github.com/magpierre/go-datatable/adapters/parquet"
	"github.com/magpierre/go-datatable/adapters/slice"
	"github.com/magpierre/go-datatable/datatable"
)

// FileType represents the type of data file
type FileType int

const (
	FileTypeUnknown FileType = iota
	FileTypeCSV
	FileTypeParquet
	FileTypeJSON
	FileTypeDeltaSharingProfile
)

// DetectFileType determines the type of file based on extension and content
func DetectFileType(filePath string, content string) FileType {
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".csv":
		return FileTypeCSV
	case ".parquet":
		return FileTypeParquet
	case ".json", ".share", ".txt":
		// A profile and a JSON data file share the extension; the
		// content decides.
		if deltasharing.IsProfile(content) {
			return FileTypeDeltaSharingProfile
		}
		return FileTypeJSON
	default:
		return FileTypeUnknown
	}
}

// loadSource loads the file at path into a data source. tableRef selects
// the share.schema.table to load when the path is a Delta Sharing
// profile; empty means the first available table.
func loadSource(ctx context.Context, path, tableRef string) (datatable.DataSource, error) {
	var content string
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".json" || ext == ".share" || ext == ".txt" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		content = string(raw)
	}

	switch DetectFileType(path, content) {
	case FileTypeCSV:
		return loadCSV(path)
	case FileTypeParquet:
		return parquet.NewFromFile(ctx, path)
	case FileTypeJSON:
		return loadJSON(content)
	case FileTypeDeltaSharingProfile:
		return loadDeltaShare(ctx, content, tableRef)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
}

func loadCSV(path string) (datatable.DataSource, error) {
	config := csv.DefaultConfig()
	if sep, err := csv.DetectDelimiter(path); err == nil {
		config.Delimiter = sep
	}

	source, err := csv.NewFromFile(path, config)
	if err != nil {
		return nil, fmt.Errorf("failed to load CSV file: %w", err)
	}
	return source, nil
}

func loadJSON(content string) (datatable.DataSource, error) {
	var data []map[string]interface{}
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		var singleObj map[string]interface{}
		if err := json.Unmarshal([]byte(content), &singleObj); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		data = []map[string]interface{}{singleObj}
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("JSON file has no records")
	}

	source, err := slice.NewFromMaps(data)
	if err != nil {
		return nil, fmt.Errorf("failed to create data source from JSON: %w", err)
	}
	return source, nil
}

func loadDeltaShare(ctx context.Context, profile, tableRef string) (datatable.DataSource, error) {
	client, err := deltasharing.NewClient(profile)
	if err != nil {
		return nil, err
	}

	tables, err := client.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("no tables found in share")
	}

	if tableRef == "" {
		return client.LoadTable(ctx, tables[0])
	}

	for _, table := range tables {
		ref := fmt.Sprintf("%s.%s.%s", table.Share, table.Schema, table.Name)
		if ref == tableRef {
			return client.LoadTable(ctx, table)
		}
	}
	return nil, fmt.Errorf("table %s not found in share", tableRef)
}
