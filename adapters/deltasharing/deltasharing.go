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

// Package deltasharing loads tables exposed through the Delta Sharing
// protocol into datatable data sources.
package deltasharing

import (
	"context"
	"encoding/json"
	"fmt"

	delta_sharing "github.com/magpierre/go_delta_sharing_client"

	arrowadapter "github.com/magpierre/go-datatable/adapters/arrow"
)

// IsProfile reports whether the given content looks like a Delta Sharing
// profile. A profile has shareCredentialsVersion, endpoint and bearerToken.
func IsProfile(content string) bool {
	var profile map[string]interface{}
	if err := json.Unmarshal([]byte(content), &profile); err != nil {
		return false
	}

	_, hasVersion := profile["shareCredentialsVersion"]
	_, hasEndpoint := profile["endpoint"]
	_, hasBearerToken := profile["bearerToken"]

	return hasVersion && hasEndpoint && hasBearerToken
}

// Client wraps a Delta Sharing V2 client with profile context.
type Client struct {
	ds      delta_sharing.SharingClientV2
	profile string
}

// NewClient creates a Delta Sharing client from a profile string.
func NewClient(profile string) (*Client, error) {
	ds, err := delta_sharing.NewSharingClientV2FromString(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to create Delta Sharing client: %w", err)
	}
	return &Client{ds: ds, profile: profile}, nil
}

// ListShares returns the names of all shares visible to the client.
func (c *Client) ListShares(ctx context.Context) ([]string, error) {
	shares, _, err := c.ds.ListShares(ctx, 0, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}
	names := make([]string, 0, len(shares))
	for _, share := range shares {
		names = append(names, share.Name)
	}
	return names, nil
}

// ListTables returns all tables across all shares and schemas.
func (c *Client) ListTables(ctx context.Context) ([]delta_sharing.Table, error) {
	// maxConcurrency=0 uses the client default
	tables, _, err := c.ds.ListAllTables_V2(ctx, 0, "", 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list all tables: %w", err)
	}
	return tables, nil
}

// ListFileIDs returns the file ids that make up the given table.
func (c *Client) ListFileIDs(ctx context.Context, table delta_sharing.Table) ([]string, error) {
	resp, err := c.ds.ListFilesInTable(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to list files in table: %w", err)
	}
	ids := make([]string, 0, len(resp.AddFiles))
	for _, f := range resp.AddFiles {
		ids = append(ids, f.Id)
	}
	return ids, nil
}

// LoadFile fetches a single file of a shared table and materializes it as
// a data source.
func (c *Client) LoadFile(ctx context.Context, table delta_sharing.Table, fileID string) (*arrowadapter.Source, error) {
	arrowTable, err := delta_sharing.LoadArrowTable(ctx, c.ds, table, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load table data: %w", err)
	}
	defer arrowTable.Release()

	src, err := arrowadapter.NewFromArrowTable(arrowTable)
	if err != nil {
		return nil, err
	}
	meta := src.Metadata()
	meta["share"] = table.Share
	meta["schema"] = table.Schema
	meta["table"] = table.Name
	return src, nil
}

// LoadTable loads the first file of a shared table. Tables backed by a
// single Parquet file load completely; for multi-file tables use
// ListFileIDs and LoadFile.
func (c *Client) LoadTable(ctx context.Context, table delta_sharing.Table) (*arrowadapter.Source, error) {
	ids, err := c.ListFileIDs(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("table %s.%s.%s has no files", table.Share, table.Schema, table.Name)
	}
	return c.LoadFile(ctx, table, ids[0])
}
