/*
Copyright 2026 Nevio.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// OfferRequestRecord is a named offer request fixture. Every field of the
// record other than name is passed through as the offerRequest variable.
type OfferRequestRecord struct {
	Name    string
	Request map[string]any
}

func (r *OfferRequestRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	name, ok := fields["name"].(string)
	if !ok {
		return errors.New("offer request record has no string name")
	}

	delete(fields, "name")

	r.Name = name
	r.Request = fields

	return nil
}

func (r OfferRequestRecord) MarshalJSON() ([]byte, error) {
	fields := maps.Clone(r.Request)
	if fields == nil {
		fields = map[string]any{}
	}

	fields["name"] = r.Name

	return json.Marshal(fields)
}

// Route summarises the first trip as origin → destination for log lines.
func (r OfferRequestRecord) Route() string {
	trips, _ := r.Request["trips"].(map[string]any)

	origin, _ := trips["origin"].(string)
	destination, _ := trips["destination"].(string)

	return origin + " → " + destination
}

// LoadOfferRequests reads an array of offer request records, as YAML when the
// file has a .yaml or .yml extension and as JSON otherwise.
func LoadOfferRequests(path string) ([]OfferRequestRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading test data: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if data, err = yamlToJSON(data); err != nil {
			return nil, err
		}
	}

	return ParseOfferRequests(data)
}

func yamlToJSON(data []byte) ([]byte, error) {
	var records []map[string]any
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding test data: %w", err)
	}

	out, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("decoding test data: %w", err)
	}

	return out, nil
}

// ParseOfferRequests decodes records and checks their names are present and unique.
func ParseOfferRequests(data []byte) ([]OfferRequestRecord, error) {
	var records []OfferRequestRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding test data: %w", err)
	}

	seen := map[string]bool{}

	for i, record := range records {
		if strings.TrimSpace(record.Name) == "" {
			return nil, fmt.Errorf("test data record %d has an empty name", i)
		}

		if seen[record.Name] {
			return nil, fmt.Errorf("test data record name %q is duplicated", record.Name)
		}

		seen[record.Name] = true
	}

	return records, nil
}

// LoadSheet reads a spreadsheet into row records keyed by the header row.
// Cells missing from a row, or empty, are nil; numeric and boolean cells keep
// their type. Rows without any value are skipped. An empty sheet name selects
// the first sheet.
func LoadSheet(path, sheet string) ([]map[string]any, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}

	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}

		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}

	if len(rows) == 0 {
		return []map[string]any{}, nil
	}

	header := headerNames(rows[0])
	records := make([]map[string]any, 0, len(rows)-1)

	for r, row := range rows[1:] {
		record := make(map[string]any, len(header))
		empty := true

		for c, column := range header {
			record[column] = nil

			if c >= len(row) || row[c] == "" {
				continue
			}

			value, err := cellValue(f, sheet, c+1, r+2, row[c])
			if err != nil {
				return nil, err
			}

			record[column] = value
			empty = false
		}

		if !empty {
			records = append(records, record)
		}
	}

	return records, nil
}

// cellValue converts the raw text of a cell to a bool, an int, a float64 or,
// for everything else, a string.
func cellValue(f *excelize.File, sheet string, col, row int, raw string) (any, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return nil, err
	}

	cellType, err := f.GetCellType(sheet, cell)
	if err != nil {
		return nil, fmt.Errorf("reading cell %s: %w", cell, err)
	}

	switch cellType {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true"), nil
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		number, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return raw, nil //nolint:nilerr
		}

		if number == math.Trunc(number) && math.Abs(number) < 1<<53 {
			return int(number), nil
		}

		return number, nil
	}

	return raw, nil
}

// headerNames names blank header cells __EMPTY and suffixes repeated names
// with _1, _2 and so on.
func headerNames(row []string) []string {
	names := make([]string, len(row))
	used := map[string]bool{}
	counts := map[string]int{}

	for i, cell := range row {
		base := strings.TrimSpace(cell)
		if base == "" {
			base = "__EMPTY"
		}

		name := base

		for used[name] {
			counts[base]++
			name = fmt.Sprintf("%s_%d", base, counts[base])
		}

		used[name] = true
		names[i] = name
	}

	return names
}

// RecordsFromRows turns flat sheet rows into offer request records. Dotted
// column names such as trips.origin become nested objects, nil cells are
// dropped and the name column is required.
func RecordsFromRows(rows []map[string]any) ([]OfferRequestRecord, error) {
	records := make([]OfferRequestRecord, 0, len(rows))

	for i, row := range rows {
		name, _ := row["name"].(string)
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("row %d has no name", i+2)
		}

		request := map[string]any{}

		for column, value := range row {
			if column == "name" || value == nil {
				continue
			}

			if err := setPath(request, strings.Split(column, "."), value); err != nil {
				return nil, fmt.Errorf("row %d: %w", i+2, err)
			}
		}

		records = append(records, OfferRequestRecord{Name: name, Request: request})
	}

	return records, nil
}

func setPath(m map[string]any, path []string, value any) error {
	if len(path) == 1 {
		m[path[0]] = value
		return nil
	}

	child, ok := m[path[0]]
	if !ok {
		child = map[string]any{}
		m[path[0]] = child
	}

	nested, ok := child.(map[string]any)
	if !ok {
		return fmt.Errorf("column %q conflicts with a value at %q", strings.Join(path, "."), path[0])
	}

	return setPath(nested, path[1:], value)
}
