// parser.go
//
// Survey administration service for partner-facing customer surveys
// Copyright (c) 2026 Harborline Software Ltd.
//
// This file is part of partner-survey.
// partner-survey is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// partner-survey is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with partner-survey.
// If not, see <https://www.gnu.org/licenses/>.

// Package parser converts uploaded tabular template files (XLSX/CSV) into an
// ordered question sequence. It performs no I/O beyond the input bytes.
package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/harborline/partner-survey/internal/models"
	"github.com/harborline/partner-survey/internal/types"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned when the upload is not a supported tabular file.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Recognized template columns. Header matching is case-insensitive.
const (
	colQuestionID     = "questionid"
	colType           = "type"
	colQuestion       = "question"
	colSection        = "section"
	colRequired       = "required"
	colOptions        = "options"
	colMinRating      = "minrating"
	colMaxRating      = "maxrating"
	colMatrixRows     = "matrixrows"
	colMatrixCols     = "matrixcols"
	colDependsOn      = "dependson"
	colDependsOnValue = "dependsonvalue"
)

// Parse converts an uploaded template file into an ordered question sequence.
// The format is chosen by file extension; anything other than .xlsx, .xls, or
// .csv fails with ErrUnsupportedFormat.
func Parse(filename string, data []byte) ([]models.Question, error) {
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls":
		rows, err = readExcelRows(data)
	case ".csv":
		rows, err = readCSVRows(data)
	default:
		return nil, fmt.Errorf("%w: %s (expected .xlsx, .xls, or .csv)", ErrUnsupportedFormat, filename)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	if len(rows) < 1 {
		return nil, nil
	}

	header := indexHeader(rows[0])
	questions := make([]models.Question, 0, len(rows)-1)

	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}

		cell := func(name string) string {
			idx, ok := header[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		q := models.Question{
			ID:       cell(colQuestionID),
			Type:     normalizeType(cell(colType)),
			Question: cell(colQuestion),
			Section:  cell(colSection),
			Required: isAffirmative(cell(colRequired)),
		}
		if q.ID == "" {
			// Positional placeholder, 1-based over data rows
			q.ID = fmt.Sprintf("Q%d", i+1)
		}

		switch q.Type {
		case models.QuestionSingleSelect, models.QuestionMultiSelect:
			q.Options = splitList(cell(colOptions))
		case models.QuestionRating:
			q.MinRating = types.FlexInt(parseIntDefault(cell(colMinRating), models.DefaultMinRating))
			q.MaxRating = types.FlexInt(parseIntDefault(cell(colMaxRating), models.DefaultMaxRating))
		case models.QuestionMatrix:
			q.MatrixRows = splitList(cell(colMatrixRows))
			q.MatrixCols = splitList(cell(colMatrixCols))
		}

		if dependsOn := cell(colDependsOn); dependsOn != "" {
			q.DependsOn = dependsOn
			q.DependsOnValue = cell(colDependsOnValue)
		}

		questions = append(questions, q)
	}

	return questions, nil
}

// readExcelRows returns all rows of the first sheet.
func readExcelRows(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

func readCSVRows(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return r.ReadAll()
}

// indexHeader maps lowercased header names to column positions.
func indexHeader(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, exists := index[key]; !exists {
			index[key] = i
		}
	}
	return index
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// normalizeType lowercases the type cell and maps legacy spellings onto the
// canonical identifiers. Blank defaults to text.
func normalizeType(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	switch t {
	case "":
		return models.QuestionText
	case "single-select", "multiple_choice", "multiple_choice_single_select":
		return models.QuestionSingleSelect
	case "multi-select", "multiple_choice_multi_select":
		return models.QuestionMultiSelect
	}
	return t
}

// isAffirmative reports whether a Required cell means true.
func isAffirmative(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "true":
		return true
	}
	return false
}

// splitList splits a list cell on the first separator found, checked in
// priority order pipe, semicolon, comma. Empty tokens are discarded; no usable
// text yields an empty list rather than an error.
func splitList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	sep := ","
	for _, candidate := range []string{"|", ";"} {
		if strings.Contains(raw, candidate) {
			sep = candidate
			break
		}
	}

	parts := strings.Split(raw, sep)
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items
}

func parseIntDefault(raw string, defaultValue int) int {
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return value
}
