// export_service.go
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

package services

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// Sheet names of the export workbook.
const (
	SummarySheet  = "Summary"
	DetailedSheet = "Detailed Responses"
)

const exportDateFormat = "2006-01-02 15:04:05"

// exportRow is one row of the export join. Response fields are pointers
// because the LEFT JOIN yields NULLs for submissions without responses.
type exportRow struct {
	SubmissionUUID  string
	SubmissionDate  time.Time
	CustomerID      string
	CustomerCompany string
	PartnerName     string
	PartnerCompany  string
	SurveyName      string
	IsUpdate        bool
	QuestionID      *string
	QuestionText    *string
	ResponseValue   *string
	ResponseType    *string
	SectionName     *string
}

// ExportAll joins every submission with its customer, partner, template, and
// responses, and renders the two-sheet workbook: "Summary" with one row per
// submission and a response count, "Detailed Responses" with one row per
// answer. Zero submissions yields ErrNoData, not an empty workbook.
func ExportAll(db *gorm.DB) ([]byte, error) {
	var rows []exportRow

	err := db.Table("submissions s").
		Clauses(hints.CommentBefore("select", "export_all")).
		Select(`s.submission_uuid, s.submission_date, s.customer_id, c.customer_company,
			p.partner_name, p.partner_company, t.template_name AS survey_name, s.is_update,
			r.question_id, r.question_text, r.response_value, r.response_type, r.section_name`).
		Joins("JOIN customers c ON c.customer_id = s.customer_id").
		Joins("JOIN partners p ON p.id = s.partner_id").
		Joins("JOIN templates t ON t.id = s.template_id").
		Joins("LEFT JOIN responses r ON r.submission_id = s.id").
		Order("s.submission_date DESC, s.id DESC, r.question_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("export query failed: %w", err)
	}

	if len(rows) == 0 {
		return nil, ErrNoData
	}

	f, err := buildWorkbook(rows)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func buildWorkbook(rows []exportRow) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(DetailedSheet); err != nil {
		return nil, err
	}

	summaryHeader := []interface{}{
		"submission_uuid", "submission_date", "customer_id", "customer_company",
		"partner_name", "partner_company", "survey_name", "is_update", "response_count",
	}
	if err := f.SetSheetRow(SummarySheet, "A1", &summaryHeader); err != nil {
		return nil, err
	}

	detailHeader := []interface{}{
		"submission_uuid", "submission_date", "customer_id", "customer_company",
		"partner_name", "partner_company", "survey_name", "section_name",
		"question_id", "question_text", "response_value", "response_type",
	}
	if err := f.SetSheetRow(DetailedSheet, "A1", &detailHeader); err != nil {
		return nil, err
	}

	// Rows arrive newest-submission-first; both sheets keep that order.
	summaryLine := 2
	detailLine := 2
	counts := make(map[string]int)
	summaryCells := make(map[string]string)

	for _, row := range rows {
		if _, seen := counts[row.SubmissionUUID]; !seen {
			cell, _ := excelize.CoordinatesToCellName(1, summaryLine)
			summaryCells[row.SubmissionUUID] = cell
			record := []interface{}{
				row.SubmissionUUID, row.SubmissionDate.Format(exportDateFormat),
				row.CustomerID, row.CustomerCompany,
				row.PartnerName, row.PartnerCompany,
				row.SurveyName, row.IsUpdate, 0,
			}
			if err := f.SetSheetRow(SummarySheet, cell, &record); err != nil {
				return nil, err
			}
			summaryLine++
			counts[row.SubmissionUUID] = 0
		}

		// A NULL question id means the submission has no responses; it still
		// occupies its Summary row with a zero count.
		if row.QuestionID == nil {
			continue
		}
		counts[row.SubmissionUUID]++

		cell, _ := excelize.CoordinatesToCellName(1, detailLine)
		record := []interface{}{
			row.SubmissionUUID, row.SubmissionDate.Format(exportDateFormat),
			row.CustomerID, row.CustomerCompany,
			row.PartnerName, row.PartnerCompany,
			row.SurveyName, deref(row.SectionName),
			deref(row.QuestionID), deref(row.QuestionText),
			deref(row.ResponseValue), deref(row.ResponseType),
		}
		if err := f.SetSheetRow(DetailedSheet, cell, &record); err != nil {
			return nil, err
		}
		detailLine++
	}

	// Backfill the response counts now that every row has been seen
	for uuid, cell := range summaryCells {
		col, line, err := excelize.CellNameToCoordinates(cell)
		if err != nil {
			return nil, err
		}
		countCell, _ := excelize.CoordinatesToCellName(col+8, line)
		if err := f.SetCellValue(SummarySheet, countCell, counts[uuid]); err != nil {
			return nil, err
		}
	}

	return f, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
