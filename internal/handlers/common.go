// common.go
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

package handlers

import (
	"fmt"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Uploaded template files are small spreadsheets; anything larger is a
// client mistake, not a survey template.
const maxTemplateUpload = 10 << 20 // 10 MiB

// readUploadedFile extracts the named multipart file from the request and
// returns its filename and contents.
func readUploadedFile(c *fiber.Ctx, field string) (string, []byte, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return "", nil, fmt.Errorf("missing file field '%s'", field)
	}

	if fileHeader.Size > maxTemplateUpload {
		return "", nil, fmt.Errorf("file exceeds %d byte limit", maxTemplateUpload)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxTemplateUpload+1))
	if err != nil {
		return "", nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if int64(len(data)) > maxTemplateUpload {
		return "", nil, fmt.Errorf("file exceeds %d byte limit", maxTemplateUpload)
	}

	return fileHeader.Filename, data, nil
}

// trimmedFormValue returns a whitespace-trimmed form field
func trimmedFormValue(c *fiber.Ctx, field string) string {
	return strings.TrimSpace(c.FormValue(field))
}
