// template.go
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
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/harborline/partner-survey/internal/form"
	"github.com/harborline/partner-survey/internal/models"
	"github.com/harborline/partner-survey/internal/parser"
	"github.com/harborline/partner-survey/internal/services"
	"github.com/harborline/partner-survey/internal/types"
	"github.com/harborline/partner-survey/internal/utils"
	"gorm.io/gorm"
)

// TemplateHandler handles survey template routes
type TemplateHandler struct {
	DB *gorm.DB
}

// ListTemplates handles GET /api/templates
// @Summary List survey templates
// @Description Get all stored survey templates with question counts, newest first
// @Tags Templates
// @Accept json
// @Produce json
// @Success 200 {array} services.TemplateInfo
// @Success 204 "No templates stored"
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /templates [get]
func (h *TemplateHandler) ListTemplates(c *fiber.Ctx) error {
	templates, err := services.ListTemplates(h.DB)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "listTemplates")
	}

	if len(templates) == 0 {
		return c.SendStatus(fiber.StatusNoContent)
	}

	return c.Status(fiber.StatusOK).JSON(templates)
}

// GetTemplate handles GET /api/templates/:name
// @Summary Get a survey template
// @Description Get a stored survey template with its full question list
// @Tags Templates
// @Accept json
// @Produce json
// @Param name path string true "Template name"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /templates/{name} [get]
func (h *TemplateHandler) GetTemplate(c *fiber.Ctx) error {
	name := c.Params("name")

	template, questions, err := services.GetTemplate(h.DB, name)
	if err != nil {
		if errors.Is(err, services.ErrTemplateNotFound) {
			return utils.NotFoundResponse(c, fmt.Sprintf("Template '%s' not found", name))
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getTemplate")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"templateName": template.TemplateName,
		"description":  template.Description,
		"questions":    questions,
	})
}

// ParseTemplate handles POST /api/templates/parse
// @Summary Parse a template file
// @Description Parse an uploaded XLSX or CSV question file and return the questions without saving
// @Tags Templates
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Template file (.xlsx, .xls, or .csv)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /templates/parse [post]
func (h *TemplateHandler) ParseTemplate(c *fiber.Ctx) error {
	filename, data, err := readUploadedFile(c, "file")
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "template.upload")
	}

	questions, err := parser.Parse(filename, data)
	if err != nil {
		if errors.Is(err, parser.ErrUnsupportedFormat) {
			return utils.ErrorResponse(c, "Unsupported file format, use .xlsx or .csv", fiber.StatusBadRequest, "template.format")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "template.parse")
	}

	if len(questions) == 0 {
		return utils.ErrorResponse(c, "No questions found in file", fiber.StatusBadRequest, "template.empty")
	}

	// Structural problems are advisory at parse time. The caller sees them
	// alongside the questions and decides whether to save anyway.
	warnings := form.StructuralWarnings(questions)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"questions": questions,
		"warnings":  warnings,
	})
}

// SaveTemplate handles POST /api/templates
// @Summary Save a survey template
// @Description Parse an uploaded question file and store it under the given name, replacing any template with the same name. Also accepts an application/json body with the questions already parsed.
// @Tags Templates
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Param file formData file true "Template file (.xlsx, .xls, or .csv)"
// @Param templateName formData string true "Name to store the template under"
// @Param description formData string false "Template description"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /templates [post]
func (h *TemplateHandler) SaveTemplate(c *fiber.Ctx) error {
	// JSON clients send the questions directly, typically the output of a
	// prior parse call
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		return h.saveTemplateJSON(c)
	}

	templateName := trimmedFormValue(c, "templateName")
	if templateName == "" {
		return utils.ErrorResponse(c, "templateName is required", fiber.StatusBadRequest, "template.validation")
	}

	filename, data, err := readUploadedFile(c, "file")
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "template.upload")
	}

	questions, err := parser.Parse(filename, data)
	if err != nil {
		if errors.Is(err, parser.ErrUnsupportedFormat) {
			return utils.ErrorResponse(c, "Unsupported file format, use .xlsx or .csv", fiber.StatusBadRequest, "template.format")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "template.parse")
	}

	if len(questions) == 0 {
		return utils.ErrorResponse(c, "No questions found in file", fiber.StatusBadRequest, "template.empty")
	}

	if err := services.SaveTemplate(h.DB, templateName, trimmedFormValue(c, "description"), questions); err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "saveTemplate")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":       "Success",
		"ok":            true,
		"templateName":  templateName,
		"questionCount": len(questions),
	})
}

func (h *TemplateHandler) saveTemplateJSON(c *fiber.Ctx) error {
	var body struct {
		TemplateName string                         `json:"templateName"`
		Description  string                         `json:"description"`
		Questions    types.FlexList[models.Question] `json:"questions"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "template.validation.input")
	}

	body.TemplateName = strings.TrimSpace(body.TemplateName)
	if body.TemplateName == "" {
		return utils.ErrorResponse(c, "templateName is required", fiber.StatusBadRequest, "template.validation")
	}
	questions := body.Questions.Slice()
	if len(questions) == 0 {
		return utils.ErrorResponse(c, "At least one question is required", fiber.StatusBadRequest, "template.empty")
	}

	if err := services.SaveTemplate(h.DB, body.TemplateName, body.Description, questions); err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "saveTemplate")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":       "Success",
		"ok":            true,
		"templateName":  body.TemplateName,
		"questionCount": len(questions),
	})
}
