// survey.go
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

	"github.com/gofiber/fiber/v2"
	"github.com/harborline/partner-survey/internal/form"
	"github.com/harborline/partner-survey/internal/services"
	"github.com/harborline/partner-survey/internal/utils"
	"gorm.io/gorm"
)

// SurveyHandler handles survey response routes
type SurveyHandler struct {
	DB *gorm.DB
}

// submissionBody is the JSON payload for POST /api/surveys/:template/submissions
type submissionBody struct {
	CustomerID      string       `json:"customerId"`
	CustomerCompany string       `json:"customerCompany"`
	Classification  string       `json:"classification"`
	Owner           string       `json:"owner"`
	PartnerName     string       `json:"partnerName"`
	PartnerCompany  string       `json:"partnerCompany"`
	Answers         form.Session `json:"answers"`
	IsUpdate        bool         `json:"isUpdate"`
}

// GetExisting handles GET /api/surveys/:template/existing
// @Summary Look up an existing submission
// @Description Find the most recent submission for a customer and partner company against this template, with its answers keyed by question id
// @Tags Surveys
// @Accept json
// @Produce json
// @Param template path string true "Template name"
// @Param customerId query string true "Customer ID"
// @Param partnerCompany query string true "Partner company"
// @Success 200 {object} services.ExistingResponses
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /surveys/{template}/existing [get]
func (h *SurveyHandler) GetExisting(c *fiber.Ctx) error {
	templateName := c.Params("template")
	customerID := c.Query("customerId")
	partnerCompany := c.Query("partnerCompany")

	if customerID == "" || partnerCompany == "" {
		return utils.ErrorResponse(c, "customerId and partnerCompany are required", fiber.StatusBadRequest, "survey.validation")
	}

	existing, err := services.CheckExisting(h.DB, customerID, partnerCompany, templateName)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getExisting")
	}

	return c.Status(fiber.StatusOK).JSON(existing)
}

// SubmitSurvey handles POST /api/surveys/:template/submissions
// @Summary Submit survey responses
// @Description Validate required questions against the template's visibility rules, then persist the submission and its answers atomically
// @Tags Surveys
// @Accept json
// @Produce json
// @Param template path string true "Template name"
// @Param body body submissionBody true "Customer, partner, and answers"
// @Success 201 {object} utils.SubmissionResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 422 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /surveys/{template}/submissions [post]
func (h *SurveyHandler) SubmitSurvey(c *fiber.Ctx) error {
	templateName := c.Params("template")

	var body submissionBody
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "survey.validation.input")
	}

	if body.CustomerID == "" || body.PartnerName == "" || body.PartnerCompany == "" {
		return utils.ErrorResponse(c, "customerId, partnerName and partnerCompany are required", fiber.StatusBadRequest, "survey.validation")
	}

	_, questions, err := services.GetTemplate(h.DB, templateName)
	if err != nil {
		if errors.Is(err, services.ErrTemplateNotFound) {
			return utils.NotFoundResponse(c, fmt.Sprintf("Template '%s' not found", templateName))
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "submitSurvey")
	}

	if body.Answers == nil {
		body.Answers = form.Session{}
	}

	// Only visible required questions gate the submission. Hidden answers
	// are also not persisted, matching what the form shows the partner.
	if missing := form.MissingRequired(questions, body.Answers); len(missing) > 0 {
		return utils.ValidationErrorResponse(c, missing)
	}

	answers := form.VisibleAnswers(questions, body.Answers)

	receipt, err := services.Submit(h.DB, services.SubmissionInput{
		CustomerID:      body.CustomerID,
		CustomerCompany: body.CustomerCompany,
		Classification:  body.Classification,
		Owner:           body.Owner,
		PartnerName:     body.PartnerName,
		PartnerCompany:  body.PartnerCompany,
		TemplateName:    templateName,
		Answers:         answers,
		IsUpdate:        body.IsUpdate,
	})
	if err != nil {
		if errors.Is(err, services.ErrTemplateNotFound) {
			return utils.NotFoundResponse(c, fmt.Sprintf("Template '%s' not found", templateName))
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "submitSurvey")
	}

	return utils.SubmissionSuccessResponse(c, receipt.SubmissionID, receipt.SubmissionUUID)
}
