package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/harborline/partner-survey/internal/services"
	"github.com/harborline/partner-survey/internal/utils"
	"gorm.io/gorm"
)

// ExportHandler handles data export routes
type ExportHandler struct {
	DB *gorm.DB
}

// ExportResponses handles GET /api/export
// @Summary Export all survey responses
// @Description Download every submission as a two-sheet XLSX workbook (Summary and Detailed Responses)
// @Tags Export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Success 204 "No submissions to export"
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /export [get]
func (h *ExportHandler) ExportResponses(c *fiber.Ctx) error {
	workbook, err := services.ExportAll(h.DB)
	if err != nil {
		if errors.Is(err, services.ErrNoData) {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "exportResponses")
	}

	filename := fmt.Sprintf("survey_responses_%s.xlsx", time.Now().UTC().Format("20060102_150405"))

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))

	return c.Status(fiber.StatusOK).Send(workbook)
}
