package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse sends a standard error response envelope
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"status":    fiber.StatusNotFound,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
	})
}

// ValidationErrorResponse sends a 422 listing the required questions that are
// still unanswered. Fully recoverable by the user.
func ValidationErrorResponse(c *fiber.Ctx, missing []string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"status":          fiber.StatusUnprocessableEntity,
		"message":         "Please answer all required questions",
		"ok":              false,
		"missingRequired": missing,
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
		"url":             c.OriginalURL(),
		"type":            "validation",
	})
}

// SubmissionSuccessResponse sends the confirmation for a persisted submission
func SubmissionSuccessResponse(c *fiber.Ctx, submissionID uint64, submissionUUID string) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":        "Success",
		"ok":             true,
		"submissionId":   submissionID,
		"submissionUuid": submissionUUID,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	})
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status          int      `json:"status"`
	Message         string   `json:"message"`
	Ok              bool     `json:"ok"`
	Timestamp       string   `json:"timestamp"`
	URL             string   `json:"url"`
	Type            string   `json:"type,omitempty"`
	MissingRequired []string `json:"missingRequired,omitempty"`
}

// SubmissionResponseStruct defines the schema for submission confirmations
type SubmissionResponseStruct struct {
	Message        string `json:"message"`
	Ok             bool   `json:"ok"`
	SubmissionID   uint64 `json:"submissionId"`
	SubmissionUUID string `json:"submissionUuid"`
	Timestamp      string `json:"timestamp"`
}
