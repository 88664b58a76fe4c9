// data.go
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

package testutil

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/harborline/partner-survey/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenTestDB opens an in-memory sqlite database with the survey schema
// migrated. Each call returns an isolated database.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Template{},
		&models.Customer{},
		&models.Partner{},
		&models.Submission{},
		&models.Response{},
	); err != nil {
		t.Fatalf("Failed to migrate schema: %v", err)
	}

	return db
}

// CreateTestTemplate stores a template with the given questions
func CreateTestTemplate(t *testing.T, db *gorm.DB, name string, questions []models.Question) models.Template {
	t.Helper()

	template := models.Template{TemplateName: name}
	if err := template.SetQuestions(questions); err != nil {
		t.Fatalf("Failed to encode questions: %v", err)
	}
	if err := db.Create(&template).Error; err != nil {
		t.Fatalf("Failed to create template: %v", err)
	}
	return template
}

// CreateTestCustomer stores a customer record
func CreateTestCustomer(t *testing.T, db *gorm.DB, id, company string) models.Customer {
	t.Helper()

	customer := models.Customer{
		CustomerID:      id,
		CustomerCompany: company,
	}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("Failed to create customer: %v", err)
	}
	return customer
}

// SampleQuestions returns a small template covering the question types and a
// dependency chain, usable as-is by most tests.
func SampleQuestions() []models.Question {
	return []models.Question{
		{ID: "Q1", Type: models.QuestionText, Question: "Name", Section: "Contact", Required: true},
		{ID: "Q2", Type: models.QuestionSingleSelect, Question: "Satisfied?", Section: "Feedback",
			Required: true, Options: []string{"Yes", "No"}},
		{ID: "Q3", Type: models.QuestionTextarea, Question: "Details", Section: "Feedback",
			Required: true, DependsOn: "Q2", DependsOnValue: "No"},
		{ID: "Q4", Type: models.QuestionRating, Question: "Score", Section: "Feedback"},
	}
}
