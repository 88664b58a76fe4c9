// submission_service.go
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
	"sort"
	"time"

	"github.com/harborline/partner-survey/internal/form"
	"github.com/harborline/partner-survey/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// ExistingResponses describes the latest prior submission for a
// (customer, partner company, template) triple, if any. The answer map seeds
// the form engine's pre-filled state; the rest feeds the user-facing notice.
type ExistingResponses struct {
	HasExisting         bool         `json:"hasExisting"`
	Responses           form.Session `json:"responses,omitempty"`
	SubmissionDate      time.Time    `json:"submissionDate,omitempty"`
	PreviousPartnerName string       `json:"previousPartnerName,omitempty"`
	CustomerCompany     string       `json:"customerCompany,omitempty"`
}

// SubmissionInput is one completed form fill ready for persistence.
type SubmissionInput struct {
	CustomerID      string       `json:"customerId"`
	CustomerCompany string       `json:"customerCompany"`
	Classification  string       `json:"classification,omitempty"`
	Owner           string       `json:"owner,omitempty"`
	PartnerName     string       `json:"partnerName"`
	PartnerCompany  string       `json:"partnerCompany"`
	TemplateName    string       `json:"templateName"`
	Answers         form.Session `json:"answers"`
	IsUpdate        bool         `json:"isUpdate"`
}

// SubmissionReceipt confirms a persisted submission. The UUID is the
// externally-shown confirmation token.
type SubmissionReceipt struct {
	SubmissionID   uint64 `json:"submissionId"`
	SubmissionUUID string `json:"submissionUuid"`
}

// CheckExisting looks up the most recent submission for the triple. The match
// deliberately keys on partner company rather than partner person: a colleague
// at the same partner company updates the same survey lineage.
func CheckExisting(db *gorm.DB, customerID, partnerCompany, templateName string) (*ExistingResponses, error) {
	var sub models.Submission
	err := db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)}).
		Joins("JOIN partners p ON p.id = submissions.partner_id").
		Joins("JOIN templates t ON t.id = submissions.template_id").
		Where("submissions.customer_id = ? AND p.partner_company = ? AND t.template_name = ?",
			customerID, partnerCompany, templateName).
		Order("submissions.id DESC").
		Preload("Partner").
		Preload("Customer").
		First(&sub).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return &ExistingResponses{HasExisting: false}, nil
		}
		return nil, err
	}

	var responses []models.Response
	if err := db.Where("submission_id = ?", sub.ID).Find(&responses).Error; err != nil {
		return nil, err
	}

	answers := make(form.Session, len(responses))
	for _, r := range responses {
		answers[r.QuestionID] = r.ResponseValue
	}

	return &ExistingResponses{
		HasExisting:         true,
		Responses:           answers,
		SubmissionDate:      sub.SubmissionDate,
		PreviousPartnerName: sub.Partner.PartnerName,
		CustomerCompany:     sub.Customer.CustomerCompany,
	}, nil
}

// Submit persists one completed form fill as a single atomic unit: customer
// and partner upserts, submission insert, and one response row per non-empty
// answer. Any failure rolls the whole write back.
func Submit(db *gorm.DB, in SubmissionInput) (*SubmissionReceipt, error) {
	var receipt SubmissionReceipt

	err := db.Transaction(func(tx *gorm.DB) error {
		// Upsert customer; company name is last-writer-wins on conflict
		customer := models.Customer{
			CustomerID:      in.CustomerID,
			CustomerCompany: in.CustomerCompany,
			Classification:  in.Classification,
			Owner:           in.Owner,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "customer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"customer_company", "updated_at"}),
		}).Create(&customer).Error; err != nil {
			return fmt.Errorf("failed to upsert customer: %w", err)
		}

		// Upsert partner keyed on (name, company)
		partner := models.Partner{
			PartnerName:    in.PartnerName,
			PartnerCompany: in.PartnerCompany,
		}
		if err := tx.Where("partner_name = ? AND partner_company = ?", in.PartnerName, in.PartnerCompany).
			FirstOrCreate(&partner).Error; err != nil {
			return fmt.Errorf("failed to upsert partner: %w", err)
		}

		// Resolve the template and snapshot its questions for denormalization
		tmpl, questions, err := GetTemplate(tx, in.TemplateName)
		if err != nil {
			return err
		}
		byID := make(map[string]models.Question, len(questions))
		for _, q := range questions {
			byID[q.ID] = q
		}

		// Link the lineage when updating. The previous-submission pointer keys
		// on the partner person as well as the company, unlike CheckExisting.
		var previousID *uint64
		if in.IsUpdate {
			var prev struct{ ID *uint64 }
			err := tx.Model(&models.Submission{}).
				Select("MAX(submissions.id) AS id").
				Joins("JOIN partners p ON p.id = submissions.partner_id").
				Where("submissions.customer_id = ? AND p.partner_name = ? AND p.partner_company = ? AND submissions.template_id = ?",
					in.CustomerID, in.PartnerName, in.PartnerCompany, tmpl.ID).
				Scan(&prev).Error
			if err != nil {
				return fmt.Errorf("failed to resolve previous submission: %w", err)
			}
			previousID = prev.ID
		}

		submission := models.Submission{
			CustomerID:           in.CustomerID,
			PartnerID:            partner.ID,
			TemplateID:           tmpl.ID,
			IsUpdate:             in.IsUpdate,
			PreviousSubmissionID: previousID,
		}
		if err := tx.Create(&submission).Error; err != nil {
			return fmt.Errorf("failed to create submission: %w", err)
		}

		// One response row per non-empty answer, in stable question-id order.
		// Question text/type/section come from the template snapshot; an
		// answer whose id is not in the template still persists with fallback
		// metadata rather than aborting the submission.
		for _, qid := range sortedAnswerIDs(in.Answers) {
			value := in.Answers[qid]
			if value == "" {
				continue
			}

			response := models.Response{
				SubmissionID: submission.ID,
				QuestionID:   qid,
			}
			if q, ok := byID[qid]; ok {
				response.QuestionText = q.Question
				response.ResponseType = q.Type
				response.SectionName = q.SectionName()
				response.ResponseValue = form.Normalize(q, value)
			} else {
				response.QuestionText = qid
				response.ResponseType = "unknown"
				response.ResponseValue = value
			}

			if err := tx.Create(&response).Error; err != nil {
				return fmt.Errorf("failed to create response for %s: %w", qid, err)
			}
		}

		receipt = SubmissionReceipt{
			SubmissionID:   submission.ID,
			SubmissionUUID: submission.SubmissionUUID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &receipt, nil
}

func sortedAnswerIDs(answers form.Session) []string {
	ids := make([]string, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
