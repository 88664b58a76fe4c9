package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is a customer record keyed by its external natural id.
// Upserted opportunistically on submission; company name is last-writer-wins.
type Customer struct {
	CustomerID      string `gorm:"primaryKey;size:64"`
	CustomerCompany string `gorm:"size:255;not null"`
	Classification  string `gorm:"size:255"`
	Owner           string `gorm:"size:255"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Partner is a partner person at a partner company, unique on (name, company).
type Partner struct {
	ID             uint64 `gorm:"primaryKey;autoIncrement"`
	PartnerName    string `gorm:"size:255;not null;uniqueIndex:idx_partner_name_company"`
	PartnerCompany string `gorm:"size:255;not null;uniqueIndex:idx_partner_name_company"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Submission is one completed fill-out of a template by a partner for a
// customer. The latest submission (by id) for a (customer, partner company,
// template) triple is the authoritative state; earlier ones are history.
type Submission struct {
	ID                   uint64 `gorm:"primaryKey;autoIncrement"`
	SubmissionUUID       string `gorm:"column:submission_uuid;uniqueIndex;size:36;not null"`
	CustomerID           string `gorm:"size:64;index;not null"`
	PartnerID            uint64 `gorm:"index;not null"`
	TemplateID           uint64 `gorm:"index;not null"`
	SubmissionDate       time.Time
	IsUpdate             bool
	PreviousSubmissionID *uint64

	Customer Customer `gorm:"foreignKey:CustomerID;references:CustomerID"`
	Partner  Partner  `gorm:"foreignKey:PartnerID"`
	Template Template `gorm:"foreignKey:TemplateID"`
}

// BeforeCreate assigns the external confirmation token and submission time.
func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.SubmissionUUID == "" {
		s.SubmissionUUID = uuid.New().String()
	}
	if s.SubmissionDate.IsZero() {
		s.SubmissionDate = time.Now().UTC()
	}
	return nil
}

// Response is one answered question within a submission. Question text, type,
// and section are captured at submit time so historic submissions stay
// interpretable after template edits. Rows are immutable after insert.
type Response struct {
	ID            uint64 `gorm:"primaryKey;autoIncrement"`
	SubmissionID  uint64 `gorm:"index;not null"`
	QuestionID    string `gorm:"size:64;not null"`
	QuestionText  string `gorm:"size:1024"`
	ResponseValue string `gorm:"type:text"`
	ResponseType  string `gorm:"size:64"`
	SectionName   string `gorm:"size:255"`
}

// TableName overrides the table name for Customer
func (Customer) TableName() string {
	return "customers"
}

// TableName overrides the table name for Partner
func (Partner) TableName() string {
	return "partners"
}

// TableName overrides the table name for Submission
func (Submission) TableName() string {
	return "submissions"
}

// TableName overrides the table name for Response
func (Response) TableName() string {
	return "responses"
}
