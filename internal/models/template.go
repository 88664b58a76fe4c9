package models

import (
	"encoding/json"
	"time"
)

// Template is a named, versioned-by-replacement set of survey questions.
// Re-uploading under the same name replaces the question array wholesale;
// templates are never deleted.
type Template struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	TemplateName string `gorm:"uniqueIndex;size:255;not null"`
	Description  string `gorm:"size:1024"`
	Questions    JSON   `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName overrides the table name for Template
func (Template) TableName() string {
	return "templates"
}

// QuestionList decodes the persisted question array.
func (t *Template) QuestionList() ([]Question, error) {
	var questions []Question
	if len(t.Questions.JSON) == 0 {
		return questions, nil
	}
	if err := json.Unmarshal(t.Questions.JSON, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// SetQuestions encodes the question array for persistence.
func (t *Template) SetQuestions(questions []Question) error {
	data, err := json.Marshal(questions)
	if err != nil {
		return err
	}
	t.Questions.JSON = data
	return nil
}
