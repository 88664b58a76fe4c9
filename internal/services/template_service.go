package services

import (
	"fmt"
	"time"

	"github.com/harborline/partner-survey/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// TemplateInfo is the listing view of a template.
type TemplateInfo struct {
	TemplateName  string    `json:"templateName"`
	Description   string    `json:"description"`
	QuestionCount int       `json:"questionCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// SaveTemplate inserts a template or, when the name already exists, replaces
// its question array and description wholesale. Templates are never deleted.
func SaveTemplate(db *gorm.DB, name, description string, questions []models.Question) error {
	if name == "" {
		return fmt.Errorf("template name is required")
	}

	tmpl := models.Template{
		TemplateName: name,
		Description:  description,
	}
	if err := tmpl.SetQuestions(questions); err != nil {
		return fmt.Errorf("failed to encode questions: %w", err)
	}

	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "template_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"questions", "description", "updated_at"}),
	}).Create(&tmpl).Error
}

// ListTemplates returns all templates, newest-created first.
func ListTemplates(db *gorm.DB) ([]TemplateInfo, error) {
	var templates []models.Template
	if err := db.Order("created_at DESC").Find(&templates).Error; err != nil {
		return nil, err
	}

	infos := make([]TemplateInfo, 0, len(templates))
	for i := range templates {
		questions, err := templates[i].QuestionList()
		if err != nil {
			return nil, fmt.Errorf("template %q has malformed questions: %w", templates[i].TemplateName, err)
		}
		infos = append(infos, TemplateInfo{
			TemplateName:  templates[i].TemplateName,
			Description:   templates[i].Description,
			QuestionCount: len(questions),
			CreatedAt:     templates[i].CreatedAt,
			UpdatedAt:     templates[i].UpdatedAt,
		})
	}
	return infos, nil
}

// GetTemplate resolves a template by its natural key and decodes its
// questions. Absence is ErrTemplateNotFound.
func GetTemplate(db *gorm.DB, name string) (*models.Template, []models.Question, error) {
	var tmpl models.Template
	err := db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)}).
		Where("template_name = ?", name).
		First(&tmpl).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
		}
		return nil, nil, err
	}

	questions, err := tmpl.QuestionList()
	if err != nil {
		return nil, nil, fmt.Errorf("template %q has malformed questions: %w", name, err)
	}
	return &tmpl, questions, nil
}
