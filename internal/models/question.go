package models

import (
	"github.com/harborline/partner-survey/internal/types"
)

// Question type identifiers as stored in template JSON.
const (
	QuestionText         = "text"
	QuestionTextarea     = "textarea"
	QuestionSingleSelect = "single_select"
	QuestionMultiSelect  = "multi_select"
	QuestionRating       = "rating"
	QuestionMatrix       = "matrix"
)

// DefaultSection is used when a template row carries no section label.
const DefaultSection = "General"

// Default rating bounds when a rating question omits them.
const (
	DefaultMinRating = 1
	DefaultMaxRating = 5
)

// Question is one question definition inside a template.
// The JSON shape is the persisted format of the templates.questions column,
// so field names must stay stable across template re-uploads.
type Question struct {
	ID             string        `json:"id"`
	Type           string        `json:"type"`
	Question       string        `json:"question"`
	Section        string        `json:"section,omitempty"`
	Required       bool          `json:"required"`
	Options        []string      `json:"options,omitempty"`
	MinRating      types.FlexInt `json:"minRating,omitempty"`
	MaxRating      types.FlexInt `json:"maxRating,omitempty"`
	MatrixRows     []string      `json:"matrixRows,omitempty"`
	MatrixCols     []string      `json:"matrixCols,omitempty"`
	DependsOn      string        `json:"dependsOn,omitempty"`
	DependsOnValue string        `json:"dependsOnValue,omitempty"`
}

// SectionName returns the section label, defaulting when blank.
func (q Question) SectionName() string {
	if q.Section == "" {
		return DefaultSection
	}
	return q.Section
}

// RatingBounds returns the effective [min,max] rating range.
func (q Question) RatingBounds() (int, int) {
	min := q.MinRating.Int()
	max := q.MaxRating.Int()
	if min == 0 && max == 0 {
		return DefaultMinRating, DefaultMaxRating
	}
	if max < min {
		max = min
	}
	return min, max
}

// IsChoice reports whether the question selects from an option list.
func (q Question) IsChoice() bool {
	return q.Type == QuestionSingleSelect || q.Type == QuestionMultiSelect
}
