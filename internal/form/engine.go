// engine.go
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

// Package form is the template-driven form engine: dependency-based question
// visibility, required-field validation, and per-type answer serialization.
// All answers are carried as strings; the presentation layer owns rendering.
package form

import (
	"fmt"
	"strings"

	"github.com/harborline/partner-survey/internal/models"
)

// Session holds the in-progress answers for one form fill, keyed by question
// id. Callers pass it explicitly per call; the engine keeps no state.
type Session map[string]string

// ShouldShow reports whether a question is visible given the answers so far.
// A question with no dependency is always shown. If the controlling question
// has no answer yet the dependent question stays hidden, so a hidden
// controller transitively hides its dependents.
func ShouldShow(q models.Question, answers Session) bool {
	if q.DependsOn == "" {
		return true
	}

	current, ok := answers[q.DependsOn]
	if !ok {
		return false
	}

	if q.DependsOnValue != "" {
		return current == q.DependsOnValue
	}
	return isTruthy(current)
}

// MissingRequired returns the display texts of questions that block
// submission: required, currently shown, and unanswered.
func MissingRequired(questions []models.Question, answers Session) []string {
	var missing []string
	for _, q := range questions {
		if !q.Required || !ShouldShow(q, answers) {
			continue
		}
		if answers[q.ID] == "" {
			missing = append(missing, q.Question)
		}
	}
	return missing
}

// VisibleAnswers filters a session down to the answers of questions that are
// currently shown. Answers left behind by a dependency flipping off do not
// survive submission.
func VisibleAnswers(questions []models.Question, answers Session) Session {
	visible := make(Session, len(answers))
	for _, q := range questions {
		if !ShouldShow(q, answers) {
			continue
		}
		if v, ok := answers[q.ID]; ok {
			visible[q.ID] = v
		}
	}
	return visible
}

// Progress returns answered-shown over shown, 0 when nothing is shown.
// UI feedback only, never a gating contract.
func Progress(questions []models.Question, answers Session) float64 {
	shown := 0
	answered := 0
	for _, q := range questions {
		if !ShouldShow(q, answers) {
			continue
		}
		shown++
		if answers[q.ID] != "" {
			answered++
		}
	}
	if shown == 0 {
		return 0
	}
	return float64(answered) / float64(shown)
}

// StructuralWarnings flags questions that cannot render anything useful: a
// choice question with no options, or a matrix question missing rows or
// columns. These surface as warnings at parse time rather than silently
// rendering nothing.
func StructuralWarnings(questions []models.Question) []string {
	var warnings []string
	for _, q := range questions {
		switch {
		case q.IsChoice() && len(q.Options) == 0:
			warnings = append(warnings,
				fmt.Sprintf("question %q (%s) has no options", q.ID, q.Type))
		case q.Type == models.QuestionMatrix && (len(q.MatrixRows) == 0 || len(q.MatrixCols) == 0):
			warnings = append(warnings,
				fmt.Sprintf("matrix question %q is missing rows (%d) or columns (%d)",
					q.ID, len(q.MatrixRows), len(q.MatrixCols)))
		}
	}
	return warnings
}

// isTruthy treats an answer as satisfying a value-less dependency when it is
// non-empty and not a falsy sentinel.
func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "0", "false":
		return false
	}
	return true
}
