package form

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/harborline/partner-survey/internal/models"
)

// MultiSeparator joins multi-select answers into their stored string form.
const MultiSeparator = "|"

// JoinMulti serializes a set of selected options. An empty selection
// serializes to the empty string, which the store never persists.
func JoinMulti(selected []string) string {
	return strings.Join(selected, MultiSeparator)
}

// SplitMulti deserializes a stored multi-select answer.
func SplitMulti(value string) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, MultiSeparator)
}

// EncodeMatrix serializes a matrix answer as a JSON object mapping row label
// to chosen column label. Rows with no selection are absent from the map; an
// empty selection set serializes to the empty string, never "{}".
func EncodeMatrix(selections map[string]string) (string, error) {
	if len(selections) == 0 {
		return "", nil
	}
	data, err := json.Marshal(selections)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeMatrix deserializes a stored matrix answer. An empty value decodes to
// an empty map.
func DecodeMatrix(value string) (map[string]string, error) {
	if value == "" {
		return map[string]string{}, nil
	}
	var selections map[string]string
	if err := json.Unmarshal([]byte(value), &selections); err != nil {
		return nil, err
	}
	return selections, nil
}

// ClampRating normalizes a rating answer into the question's [min,max] range.
// Non-numeric input (including a stale pre-filled string) falls back to the
// minimum, so stored ratings stay queryable as integers.
func ClampRating(q models.Question, raw string) string {
	min, max := q.RatingBounds()

	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		value = min
	}
	if value < min {
		value = min
	}
	if value > max {
		value = max
	}
	return strconv.Itoa(value)
}

// Normalize applies per-type normalization to an answer before persistence.
// Only ratings need adjustment; every other type is stored verbatim.
func Normalize(q models.Question, raw string) string {
	if raw == "" {
		return ""
	}
	if q.Type == models.QuestionRating {
		return ClampRating(q, raw)
	}
	return raw
}
