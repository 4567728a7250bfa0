package validator

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/codewithmorais/quiz-session-service/internal/errors"
	"github.com/codewithmorais/quiz-session-service/internal/models"
)

// QuestionValidator decodes stored question payloads into their typed form
// and validates them. Malformed payloads are configuration errors surfaced
// at load time so grading never has to deal with them.
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// Decode turns a stored question row into a validated domain Question.
func (v *QuestionValidator) Decode(record *models.QuestionRecord) (models.Question, error) {
	question := models.Question{
		ID:           record.ID,
		Kind:         record.Kind,
		Prompt:       record.Prompt,
		Difficulty:   record.Difficulty,
		TargetTimeMs: record.TargetTimeMs,
		HintCost:     record.HintCost,
	}

	if record.Prompt == "" {
		return models.Question{}, apperrors.NewConfigurationError(record.ID, "prompt", "cannot be empty")
	}
	if record.Difficulty < 1 || record.Difficulty > 5 {
		return models.Question{}, apperrors.NewConfigurationError(record.ID, "difficulty", "must be between 1 and 5")
	}
	if record.TargetTimeMs <= 0 {
		return models.Question{}, apperrors.NewConfigurationError(record.ID, "target_time_ms", "must be positive")
	}

	if len(record.Hints) > 0 {
		if err := json.Unmarshal(record.Hints, &question.Hints); err != nil {
			return models.Question{}, apperrors.NewConfigurationError(record.ID, "hints", "is not a valid JSON string array")
		}
	}

	payload, err := v.decodePayload(record)
	if err != nil {
		return models.Question{}, err
	}
	question.Payload = payload

	return question, nil
}

// DecodeBatch decodes a stored question list, preserving order.
func (v *QuestionValidator) DecodeBatch(records []*models.QuestionRecord) ([]models.Question, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("question list cannot be empty")
	}

	questions := make([]models.Question, len(records))
	for i, record := range records {
		question, err := v.Decode(record)
		if err != nil {
			return nil, err
		}
		questions[i] = question
	}
	return questions, nil
}

func (v *QuestionValidator) decodePayload(record *models.QuestionRecord) (models.QuestionPayload, error) {
	switch record.Kind {
	case models.SingleChoice:
		return v.decodeSingleChoice(record)
	case models.FillBlank:
		return v.decodeFillBlank(record)
	case models.OrderedMatching:
		return v.decodeOrderedMatching(record)
	case models.CodeOutput:
		return v.decodeCodeOutput(record)
	case models.DebugFix:
		return v.decodeDebugFix(record)
	default:
		return nil, apperrors.NewConfigurationError(record.ID, "kind", fmt.Sprintf("unsupported question kind: %s", record.Kind))
	}
}

func (v *QuestionValidator) decodeSingleChoice(record *models.QuestionRecord) (models.QuestionPayload, error) {
	var payload models.SingleChoicePayload
	if err := json.Unmarshal(record.Payload, &payload); err != nil {
		return nil, apperrors.NewConfigurationError(record.ID, "payload", "is not valid single choice content")
	}
	if len(payload.Options) < 2 {
		return nil, apperrors.NewConfigurationError(record.ID, "options", "must have at least 2 options")
	}
	if payload.CorrectIndex < 0 || payload.CorrectIndex >= len(payload.Options) {
		return nil, apperrors.NewConfigurationError(record.ID, "correct_index", "is out of range for the option list")
	}
	return payload, nil
}

func (v *QuestionValidator) decodeFillBlank(record *models.QuestionRecord) (models.QuestionPayload, error) {
	var payload models.FillBlankPayload
	if err := json.Unmarshal(record.Payload, &payload); err != nil {
		return nil, apperrors.NewConfigurationError(record.ID, "payload", "is not valid fill-blank content")
	}
	if len(payload.AcceptableAnswers) == 0 {
		return nil, apperrors.NewConfigurationError(record.ID, "acceptable_answers", "cannot be empty")
	}
	for _, answer := range payload.AcceptableAnswers {
		if answer == "" {
			return nil, apperrors.NewConfigurationError(record.ID, "acceptable_answers", "cannot contain empty strings")
		}
	}
	return payload, nil
}

func (v *QuestionValidator) decodeOrderedMatching(record *models.QuestionRecord) (models.QuestionPayload, error) {
	var payload models.OrderedMatchingPayload
	if err := json.Unmarshal(record.Payload, &payload); err != nil {
		return nil, apperrors.NewConfigurationError(record.ID, "payload", "is not valid matching content")
	}
	if len(payload.CorrectMapping) == 0 {
		return nil, apperrors.NewConfigurationError(record.ID, "correct_mapping", "cannot be empty")
	}

	options := make(map[string]bool, len(payload.Options))
	for _, option := range payload.Options {
		options[option] = true
	}
	for stem, option := range payload.CorrectMapping {
		if stem == "" {
			return nil, apperrors.NewConfigurationError(record.ID, "correct_mapping", "contains an empty stem id")
		}
		if len(options) > 0 && !options[option] {
			return nil, apperrors.NewConfigurationError(record.ID, "correct_mapping",
				fmt.Sprintf("option '%s' does not match any declared option", option))
		}
	}
	return payload, nil
}

func (v *QuestionValidator) decodeCodeOutput(record *models.QuestionRecord) (models.QuestionPayload, error) {
	var payload models.CodeOutputPayload
	if err := json.Unmarshal(record.Payload, &payload); err != nil {
		return nil, apperrors.NewConfigurationError(record.ID, "payload", "is not valid code-output content")
	}
	if payload.ExpectedOutput == "" {
		return nil, apperrors.NewConfigurationError(record.ID, "expected_output", "cannot be empty")
	}
	return payload, nil
}

func (v *QuestionValidator) decodeDebugFix(record *models.QuestionRecord) (models.QuestionPayload, error) {
	var payload models.DebugFixPayload
	if err := json.Unmarshal(record.Payload, &payload); err != nil {
		return nil, apperrors.NewConfigurationError(record.ID, "payload", "is not valid debug-fix content")
	}
	if payload.BuggySource == "" {
		return nil, apperrors.NewConfigurationError(record.ID, "buggy_source", "cannot be empty")
	}
	if payload.ExpectedOutput == "" {
		return nil, apperrors.NewConfigurationError(record.ID, "expected_output", "cannot be empty")
	}
	return payload, nil
}
