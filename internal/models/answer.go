package models

import "time"

// AnswerValue is the closed set of kind-specific submitted answer shapes.
type AnswerValue interface {
	AnswerKind() QuestionKind
}

type SingleChoiceAnswer struct {
	SelectedIndex int `json:"selected_index"`
}

func (SingleChoiceAnswer) AnswerKind() QuestionKind { return SingleChoice }

type FillBlankAnswer struct {
	Text string `json:"text"`
}

func (FillBlankAnswer) AnswerKind() QuestionKind { return FillBlank }

type OrderedMatchingAnswer struct {
	Placements map[string]string `json:"placements"` // stemID -> optionID
}

func (OrderedMatchingAnswer) AnswerKind() QuestionKind { return OrderedMatching }

type CodeOutputAnswer struct {
	Output string `json:"output"`
}

func (CodeOutputAnswer) AnswerKind() QuestionKind { return CodeOutput }

type DebugFixAnswer struct {
	Output string `json:"output"`
}

func (DebugFixAnswer) AnswerKind() QuestionKind { return DebugFix }

// AnswerRecord is the result of one submission for one question. A retry of
// the same question produces a new record that replaces the previous one for
// that question id, with the attempt count carried forward.
type AnswerRecord struct {
	QuestionID     string          `json:"question_id"`
	SubmittedValue AnswerValue     `json:"submitted_value"`
	IsCorrect      bool            `json:"is_correct"`
	PerItem        map[string]bool `json:"per_item,omitempty"` // ordered-matching breakdown
	ElapsedMs      int64           `json:"elapsed_ms"`
	AttemptNumber  int             `json:"attempt_number"` // 1-based
	HintsUsed      int             `json:"hints_used"`
	Score          int             `json:"score"` // non-negative
	SubmittedAt    time.Time       `json:"submitted_at"`
}
