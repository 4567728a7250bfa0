package grading

import (
	"github.com/codewithmorais/quiz-session-service/internal/models"
	"github.com/codewithmorais/quiz-session-service/internal/utils"
)

// Result is the outcome of grading one submission. PerItem is populated only
// for ordered-matching questions and carries the per-stem breakdown used for
// partial visual feedback; the question-level verdict stays a single boolean.
type Result struct {
	Correct bool            `json:"correct"`
	PerItem map[string]bool `json:"per_item,omitempty"`
}

// Engine decides correctness for every question kind. Grade is total: it
// never returns an error, and an unknown kind or a value whose shape does
// not match the question grades as incorrect so the session stays usable.
type Engine struct {
	logger utils.Logger
}

func NewEngine(logger utils.Logger) *Engine {
	return &Engine{logger: logger}
}

// Grade evaluates a submitted value against a question.
func (e *Engine) Grade(question models.Question, value models.AnswerValue) Result {
	switch payload := question.Payload.(type) {
	case models.SingleChoicePayload:
		return e.gradeSingleChoice(payload, value)
	case models.FillBlankPayload:
		return e.gradeFillBlank(payload, value)
	case models.OrderedMatchingPayload:
		return e.gradeOrderedMatching(payload, value)
	case models.CodeOutputPayload:
		return e.gradeOutput(payload.ExpectedOutput, value)
	case models.DebugFixPayload:
		return e.gradeOutput(payload.ExpectedOutput, value)
	default:
		e.logger.Warn("Unknown question kind, grading as incorrect",
			"question_id", question.ID,
			"kind", question.Kind)
		return Result{Correct: false}
	}
}

// gradeSingleChoice requires exact integer equality with the correct index.
func (e *Engine) gradeSingleChoice(payload models.SingleChoicePayload, value models.AnswerValue) Result {
	answer, ok := value.(models.SingleChoiceAnswer)
	if !ok {
		return e.shapeMismatch(models.SingleChoice, value)
	}
	return Result{Correct: answer.SelectedIndex == payload.CorrectIndex}
}

// gradeFillBlank accepts the submission if it matches any acceptable answer
// after trimming, with case folding unless the question is case sensitive.
func (e *Engine) gradeFillBlank(payload models.FillBlankPayload, value models.AnswerValue) Result {
	answer, ok := value.(models.FillBlankAnswer)
	if !ok {
		return e.shapeMismatch(models.FillBlank, value)
	}

	submitted := normalize(answer.Text, payload.CaseSensitive)
	for _, acceptable := range payload.AcceptableAnswers {
		if submitted == normalize(acceptable, payload.CaseSensitive) {
			return Result{Correct: true}
		}
	}
	return Result{Correct: false}
}

// gradeOrderedMatching checks every stem assignment. A partially correct
// placement grades the question as incorrect but still reports which pairs
// matched.
func (e *Engine) gradeOrderedMatching(payload models.OrderedMatchingPayload, value models.AnswerValue) Result {
	answer, ok := value.(models.OrderedMatchingAnswer)
	if !ok {
		return e.shapeMismatch(models.OrderedMatching, value)
	}

	perItem := make(map[string]bool, len(payload.CorrectMapping))
	overall := true
	for stemID, correctOption := range payload.CorrectMapping {
		matched := answer.Placements[stemID] == correctOption
		perItem[stemID] = matched
		if !matched {
			overall = false
		}
	}
	return Result{Correct: overall, PerItem: perItem}
}

// gradeOutput compares trimmed output strings. Running the user's code is the
// sandbox runner's job; by the time a submission reaches the engine it is
// already plain text.
func (e *Engine) gradeOutput(expected string, value models.AnswerValue) Result {
	var output string
	switch answer := value.(type) {
	case models.CodeOutputAnswer:
		output = answer.Output
	case models.DebugFixAnswer:
		output = answer.Output
	default:
		return e.shapeMismatch(models.CodeOutput, value)
	}
	return Result{Correct: trim(output) == trim(expected)}
}

func (e *Engine) shapeMismatch(expected models.QuestionKind, value models.AnswerValue) Result {
	got := models.QuestionKind("nil")
	if value != nil {
		got = value.AnswerKind()
	}
	e.logger.Warn("Answer value shape does not match question kind, grading as incorrect",
		"expected_kind", expected,
		"got_kind", got)
	return Result{Correct: false}
}
