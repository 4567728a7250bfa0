package models

// QuestionKind identifies how a question is rendered, submitted and graded.
type QuestionKind string

const (
	SingleChoice    QuestionKind = "single_choice"
	FillBlank       QuestionKind = "fill_blank"
	OrderedMatching QuestionKind = "ordered_matching"
	CodeOutput      QuestionKind = "code_output"
	DebugFix        QuestionKind = "debug_fix"
)

// QuestionPayload is the closed set of kind-specific question content.
// Each payload type corresponds to exactly one QuestionKind; the grading
// engine switches on the concrete type.
type QuestionPayload interface {
	Kind() QuestionKind
}

// SingleChoicePayload holds options and the index of the correct one.
type SingleChoicePayload struct {
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
}

func (SingleChoicePayload) Kind() QuestionKind { return SingleChoice }

// FillBlankPayload holds the set of acceptable answers for a free-text blank.
// CaseSensitive is explicit per question; the default (false) folds case
// before comparison.
type FillBlankPayload struct {
	AcceptableAnswers []string `json:"acceptable_answers"`
	CaseSensitive     bool     `json:"case_sensitive"`
}

func (FillBlankPayload) Kind() QuestionKind { return FillBlank }

// OrderedMatchingPayload maps each stem id to the option id that completes it.
type OrderedMatchingPayload struct {
	Stems          []string          `json:"stems"`
	Options        []string          `json:"options"`
	CorrectMapping map[string]string `json:"correct_mapping"` // stemID -> optionID
}

func (OrderedMatchingPayload) Kind() QuestionKind { return OrderedMatching }

// CodeOutputPayload holds the expected output of a code snippet. Execution
// happens in an external sandboxed runner; grading only compares strings.
type CodeOutputPayload struct {
	Source         string `json:"source"`
	ExpectedOutput string `json:"expected_output"`
}

func (CodeOutputPayload) Kind() QuestionKind { return CodeOutput }

// DebugFixPayload holds a buggy snippet and the output a fixed version must
// produce.
type DebugFixPayload struct {
	BuggySource    string `json:"buggy_source"`
	ExpectedOutput string `json:"expected_output"`
}

func (DebugFixPayload) Kind() QuestionKind { return DebugFix }

// Question is an immutable quiz question. Instances are created by the
// question loader after payload validation and never mutated afterwards.
type Question struct {
	ID           string          `json:"id"`
	Kind         QuestionKind    `json:"kind"`
	Prompt       string          `json:"prompt"`
	Difficulty   int             `json:"difficulty"`     // 1-5
	TargetTimeMs int64           `json:"target_time_ms"` // > 0
	Hints        []string        `json:"hints,omitempty"`
	HintCost     int             `json:"hint_cost,omitempty"`
	Payload      QuestionPayload `json:"payload"`
}
