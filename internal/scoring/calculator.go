package scoring

import "math"

// Params carries everything the calculator needs for one submission.
type Params struct {
	IsCorrect     bool  `json:"is_correct"`
	ElapsedMs     int64 `json:"elapsed_ms"`
	TargetTimeMs  int64 `json:"target_time_ms"`
	Difficulty    int   `json:"difficulty"`
	AttemptNumber int   `json:"attempt_number"` // 1-based
	HintsUsed     int   `json:"hints_used"`
}

// Breakdown is the computed score for one submission.
type Breakdown struct {
	Base      int `json:"base"`
	TimeBonus int `json:"time_bonus"`
	Total     int `json:"total"`
}

const basePoints = 10

// difficultyMultipliers maps difficulty 1-5 to its score multiplier.
// Out-of-range difficulty falls back to 1.0.
var difficultyMultipliers = map[int]float64{
	1: 1.0,
	2: 1.2,
	3: 1.5,
	4: 2.0,
	5: 2.5,
}

// Score computes the point total for one submission.
//
// The additive time bonus is applied before the multiplicative attempt and
// hint penalties. This ordering is part of the scoring contract: changing it
// changes historical scores, so it must not be rearranged.
func Score(params Params) Breakdown {
	if !params.IsCorrect {
		return Breakdown{}
	}

	bonus := timeBonus(params.ElapsedMs, params.TargetTimeMs)

	total := float64(basePoints+bonus) *
		difficultyMultiplier(params.Difficulty) *
		attemptPenalty(params.AttemptNumber) *
		hintPenalty(params.HintsUsed)

	rounded := int(math.Round(total))
	if rounded < 1 {
		// A correct answer always earns something.
		rounded = 1
	}

	return Breakdown{
		Base:      basePoints,
		TimeBonus: bonus,
		Total:     rounded,
	}
}

// timeBonus brackets elapsed time against the question's target. Ties land
// in the higher bracket.
func timeBonus(elapsedMs, targetMs int64) int {
	switch {
	case elapsedMs*2 <= targetMs:
		return 15
	case elapsedMs*4 <= targetMs*3:
		return 10
	case elapsedMs <= targetMs:
		return 5
	default:
		return 0
	}
}

func difficultyMultiplier(difficulty int) float64 {
	if m, ok := difficultyMultipliers[difficulty]; ok {
		return m
	}
	return 1.0
}

// attemptPenalty decreases with every retry and bottoms out at 0.4.
func attemptPenalty(attempt int) float64 {
	switch {
	case attempt <= 1:
		return 1.0
	case attempt == 2:
		return 0.8
	case attempt == 3:
		return 0.6
	default:
		return 0.4
	}
}

// hintPenalty shaves 20% per hint used, floored at half credit.
func hintPenalty(hintsUsed int) float64 {
	penalty := 1.0 - 0.2*float64(hintsUsed)
	return math.Max(0.5, penalty)
}
