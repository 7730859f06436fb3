package domain

import "math"

// Category is the priority tier assigned to a lead. A is the highest.
type Category string

const (
	CategoryA Category = "A"
	CategoryB Category = "B"
	CategoryC Category = "C"
)

const (
	// Budget tiers in local currency units.
	budgetTierHigh   = 250000.0
	budgetTierMedium = 150000.0

	// DefaultIntentScore is assumed when the caller has no intent signal.
	DefaultIntentScore = 0.5

	// Thresholds on the [0,6] total.
	thresholdA = 4.5
	thresholdB = 3.0
)

// ClassifyInput carries the three signals the heuristic looks at.
// IntentScore is optional; nil means DefaultIntentScore.
type ClassifyInput struct {
	Urgency     Urgency
	Budget      float64
	IntentScore *float64
}

// Classify maps a lead's signals to A, B or C.
func Classify(in ClassifyInput) Category {
	return CategoryForScore(Score(in))
}

// Score returns the heuristic total in [0,6].
func Score(in ClassifyInput) float64 {
	return in.Urgency.Score() + budgetScore(in.Budget) + intentComponent(in.IntentScore)
}

// CategoryForScore applies the A/B thresholds to a total.
func CategoryForScore(total float64) Category {
	switch {
	case total >= thresholdA:
		return CategoryA
	case total >= thresholdB:
		return CategoryB
	default:
		return CategoryC
	}
}

func budgetScore(budget float64) float64 {
	switch {
	case math.IsNaN(budget):
		return 0
	case budget >= budgetTierHigh:
		return 2
	case budget >= budgetTierMedium:
		return 1
	default:
		return 0
	}
}

// intentComponent scales the clamped intent score to [0,2].
func intentComponent(intent *float64) float64 {
	v := DefaultIntentScore
	if intent != nil {
		v = *intent
	}
	return ClampIntent(v) * 2
}

// ClampIntent bounds an intent score to [0,1]. NaN counts as 0.
func ClampIntent(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
