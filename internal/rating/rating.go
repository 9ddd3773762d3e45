// Package rating derives an inspection's overall rating from its condition fields.
package rating

import "github.com/wolfeidau/inspect/internal/models"

// adverse is the closed set of conditions that count against a property.
var adverse = map[models.Condition]struct{}{
	models.ConditionPoor:       {},
	models.ConditionDamaged:    {},
	models.ConditionMissing:    {},
	models.ConditionNotWorking: {},
	models.ConditionNotLocking: {},
}

// IsAdverse reports whether c is in the adverse set. Matching is exact and case-sensitive.
func IsAdverse(c models.Condition) bool {
	_, ok := adverse[c]
	return ok
}

// Tally holds the counts the decision table is evaluated against.
type Tally struct {
	Adverse   int
	Excellent int
	Good      int
}

// Count tallies the values. Unrecognized values count toward nothing.
func Count(values []models.Condition) Tally {
	var t Tally
	for _, v := range values {
		switch {
		case IsAdverse(v):
			t.Adverse++
		case v == models.ConditionExcellent:
			t.Excellent++
		case v == models.ConditionGood:
			t.Good++
		}
	}
	return t
}

// Rating applies the decision table; the first matching row wins.
func (t Tally) Rating() models.Rating {
	switch {
	case t.Adverse > 5:
		return models.RatingCritical
	case t.Adverse > 2:
		return models.RatingPoor
	case t.Excellent > 10:
		return models.RatingExcellent
	case t.Good > 10 || t.Excellent > 5:
		return models.RatingGood
	default:
		return models.RatingFair
	}
}

// Score maps condition observations to an overall rating. It is total and never fails.
func Score(values []models.Condition) models.Rating {
	return Count(values).Rating()
}

// ForInspection scores the 16 condition fields of an inspection.
func ForInspection(in *models.Inspection) models.Rating {
	return Score(in.Conditions())
}
