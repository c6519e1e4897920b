package spacedrep

import (
	"sort"
	"time"

	"github.com/abhisek/revise/internal/mastery"
)

// RecommendationItem is a review candidate in API shape.
type RecommendationItem struct {
	OutcomeID        string       `json:"outcome_id"`
	Urgency          float64      `json:"urgency"`
	EffectiveMastery float64      `json:"effective_mastery"`
	Reason           ReviewStatus `json:"reason"`
}

// Recommend returns up to limit outcomes that need review, most urgent first.
// Outcomes with zero urgency are never included, so the result may be shorter
// than limit.
func Recommend(records []mastery.OutcomeRecord, now time.Time, limit int, p Params) ([]RecommendationItem, error) {
	if err := validateLimit(limit); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	decayed, err := decaySnapshot(records, now, p)
	if err != nil {
		return nil, err
	}
	return rank(decayed, limit, p), nil
}

// rank orders due outcomes by urgency, then elapsed days, then outcome ID.
func rank(decayed []DecayedOutcome, limit int, p Params) []RecommendationItem {
	due := make([]DecayedOutcome, 0, len(decayed))
	for _, d := range decayed {
		if d.Urgency > 0 {
			due = append(due, d)
		}
	}

	sort.Slice(due, func(i, j int) bool {
		if due[i].Urgency != due[j].Urgency {
			return due[i].Urgency > due[j].Urgency
		}
		if due[i].ElapsedDays != due[j].ElapsedDays {
			return due[i].ElapsedDays > due[j].ElapsedDays
		}
		return due[i].OutcomeID < due[j].OutcomeID
	})

	if len(due) > limit {
		due = due[:limit]
	}

	items := make([]RecommendationItem, len(due))
	for i, d := range due {
		items[i] = RecommendationItem{
			OutcomeID:        d.OutcomeID,
			Urgency:          d.Urgency,
			EffectiveMastery: d.EffectiveMastery,
			Reason:           d.Status(p),
		}
	}
	return items
}

func validateLimit(limit int) error {
	if limit < 1 {
		return invalid("limit", limit, "must be at least 1")
	}
	return nil
}
