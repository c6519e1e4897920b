package spacedrep

import (
	"math"
	"time"

	"github.com/abhisek/revise/internal/mastery"
)

// ReviewStats summarises a record set. Every outcome is counted in exactly one
// of the overdue, due-soon, mastered and not-practiced buckets.
type ReviewStats struct {
	TotalOutcomes     int     `json:"total_outcomes"`
	OverdueCount      int     `json:"overdue_count"`
	DueSoonCount      int     `json:"due_soon_count"`
	MasteredCount     int     `json:"mastered_count"`
	NotPracticedCount int     `json:"not_practiced_count"`
	OverallMastery    float64 `json:"overall_mastery"`
}

// Aggregate computes ReviewStats for records as of now.
func Aggregate(records []mastery.OutcomeRecord, now time.Time, p Params) (ReviewStats, error) {
	if err := p.Validate(); err != nil {
		return ReviewStats{}, err
	}
	decayed, err := decaySnapshot(records, now, p)
	if err != nil {
		return ReviewStats{}, err
	}
	return aggregate(decayed, p)
}

func aggregate(decayed []DecayedOutcome, p Params) (ReviewStats, error) {
	stats := ReviewStats{TotalOutcomes: len(decayed)}
	if len(decayed) == 0 {
		return stats, nil
	}

	var sum float64
	for _, d := range decayed {
		sum += d.EffectiveMastery
		switch d.Status(p) {
		case StatusNotPracticed:
			stats.NotPracticedCount++
		case StatusOverdue:
			stats.OverdueCount++
		case StatusDueSoon:
			stats.DueSoonCount++
		case StatusMastered:
			stats.MasteredCount++
		}
	}

	stats.OverallMastery = sum / float64(len(decayed))
	if math.IsNaN(stats.OverallMastery) || stats.OverallMastery < 0 || stats.OverallMastery > 1 {
		return ReviewStats{}, &ComputationError{Quantity: "overall mastery", Value: stats.OverallMastery}
	}
	return stats, nil
}
