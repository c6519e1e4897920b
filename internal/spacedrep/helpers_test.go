package spacedrep

import (
	"time"

	"github.com/abhisek/revise/internal/mastery"
)

// testParams uses a one-day base half-life and round thresholds so expected
// values can be computed by hand: mastery 1.0 halves every day at zero reviews.
func testParams() Params {
	return Params{
		DueThreshold:     0.5,
		OverdueThreshold: 0.25,
		BaseHalfLifeDays: 1,
		HalfLifeGrowth:   2,
		Location:         time.UTC,
	}
}

var testNow = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

func daysAgo(days float64) time.Time {
	return testNow.Add(-time.Duration(days * 24 * float64(time.Hour)))
}

func rec(id string, score float64, practicedDaysAgo float64, reviews int) mastery.OutcomeRecord {
	return mastery.OutcomeRecord{
		OutcomeID:       id,
		MasteryScore:    score,
		LastPracticedAt: daysAgo(practicedDaysAgo),
		ReviewCount:     reviews,
	}
}
