package spacedrep

import (
	"math"
	"time"

	"github.com/abhisek/revise/internal/mastery"
)

// DecayedOutcome is an outcome's mastery projected to a point in time.
type DecayedOutcome struct {
	OutcomeID        string    `json:"outcome_id"`
	EffectiveMastery float64   `json:"effective_mastery"`
	Urgency          float64   `json:"urgency"`
	DueAt            time.Time `json:"due_at"`
	ElapsedDays      float64   `json:"elapsed_days"`
	HalfLifeDays     float64   `json:"half_life_days"`
	Practiced        bool      `json:"practiced"`
}

// Decay applies the retention curve to a record as of now.
func Decay(rec mastery.OutcomeRecord, now time.Time, p Params) (DecayedOutcome, error) {
	if err := validateRecord(rec, now); err != nil {
		return DecayedOutcome{}, err
	}

	d := DecayedOutcome{
		OutcomeID:    rec.OutcomeID,
		HalfLifeDays: p.HalfLifeDays(rec.ReviewCount),
	}
	if !rec.Practiced() {
		d.EffectiveMastery = rec.MasteryScore
		return d, nil
	}

	d.Practiced = true
	d.ElapsedDays = now.Sub(rec.LastPracticedAt).Hours() / 24.0
	d.EffectiveMastery = rec.MasteryScore * Retention(d.ElapsedDays, d.HalfLifeDays)
	if math.IsNaN(d.EffectiveMastery) || d.EffectiveMastery < 0 || d.EffectiveMastery > 1 {
		return DecayedOutcome{}, &ComputationError{OutcomeID: rec.OutcomeID, Quantity: "effective mastery", Value: d.EffectiveMastery}
	}

	if d.EffectiveMastery < p.DueThreshold {
		d.Urgency = p.DueThreshold - d.EffectiveMastery + p.ElapsedBonusPerDay*d.ElapsedDays
		d.DueAt = now
	} else {
		d.DueAt = crossingTime(rec, now, d.ElapsedDays, d.HalfLifeDays, p.DueThreshold)
	}
	if math.IsNaN(d.Urgency) || d.Urgency < 0 {
		return DecayedOutcome{}, &ComputationError{OutcomeID: rec.OutcomeID, Quantity: "urgency", Value: d.Urgency}
	}
	return d, nil
}

// Retention returns the share of mastery retained after elapsedDays under an
// exponential curve with the given half-life.
func Retention(elapsedDays, halfLifeDays float64) float64 {
	if elapsedDays <= 0 {
		return 1
	}
	return math.Exp2(-elapsedDays / halfLifeDays)
}

// crossingTime returns when the projected mastery first drops to threshold,
// never earlier than now and never later than maxDueDays after now.
func crossingTime(rec mastery.OutcomeRecord, now time.Time, elapsedDays, halfLifeDays, threshold float64) time.Time {
	remaining := halfLifeDays*math.Log2(rec.MasteryScore/threshold) - elapsedDays
	switch {
	case math.IsNaN(remaining) || remaining > maxDueDays:
		remaining = maxDueDays
	case remaining < 0:
		return now
	}
	return now.Add(time.Duration(remaining * 24 * float64(time.Hour)))
}

func validateRecord(rec mastery.OutcomeRecord, now time.Time) error {
	switch {
	case rec.OutcomeID == "":
		return invalid("outcome_id", rec.OutcomeID, "must not be empty")
	case math.IsNaN(rec.MasteryScore) || rec.MasteryScore < 0 || rec.MasteryScore > 1:
		return invalid("mastery_score", rec.MasteryScore, "must be in [0, 1]")
	case rec.ReviewCount < 0:
		return invalid("review_count", rec.ReviewCount, "must not be negative")
	case rec.LastPracticedAt.After(now):
		return invalid("last_practiced_at", rec.LastPracticedAt.Format(time.RFC3339), "must not be in the future")
	}
	return nil
}

// ReviewStatus classifies a decayed outcome against the two thresholds.
type ReviewStatus string

const (
	StatusNotPracticed ReviewStatus = "not_practiced"
	StatusOverdue      ReviewStatus = "overdue"
	StatusDueSoon      ReviewStatus = "due_soon"
	StatusMastered     ReviewStatus = "mastered"
)

// Status returns the bucket the outcome falls into.
func (d DecayedOutcome) Status(p Params) ReviewStatus {
	switch {
	case !d.Practiced:
		return StatusNotPracticed
	case d.Urgency > 0 && d.EffectiveMastery < p.OverdueThreshold:
		return StatusOverdue
	case d.EffectiveMastery < p.DueThreshold:
		return StatusDueSoon
	default:
		return StatusMastered
	}
}
