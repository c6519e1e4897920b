package spacedrep

import (
	"time"

	"github.com/abhisek/revise/internal/mastery"
)

// decaySnapshot decays every record against the same now. The result is the
// shared read-only input of the ranking, aggregation and projection steps.
func decaySnapshot(records []mastery.OutcomeRecord, now time.Time, p Params) ([]DecayedOutcome, error) {
	out := make([]DecayedOutcome, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		if seen[rec.OutcomeID] {
			return nil, invalid("outcome_id", rec.OutcomeID, "duplicate outcome in record set")
		}
		seen[rec.OutcomeID] = true

		d, err := Decay(rec, now, p)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
