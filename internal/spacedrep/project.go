package spacedrep

import (
	"sort"
	"time"

	"github.com/abhisek/revise/internal/mastery"
)

// DateLayout is the calendar-day format of UpcomingReviewEntry.Date.
const DateLayout = "2006-01-02"

// UpcomingReviewEntry lists the outcomes falling due on one calendar day.
type UpcomingReviewEntry struct {
	Date       string   `json:"date"`
	OutcomeIDs []string `json:"outcome_ids"`
}

// Project buckets the due dates within [now, now+horizonDays) by calendar day
// in p.Location. Days without due outcomes are omitted; outcomes due beyond
// the horizon are dropped, not clipped to the last day.
func Project(records []mastery.OutcomeRecord, now time.Time, horizonDays int, p Params) ([]UpcomingReviewEntry, error) {
	if err := validateHorizon(horizonDays); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	decayed, err := decaySnapshot(records, now, p)
	if err != nil {
		return nil, err
	}
	return bucket(decayed, now, horizonDays, p), nil
}

func bucket(decayed []DecayedOutcome, now time.Time, horizonDays int, p Params) []UpcomingReviewEntry {
	// Due dates saturate at maxDueDays, so a longer horizon covers everything.
	bounded := horizonDays <= maxDueDays
	var end time.Time
	if bounded {
		end = now.Add(time.Duration(horizonDays) * 24 * time.Hour)
	}

	loc := p.location()
	days := make(map[string][]DecayedOutcome)
	for _, d := range decayed {
		if !d.Practiced || d.DueAt.Before(now) {
			continue
		}
		if bounded && !d.DueAt.Before(end) {
			continue
		}
		key := d.DueAt.In(loc).Format(DateLayout)
		days[key] = append(days[key], d)
	}

	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]UpcomingReviewEntry, 0, len(keys))
	for _, k := range keys {
		due := days[k]
		sort.Slice(due, func(i, j int) bool {
			if !due[i].DueAt.Equal(due[j].DueAt) {
				return due[i].DueAt.Before(due[j].DueAt)
			}
			return due[i].OutcomeID < due[j].OutcomeID
		})
		ids := make([]string, len(due))
		for i, d := range due {
			ids[i] = d.OutcomeID
		}
		entries = append(entries, UpcomingReviewEntry{Date: k, OutcomeIDs: ids})
	}
	return entries
}

func validateHorizon(horizonDays int) error {
	if horizonDays < 1 {
		return invalid("horizon_days", horizonDays, "must be at least 1")
	}
	return nil
}
