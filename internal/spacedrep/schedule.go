package spacedrep

import (
	"math"
	"time"
)

// Default tuning. These are starting values, not product constants; every
// deployment sets its own through configuration.
const (
	DefaultDueThreshold       = 0.6
	DefaultOverdueThreshold   = 0.4
	DefaultBaseHalfLifeDays   = 2.0
	DefaultHalfLifeGrowth     = 2.0
	DefaultMaxHalfLifeDays    = 365.0
	DefaultElapsedBonusPerDay = 0.0001
)

// maxDueDays bounds how far ahead a due date is projected.
const maxDueDays = 100 * 365

// Params holds the decay curve and the two mastery thresholds.
type Params struct {
	// DueThreshold is the effective mastery below which an outcome needs review.
	DueThreshold float64
	// OverdueThreshold is the stricter threshold marking an outcome as weak.
	// Must be below DueThreshold.
	OverdueThreshold float64
	// BaseHalfLifeDays is the retention half-life of a never-reviewed outcome.
	BaseHalfLifeDays float64
	// HalfLifeGrowth multiplies the half-life for every completed review.
	HalfLifeGrowth float64
	// MaxHalfLifeDays caps the half-life. Zero means uncapped.
	MaxHalfLifeDays float64
	// ElapsedBonusPerDay is added to urgency per day since last practice.
	ElapsedBonusPerDay float64
	// Location is the reporting timezone used to bucket due dates into days.
	// Nil means UTC.
	Location *time.Location
}

// DefaultParams returns Params with the default tuning in UTC.
func DefaultParams() Params {
	return Params{
		DueThreshold:       DefaultDueThreshold,
		OverdueThreshold:   DefaultOverdueThreshold,
		BaseHalfLifeDays:   DefaultBaseHalfLifeDays,
		HalfLifeGrowth:     DefaultHalfLifeGrowth,
		MaxHalfLifeDays:    DefaultMaxHalfLifeDays,
		ElapsedBonusPerDay: DefaultElapsedBonusPerDay,
		Location:           time.UTC,
	}
}

// Validate checks that the thresholds are ordered and the curve is decaying.
func (p Params) Validate() error {
	switch {
	case !finite(p.DueThreshold) || p.DueThreshold <= 0 || p.DueThreshold > 1:
		return invalid("due_threshold", p.DueThreshold, "must be in (0, 1]")
	case !finite(p.OverdueThreshold) || p.OverdueThreshold <= 0:
		return invalid("overdue_threshold", p.OverdueThreshold, "must be positive")
	case p.OverdueThreshold >= p.DueThreshold:
		return invalid("overdue_threshold", p.OverdueThreshold, "must be below due_threshold")
	case !finite(p.BaseHalfLifeDays) || p.BaseHalfLifeDays <= 0:
		return invalid("base_half_life_days", p.BaseHalfLifeDays, "must be positive")
	case !finite(p.HalfLifeGrowth) || p.HalfLifeGrowth < 1:
		return invalid("half_life_growth", p.HalfLifeGrowth, "must be at least 1")
	case !finite(p.MaxHalfLifeDays) || p.MaxHalfLifeDays < 0:
		return invalid("max_half_life_days", p.MaxHalfLifeDays, "must not be negative")
	case p.MaxHalfLifeDays > 0 && p.MaxHalfLifeDays < p.BaseHalfLifeDays:
		return invalid("max_half_life_days", p.MaxHalfLifeDays, "must not be below base_half_life_days")
	case !finite(p.ElapsedBonusPerDay) || p.ElapsedBonusPerDay < 0:
		return invalid("elapsed_bonus_per_day", p.ElapsedBonusPerDay, "must not be negative")
	}
	return nil
}

// HalfLifeDays returns the retention half-life after reviewCount reviews.
func (p Params) HalfLifeDays(reviewCount int) float64 {
	hl := p.BaseHalfLifeDays * math.Pow(p.HalfLifeGrowth, float64(reviewCount))
	if p.MaxHalfLifeDays > 0 && hl > p.MaxHalfLifeDays {
		return p.MaxHalfLifeDays
	}
	return hl
}

func (p Params) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
