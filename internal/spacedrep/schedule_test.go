package spacedrep

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestDefaultParams_Valid(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("DefaultParams().Validate() = %v", err)
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
		field  string
	}{
		{"due zero", func(p *Params) { p.DueThreshold = 0 }, "due_threshold"},
		{"due above one", func(p *Params) { p.DueThreshold = 1.2 }, "due_threshold"},
		{"due NaN", func(p *Params) { p.DueThreshold = math.NaN() }, "due_threshold"},
		{"overdue zero", func(p *Params) { p.OverdueThreshold = 0 }, "overdue_threshold"},
		{"overdue equals due", func(p *Params) { p.OverdueThreshold = p.DueThreshold }, "overdue_threshold"},
		{"overdue above due", func(p *Params) { p.OverdueThreshold = 0.9 }, "overdue_threshold"},
		{"base half-life zero", func(p *Params) { p.BaseHalfLifeDays = 0 }, "base_half_life_days"},
		{"growth below one", func(p *Params) { p.HalfLifeGrowth = 0.9 }, "half_life_growth"},
		{"max negative", func(p *Params) { p.MaxHalfLifeDays = -1 }, "max_half_life_days"},
		{"max below base", func(p *Params) { p.MaxHalfLifeDays = 1 }, "max_half_life_days"},
		{"bonus negative", func(p *Params) { p.ElapsedBonusPerDay = -0.1 }, "elapsed_bonus_per_day"},
		{"bonus infinite", func(p *Params) { p.ElapsedBonusPerDay = math.Inf(1) }, "elapsed_bonus_per_day"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			err := p.Validate()
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Validate() = %v, want *ValidationError", err)
			}
			if vErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", vErr.Field, tt.field)
			}
			if !errors.Is(err, ErrValidation) {
				t.Error("expected errors.Is(err, ErrValidation)")
			}
		})
	}
}

func TestHalfLifeDays_GrowsWithReviews(t *testing.T) {
	p := testParams()
	tests := []struct {
		reviews int
		want    float64
	}{
		{0, 1},
		{1, 2},
		{2, 4},
		{5, 32},
	}
	for _, tt := range tests {
		if got := p.HalfLifeDays(tt.reviews); got != tt.want {
			t.Errorf("HalfLifeDays(%d) = %v, want %v", tt.reviews, got, tt.want)
		}
	}
}

func TestHalfLifeDays_Capped(t *testing.T) {
	p := testParams()
	p.MaxHalfLifeDays = 10
	if got := p.HalfLifeDays(3); got != 8 {
		t.Errorf("HalfLifeDays(3) = %v, want 8", got)
	}
	if got := p.HalfLifeDays(4); got != 10 {
		t.Errorf("HalfLifeDays(4) = %v, want 10 (capped)", got)
	}
}

func TestLocation_DefaultsToUTC(t *testing.T) {
	p := testParams()
	p.Location = nil
	if p.location() != time.UTC {
		t.Errorf("location() = %v, want UTC", p.location())
	}
}
