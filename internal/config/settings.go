// Package config is the startup YAML configuration and the runtime
// Settings the companion app adjusts.
package config

import (
	"time"

	snowglobe "github.com/coreman2200/funtimes-snowglobe"
	"github.com/coreman2200/funtimes-snowglobe/internal/animation"
	"github.com/coreman2200/funtimes-snowglobe/model"
)

// Settings is the one mutable copy of what the animations play. The
// mutators enforce the lower bounds; upper bounds are left open.
type Settings struct {
	Animation animation.Kind
	Duration  time.Duration
	Interval  time.Duration
	Color     model.ColorVal
	Shake     float64
}

func DefaultSettings() Settings {
	return Default().Settings()
}

func (c *Config) Settings() Settings {
	s := Settings{
		Animation: c.Animation.Kind,
		Duration:  c.Animation.Duration,
		Interval:  c.Animation.Interval,
		Color:     model.NewColor(c.Animation.Color),
		Shake:     c.Animation.Shake,
	}
	if !s.Animation.Valid() {
		s.Animation = animation.Rotation
	}
	if s.Duration < snowglobe.MinDuration {
		s.Duration = snowglobe.MinDuration
	}
	if s.Interval < snowglobe.MinInterval {
		s.Interval = snowglobe.MinInterval
	}
	return s
}

// SpeedUp shortens the update interval.
func (s *Settings) SpeedUp() {
	s.Interval -= snowglobe.IntervalStep
	if s.Interval < snowglobe.MinInterval {
		s.Interval = snowglobe.MinInterval
	}
}

func (s *Settings) SpeedDown() {
	s.Interval += snowglobe.IntervalStep
}

func (s *Settings) DurationDown() {
	s.Duration -= snowglobe.DurationStep
	if s.Duration < snowglobe.MinDuration {
		s.Duration = snowglobe.MinDuration
	}
}

func (s *Settings) DurationUp() {
	s.Duration += snowglobe.DurationStep
}

// SelectAnimation picks the pattern for a 0 based button index.
func (s *Settings) SelectAnimation(i int) {
	s.Animation = animation.KindFromIndex(i)
}

func (s *Settings) SetColor(c model.ColorVal) {
	s.Color = c
}

func (s *Settings) Params() animation.Params {
	return animation.Params{
		Duration: s.Duration,
		Interval: s.Interval,
		Color:    s.Color,
	}
}
