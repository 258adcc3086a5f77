// Package motion turns accelerometer samples into shake events.
package motion

import (
	"math"
	"time"

	"github.com/coreman2200/funtimes-snowglobe/internal/animation"
	"github.com/coreman2200/funtimes-snowglobe/internal/clock"
	"github.com/coreman2200/funtimes-snowglobe/internal/config"
	"github.com/rs/zerolog"
)

// StandardGravity in m/s^2.
const StandardGravity = 9.80665

// Sensor reports acceleration in m/s^2.
type Sensor interface {
	Acceleration() (x, y, z float64, err error)
}

// Shake averages samples readings taken over window and reports whether the
// magnitude of the averaged vector exceeds threshold.
func Shake(s Sensor, c clock.Clock, threshold float64, samples int, window time.Duration) (bool, error) {
	if samples < 1 {
		samples = 1
	}
	var sx, sy, sz float64
	for i := 0; i < samples; i++ {
		x, y, z, err := s.Acceleration()
		if err != nil {
			return false, err
		}
		sx += x
		sy += y
		sz += z
		c.Sleep(window / time.Duration(samples))
	}
	n := float64(samples)
	return math.Sqrt((sx/n)*(sx/n)+(sy/n)*(sy/n)+(sz/n)*(sz/n)) > threshold, nil
}

type Player interface {
	Play(k animation.Kind, p animation.Params)
}

type Resetter interface {
	Reset()
}

// Trigger plays the selected animation when the globe is shaken, then
// clears the snow.
type Trigger struct {
	Sensor   Sensor
	Clock    clock.Clock
	Settings *config.Settings
	Player   Player
	Field    Resetter
	Samples  int
	Window   time.Duration
	Log      zerolog.Logger

	Fired int
}

// Check samples the sensor once and reports whether a shake was handled. A
// failed read is treated as no shake.
func (t *Trigger) Check() bool {
	shaken, err := Shake(t.Sensor, t.Clock, t.Settings.Shake, t.Samples, t.Window)
	if err != nil {
		t.Log.Debug().Err(err).Msg("accelerometer read failed")
		return false
	}
	if !shaken {
		return false
	}
	t.Log.Info().Stringer("animation", t.Settings.Animation).Msg("shake")
	t.Player.Play(t.Settings.Animation, t.Settings.Params())
	t.Field.Reset()
	t.Fired++
	return true
}
