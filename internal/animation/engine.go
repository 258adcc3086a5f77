// Package animation plays the time boxed LED ring patterns and the fixed
// indicator blinks.
//
// Every routine here blocks the caller: it polls the clock until its time is
// up and leaves the ring cleared. Nothing runs in the background.
package animation

import (
	"math/rand/v2"
	"time"

	"github.com/coreman2200/funtimes-snowglobe/internal/clock"
	"github.com/coreman2200/funtimes-snowglobe/model"
	"github.com/rs/zerolog"
)

// DefaultPoll is how long the engine sleeps between clock checks.
const DefaultPoll = time.Millisecond

const pulseStep = 0.05

type Params struct {
	Duration time.Duration
	Interval time.Duration // minimum time between visible updates
	Color    model.ColorVal
}

// Engine drives one ring.
type Engine struct {
	Ring  *model.Ring
	Clock clock.Clock
	Rand  *rand.Rand
	Poll  time.Duration
	Log   zerolog.Logger

	// Last describes the most recent Play.
	Last struct {
		Kind    Kind
		Ticks   int
		Elapsed time.Duration
	}

	showErr bool
}

func NewEngine(r *model.Ring, c clock.Clock, rnd *rand.Rand) *Engine {
	return &Engine{
		Ring:  r,
		Clock: c,
		Rand:  rnd,
		Poll:  DefaultPoll,
		Log:   zerolog.Nop(),
	}
}

// pattern prepares the ring for a run and returns the per tick update.
type pattern func(e *Engine, p Params) func()

var patterns = [...]pattern{
	Rotation: rotation,
	Pulse:    pulse,
	Strobe:   strobe,
	Sparkle:  sparkle,
}

// Play runs pattern k for p.Duration, updating the ring whenever more than
// p.Interval has passed since the previous update. The ring is cleared and
// its brightness restored on return.
func (e *Engine) Play(k Kind, p Params) {
	if !k.Valid() {
		e.Log.Warn().Uint8("kind", uint8(k)).Msg("unknown animation, playing rotation")
		k = Rotation
	}
	prev := e.Ring.Brightness()
	defer func() {
		e.Ring.Clear()
		e.Ring.SetBrightness(prev)
		e.show()
	}()

	tick := patterns[k](e, p)
	start := e.Clock.Now()
	last := start
	ticks := 0
	for clock.Since(e.Clock, start) < p.Duration {
		if clock.Since(e.Clock, last) > p.Interval {
			tick()
			e.show()
			ticks++
			last = e.Clock.Now()
		}
		e.Clock.Sleep(e.poll())
	}

	e.Last.Kind = k
	e.Last.Ticks = ticks
	e.Last.Elapsed = clock.Since(e.Clock, start)
	e.Log.Debug().Stringer("kind", k).Int("ticks", ticks).Dur("elapsed", e.Last.Elapsed).Msg("animation done")
}

func (e *Engine) poll() time.Duration {
	if e.Poll <= 0 {
		return DefaultPoll
	}
	return e.Poll
}

func (e *Engine) show() {
	err := e.Ring.Show()
	if err != nil && !e.showErr {
		e.Log.Warn().Err(err).Msg("ring output failed")
	} else if err == nil && e.showErr {
		e.Log.Info().Msg("ring output recovered")
	}
	e.showErr = err != nil
}

func alternate(r *model.Ring, c model.ColorVal) {
	r.FillWith(func(i int) model.ColorVal { return model.PickColor(c, i) })
}

// rotation walks a single lit LED backwards around the ring.
func rotation(e *Engine, p Params) func() {
	i := -1
	return func() {
		e.Ring.Clear()
		n := e.Ring.Len()
		at := ((i % n) + n) % n
		e.Ring.Set(at, model.PickColor(p.Color, at))
		i--
	}
}

// pulse fades the whole ring in and out as a triangle wave.
func pulse(e *Engine, p Params) func() {
	level, delta := 0.0, pulseStep
	e.Ring.SetBrightness(0)
	alternate(e.Ring, p.Color)
	e.show()
	return func() {
		level += delta
		if level > 1 {
			level = 1
			delta = -delta
		}
		if level < 0 {
			level = 0
			delta = -delta
		}
		e.Ring.SetBrightness(level)
	}
}

func strobe(e *Engine, p Params) func() {
	on := true
	return func() {
		if on {
			alternate(e.Ring, p.Color)
		} else {
			e.Ring.Clear()
		}
		on = !on
	}
}

func sparkle(e *Engine, p Params) func() {
	return func() {
		e.Ring.Clear()
		at := e.Rand.IntN(e.Ring.Len())
		e.Ring.Set(at, model.PickColor(p.Color, e.Rand.IntN(2)))
	}
}
