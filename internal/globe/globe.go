// Package globe ties the parts of the ornament into its main loop: the
// connection state machine that, once per frame, checks for a shake, lets
// the snow fall, redraws the display and services the companion app.
package globe

import (
	"errors"
	"image"
	"math/rand/v2"

	snowglobe "github.com/coreman2200/funtimes-snowglobe"
	"github.com/coreman2200/funtimes-snowglobe/internal/animation"
	"github.com/coreman2200/funtimes-snowglobe/internal/clock"
	"github.com/coreman2200/funtimes-snowglobe/internal/command"
	"github.com/coreman2200/funtimes-snowglobe/internal/config"
	"github.com/coreman2200/funtimes-snowglobe/internal/flakes"
	"github.com/coreman2200/funtimes-snowglobe/internal/link"
	"github.com/coreman2200/funtimes-snowglobe/internal/motion"
	"github.com/coreman2200/funtimes-snowglobe/internal/render"
	"github.com/coreman2200/funtimes-snowglobe/internal/terrain"
	"github.com/coreman2200/funtimes-snowglobe/model"
	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/display"
)

type State uint8

const (
	Idle State = iota
	Advertising
	Connected
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Advertising:
		return "advertising"
	case Connected:
		return "connected"
	}
	return "unknown"
}

// Hardware is everything the globe talks to.
type Hardware struct {
	Ring    display.Drawer
	Display display.Drawer
	Sensor  motion.Sensor
	Link    link.Channel
	Clock   clock.Clock
	Rand    *rand.Rand
	Log     zerolog.Logger
}

type Globe struct {
	Settings config.Settings
	FPS      int

	Link     link.Channel
	Clock    clock.Clock
	Ring     *model.Ring
	Anim     *animation.Engine
	Motion   *motion.Trigger
	Field    *flakes.Field
	Render   *render.Engine
	Dispatch *command.Dispatcher
	Log      zerolog.Logger

	// OnFrame runs on the loop goroutine after every Step.
	OnFrame func(g *Globe)
	// OnState runs on the loop goroutine on every state change.
	OnState func(from, to State)
	// OnFault runs on the loop goroutine when part ("link" or "display")
	// fails. Display failures are reported once until the display recovers.
	OnFault func(part string, err error)

	state       State
	advertising bool
	renderErr   bool

	Frames int
}

// Build assembles a globe from the startup configuration.
func Build(cfg *config.Config, hw Hardware) (*Globe, error) {
	if hw.Ring == nil || hw.Display == nil || hw.Sensor == nil || hw.Link == nil {
		return nil, errors.New("globe: missing hardware")
	}
	if hw.Clock == nil {
		hw.Clock = clock.New()
	}
	if hw.Rand == nil {
		hw.Rand = rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9E3779B97F4A7C15))
	}

	g := &Globe{
		Settings: cfg.Settings(),
		FPS:      cfg.FPS,
		Link:     hw.Link,
		Clock:    hw.Clock,
		Log:      hw.Log,
	}

	g.Ring = model.NewRing(cfg.LED.Count, hw.Ring)
	g.Ring.SetBrightness(cfg.LED.Brightness)
	g.Anim = animation.NewEngine(g.Ring, hw.Clock, hw.Rand)
	g.Anim.Log = hw.Log.With().Str("component", "animation").Logger()

	b := hw.Display.Bounds()
	snowColor := model.NewColor(cfg.Snow.Color).ToRGB(1)
	tr := terrain.New(b.Dx(), b.Dy(), snowColor)
	sheet := render.LoadSheet(cfg.Snow.Sheet, cfg.Snow.FlakeWidth, cfg.Snow.FlakeHeight,
		model.NewColor(cfg.Snow.Transparent).ToRGB(1))
	g.Field = flakes.New(flakes.Config{
		Count:   cfg.Snow.Flakes,
		Sprites: sheet.Count,
		Spread:  sheet.TileW,
		Slope:   cfg.Snow.Steepness,
	}, tr, hw.Rand)

	bg := render.LoadBackground(cfg.Display.Background, model.NewColor(cfg.Display.BackgroundColor).ToRGB(1), b.Dx(), b.Dy())
	r, err := render.NewEngine(hw.Display, bg, sheet, g.Field)
	if err != nil {
		return nil, err
	}
	g.Render = r

	g.Motion = &motion.Trigger{
		Sensor:   hw.Sensor,
		Clock:    hw.Clock,
		Settings: &g.Settings,
		Player:   g.Anim,
		Field:    g.Field,
		Samples:  snowglobe.ShakeSamples,
		Window:   snowglobe.ShakeWindow,
		Log:      hw.Log.With().Str("component", "motion").Logger(),
	}
	g.Dispatch = command.NewDispatcher(hw.Link, &g.Settings, g.Anim, hw.Log.With().Str("component", "command").Logger())
	return g, nil
}

func (g *Globe) State() State { return g.state }

// Advertising reports whether an advertisement is believed to be running.
func (g *Globe) Advertising() bool { return g.advertising }

func (g *Globe) setState(s State) {
	if s == g.state {
		return
	}
	from := g.state
	g.state = s
	g.Log.Info().Stringer("from", from).Stringer("to", s).Msg("state")
	if g.OnState != nil {
		g.OnState(from, s)
	}
}

// Step runs one loop iteration.
func (g *Globe) Step() {
	connected := g.Link.Connected()
	switch {
	case connected && g.state != Connected:
		g.Anim.Indicate(animation.Connected, g.Settings.Color)
		g.advertising = false
		g.setState(Connected)
	case !connected && g.state == Connected:
		g.Anim.Indicate(animation.Disconnected, g.Settings.Color)
		g.Dispatch.Reset()
		g.advertising = false
		g.setState(Idle)
	}

	g.Motion.Check()

	if !connected && !g.advertising {
		if err := g.Link.Advertise(); err != nil {
			g.Log.Warn().Err(err).Msg("advertise failed")
			g.fault("link", err)
		} else {
			g.advertising = true
			g.setState(Advertising)
		}
	}

	g.Field.Advance()
	g.present()

	if connected {
		g.Dispatch.Poll()
	}

	g.Frames++
	if g.OnFrame != nil {
		g.OnFrame(g)
	}
}

func (g *Globe) present() {
	err := g.Render.ComposeAndPresent()
	if err != nil && !g.renderErr {
		g.Log.Warn().Err(err).Msg("display write failed")
		g.fault("display", err)
	} else if err == nil && g.renderErr {
		g.Log.Info().Msg("display recovered")
	}
	g.renderErr = err != nil
}

func (g *Globe) fault(part string, err error) {
	if g.OnFault != nil {
		g.OnFault(part, err)
	}
}

// Snapshot is a copy of what the globe shows, safe to hand to another
// goroutine.
type Snapshot struct {
	State    State
	Settings config.Settings
	Frame    int
	Landings int
	Resets   int
	Shakes   int

	// LinkDropped counts bytes lost to a full receive buffer; PacketDropped
	// counts what the decoder threw away.
	LinkDropped   int
	PacketDropped int

	Ring    *image.NRGBA
	Display *image.NRGBA
}

func (g *Globe) linkDropped() int {
	if d, ok := g.Link.(interface{ Dropped() int }); ok {
		return d.Dropped()
	}
	return 0
}

func (g *Globe) Snapshot() Snapshot {
	frame := g.Render.Frame()
	disp := image.NewNRGBA(frame.Rect)
	copy(disp.Pix, frame.Pix)
	return Snapshot{
		State:    g.state,
		Settings: g.Settings,
		Frame:    g.Frames,
		Landings: g.Field.Landings,
		Resets:   g.Field.Resets,
		Shakes:   g.Motion.Fired,

		LinkDropped:   g.linkDropped(),
		PacketDropped: g.Dispatch.Dropped,

		Ring:    g.Ring.Image(),
		Display: disp,
	}
}
