// Package flakes owns the falling snow: a fixed arena of flakes that fall
// at a speed set by their sprite, land on the terrain, and are recycled at
// the top of the display.
package flakes

import (
	"math/rand/v2"

	"github.com/coreman2200/funtimes-snowglobe/internal/terrain"
)

// Flake is one falling particle. Y is the continuous vertical offset, Row
// its truncated screen row.
type Flake struct {
	Sprite int
	X      int
	Y      float64
	Row    int
}

// Refresher lets the field pause display refresh while it rewrites every
// flake and the whole terrain at once.
type Refresher interface {
	SetAutoRefresh(on bool)
}

type Config struct {
	Count   int
	Sprites int // number of sprite classes in the sheet
	Spread  int // half width of the snow pile a landing flake makes
	Slope   int // max step between neighbouring columns
}

type Field struct {
	cfg     Config
	flakes  []Flake
	terrain *terrain.Terrain
	rnd     *rand.Rand
	refresh Refresher

	Landings int // flakes landed since start
	Resets   int // times the field was cleared
}

func New(cfg Config, t *terrain.Terrain, rnd *rand.Rand) *Field {
	if cfg.Sprites < 1 {
		cfg.Sprites = 1
	}
	if cfg.Count < 0 {
		cfg.Count = 0
	}
	f := &Field{
		cfg:     cfg,
		flakes:  make([]Flake, cfg.Count),
		terrain: t,
		rnd:     rnd,
	}
	f.scatter()
	return f
}

// SetRefresher registers the display to pause during Reset.
func (f *Field) SetRefresher(r Refresher) {
	f.refresh = r
}

// Flakes is the arena itself. The renderer reads it every frame; tests poke
// at it directly.
func (f *Field) Flakes() []Flake {
	return f.flakes
}

func (f *Field) Terrain() *terrain.Terrain {
	return f.terrain
}

func (f *Field) Sprites() int {
	return f.cfg.Sprites
}

// Speed is how many rows a flake of the given sprite falls per frame. Higher
// sprite indices fall slower.
func (f *Field) Speed(sprite int) float64 {
	return 1 - float64(sprite)/float64(f.cfg.Sprites)
}

// Reset clears the snow and sends every flake back above the display with
// a fresh sprite, column and staggered start.
func (f *Field) Reset() {
	if f.refresh != nil {
		f.refresh.SetAutoRefresh(false)
		defer f.refresh.SetAutoRefresh(true)
	}
	f.scatter()
	f.terrain.Reset()
	f.Resets++
}

func (f *Field) scatter() {
	h := f.terrain.MaxHeight()
	for i := range f.flakes {
		fl := &f.flakes[i]
		fl.Sprite = f.rnd.IntN(f.cfg.Sprites)
		fl.X = f.column()
		fl.Y = 0
		if h > 0 {
			fl.Y = -float64(f.rnd.IntN(h))
		}
		fl.Row = int(fl.Y)
	}
}

func (f *Field) column() int {
	return f.rnd.IntN(f.terrain.Width())
}

// Advance moves every flake one frame. A flake that reaches the surface at
// its column deposits snow there and restarts at the top in a new column.
// It returns how many flakes landed.
func (f *Field) Advance() int {
	if f.terrain.Full() {
		f.Reset()
	}

	landed := 0
	for i := range f.flakes {
		fl := &f.flakes[i]
		fl.Y += f.Speed(fl.Sprite)
		if fl.Y >= float64(f.terrain.Height(fl.X)) {
			f.terrain.Deposit(fl.X, f.cfg.Spread, f.cfg.Slope)
			fl.Y = 0
			fl.X = f.column()
			landed++
		}
		fl.Row = int(fl.Y)
	}
	f.Landings += landed
	return landed
}
