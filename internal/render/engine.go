// Package render composes the snow scene and presents it on the display.
package render

import (
	"errors"
	"image"
	"image/draw"
	"time"

	"github.com/coreman2200/funtimes-snowglobe/internal/flakes"
	"periph.io/x/conn/v3/display"
)

// Engine draws, back to front, the background, every flake and the settled
// snow into one frame, then hands the frame to the display in a single Draw.
type Engine struct {
	Display    display.Drawer
	Background image.Image
	Sheet      *Sheet
	Field      *flakes.Field

	frame *image.NRGBA
	auto  bool

	Frames int

	// metrics (last durations in ms)
	Last struct {
		ComposeMS float64
		PresentMS float64
		TotalMS   float64
	}
}

func NewEngine(d display.Drawer, bg image.Image, sheet *Sheet, f *flakes.Field) (*Engine, error) {
	if d == nil {
		return nil, errors.New("render: no display")
	}
	if sheet == nil || sheet.Count == 0 {
		return nil, errors.New("render: empty sprite sheet")
	}
	b := d.Bounds()
	if b.Empty() {
		return nil, errors.New("render: display has no area")
	}
	e := &Engine{
		Display:    d,
		Background: bg,
		Sheet:      sheet,
		Field:      f,
		frame:      image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy())),
		auto:       true,
	}
	if f != nil {
		f.SetRefresher(e)
	}
	return e, nil
}

// SetAutoRefresh turns presenting on or off. While off, ComposeAndPresent is
// a no-op.
func (e *Engine) SetAutoRefresh(on bool) { e.auto = on }

func (e *Engine) AutoRefresh() bool { return e.auto }

// Frame is the last composed frame. It is reused between calls.
func (e *Engine) Frame() *image.NRGBA { return e.frame }

// Compose builds the frame without presenting it.
func (e *Engine) Compose() {
	start := time.Now()
	r := e.frame.Rect
	if e.Background != nil {
		draw.Draw(e.frame, r, e.Background, e.Background.Bounds().Min, draw.Src)
	} else {
		draw.Draw(e.frame, r, image.Black, image.Point{}, draw.Src)
	}

	if e.Field != nil {
		tw, th := e.Sheet.TileW, e.Sheet.TileH
		for _, fl := range e.Field.Flakes() {
			dst := image.Rect(fl.X, fl.Row, fl.X+tw, fl.Row+th)
			src := e.Sheet.Tile(fl.Sprite)
			draw.Draw(e.frame, dst, e.Sheet.Image, src.Min, draw.Over)
		}
		bm := e.Field.Terrain().Bitmap()
		draw.Draw(e.frame, bm.Rect, bm, bm.Rect.Min, draw.Over)
	}
	e.Last.ComposeMS = float64(time.Since(start).Microseconds()) / 1000.0
}

// ComposeAndPresent renders one frame to the display.
func (e *Engine) ComposeAndPresent() error {
	if !e.auto {
		return nil
	}
	start := time.Now()
	e.Compose()

	presentStart := time.Now()
	if err := e.Display.Draw(e.Display.Bounds(), e.frame, image.Point{}); err != nil {
		return err
	}
	e.Last.PresentMS = float64(time.Since(presentStart).Microseconds()) / 1000.0
	e.Last.TotalMS = float64(time.Since(start).Microseconds()) / 1000.0
	e.Frames++
	return nil
}
