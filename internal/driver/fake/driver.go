// Package fake is a display.Drawer that keeps every frame in memory, useful
// for headless runs and tests.
package fake

import (
	"image"
	"image/color"
	"image/draw"
	"sync"
)

// Driver records the frames drawn to it. Frames holds one copy per Draw;
// Last is the most recent one.
type Driver struct {
	mu     sync.Mutex
	bounds image.Rectangle
	Count  int
	Frames []*image.NRGBA
	Halted bool

	// Keep bounds the number of frames retained; 0 keeps them all.
	Keep int
	// Err, when set, is returned from every Draw.
	Err error
}

func New(w, h int) *Driver {
	return &Driver{bounds: image.Rect(0, 0, w, h)}
}

func (d *Driver) String() string {
	return "fake"
}

func (d *Driver) ColorModel() color.Model {
	return color.NRGBAModel
}

func (d *Driver) Bounds() image.Rectangle {
	return d.bounds
}

func (d *Driver) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	d.Count++
	im := image.NewNRGBA(d.bounds)
	if len(d.Frames) > 0 {
		copy(im.Pix, d.Frames[len(d.Frames)-1].Pix)
	}
	draw.Draw(im, r.Intersect(d.bounds), src, sp, draw.Src)
	d.Frames = append(d.Frames, im)
	if d.Keep > 0 && len(d.Frames) > d.Keep {
		d.Frames = d.Frames[len(d.Frames)-d.Keep:]
	}
	return nil
}

func (d *Driver) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Halted = true
	return nil
}

// Last is the most recent frame, nil before the first Draw.
func (d *Driver) Last() *image.NRGBA {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.Frames) == 0 {
		return nil
	}
	return d.Frames[len(d.Frames)-1]
}

// Lit counts the non-black pixels of frame i.
func (d *Driver) Lit(i int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	f := d.Frames[i]
	for p := 0; p < len(f.Pix); p += 4 {
		if f.Pix[p] != 0 || f.Pix[p+1] != 0 || f.Pix[p+2] != 0 {
			n++
		}
	}
	return n
}

// Snapshot copies out the recorded frames.
func (d *Driver) Snapshot() []*image.NRGBA {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*image.NRGBA, len(d.Frames))
	copy(out, d.Frames)
	return out
}
