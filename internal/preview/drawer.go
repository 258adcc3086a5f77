package preview

import (
	"image"
	"image/color"
	"image/draw"
	"sync"
)

// Drawer is a display.Drawer with no hardware behind it. It keeps the last
// image and reports every Draw to OnDraw.
type Drawer struct {
	mu     sync.Mutex
	name   string
	img    *image.NRGBA
	onDraw func(name string, img *image.NRGBA)
}

func NewDrawer(name string, w, h int) *Drawer {
	return &Drawer{name: name, img: image.NewNRGBA(image.Rect(0, 0, w, h))}
}

func (d *Drawer) String() string { return "preview:" + d.name }

func (d *Drawer) Halt() error { return nil }

func (d *Drawer) ColorModel() color.Model { return color.NRGBAModel }

func (d *Drawer) Bounds() image.Rectangle { return d.img.Rect }

func (d *Drawer) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	d.mu.Lock()
	draw.Draw(d.img, r.Intersect(d.img.Rect), src, sp, draw.Src)
	cb := d.onDraw
	var cp *image.NRGBA
	if cb != nil {
		cp = d.image()
	}
	d.mu.Unlock()
	if cb != nil {
		cb(d.name, cp)
	}
	return nil
}

// Image is a copy of the last drawn image.
func (d *Drawer) Image() *image.NRGBA {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.image()
}

func (d *Drawer) image() *image.NRGBA {
	cp := image.NewNRGBA(d.img.Rect)
	copy(cp.Pix, d.img.Pix)
	return cp
}

func (d *Drawer) setOnDraw(f func(name string, img *image.NRGBA)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onDraw = f
}
