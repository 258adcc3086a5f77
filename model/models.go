package model

import (
	"bytes"
	"image"

	"periph.io/x/conn/v3/display"
)

type serializable interface {
	Index() uint8
	Serialize() []byte
}

type Led struct {
	index  uint8
	Color  ColorVal
	parent *Ring
}

func NewLed(p *Ring, i uint8) Led {
	v := Led{
		index:  i,
		parent: p,
		Color:  NewColor(0),
	}

	return v
}

func (l *Led) Index() uint8 {
	return l.index
}

func (l *Led) SetColor(cv ColorVal) {
	l.Color = cv
}

func (l *Led) Serialize() []byte {
	return l.Color.Serialize()
}

// Ring is the addressable LED ring around the globe base. Colours are staged
// on the LEDs and pushed to the drawer by Show; Brightness is applied only at
// output time so staged colours survive a pulse.
type Ring struct {
	leds       []*Led
	brightness float64
	drawer     display.Drawer
}

func NewRing(size uint8, d display.Drawer) *Ring {
	v := Ring{
		leds:       make([]*Led, 0, size),
		brightness: 1,
		drawer:     d,
	}

	for i := 0; i < int(size); i++ {
		l := NewLed(&v, uint8(i))
		v.leds = append(v.leds, &l)
	}

	return &v
}

func (r *Ring) Len() int {
	return len(r.leds)
}

func (r *Ring) Leds() []*Led {
	return r.leds
}

// Set stages a colour at index i; i wraps around the ring in both directions.
func (r *Ring) Set(i int, cv ColorVal) {
	n := len(r.leds)
	if n == 0 {
		return
	}
	r.leds[((i%n)+n)%n].SetColor(cv)
}

func (r *Ring) At(i int) ColorVal {
	n := len(r.leds)
	return r.leds[((i%n)+n)%n].Color
}

func (r *Ring) Fill(cv ColorVal) {
	for _, v := range r.leds {
		v.SetColor(cv)
	}
}

// FillWith stages f(i) at every position.
func (r *Ring) FillWith(f func(i int) ColorVal) {
	for i, v := range r.leds {
		v.SetColor(f(i))
	}
}

func (r *Ring) Clear() {
	r.Fill(NewColor(0))
}

func (r *Ring) Brightness() float64 {
	return r.brightness
}

func (r *Ring) SetBrightness(b float64) {
	if b > 1.0 {
		b = 1.0
	}
	if b < 0.0 {
		b = 0.0
	}
	r.brightness = b
}

// Lit counts LEDs with a non-black staged colour.
func (r *Ring) Lit() int {
	n := 0
	for _, v := range r.leds {
		if !v.Color.IsBlack() {
			n++
		}
	}
	return n
}

func (r *Ring) Image() *image.NRGBA {
	im := image.NewNRGBA(image.Rect(0, 0, len(r.leds), 1))
	for x := 0; x < im.Rect.Max.X; x++ {
		im.SetNRGBA(x, 0, r.leds[x].Color.ToRGB(r.brightness))
	}
	return im
}

func (r *Ring) Serialize() []byte {
	buf := new(bytes.Buffer)
	for _, v := range r.leds {
		buf.Write(v.Serialize())
	}

	return buf.Bytes()
}

// Show pushes the staged colours to the output device.
func (r *Ring) Show() error {
	if r.drawer == nil {
		return nil
	}
	return r.drawer.Draw(r.drawer.Bounds(), r.Image(), image.Point{})
}

// Halt blanks the ring and releases the output.
func (r *Ring) Halt() error {
	r.Clear()
	if r.drawer == nil {
		return nil
	}
	if err := r.Show(); err != nil {
		return err
	}
	return r.drawer.Halt()
}

var _ serializable = (*Led)(nil)
