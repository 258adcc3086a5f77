package model

import (
	"image/color"
)

const MAX_BRIGHTNESS uint8 = 255

const (
	RED_OFFSET   uint8 = 0x10
	GREEN_OFFSET uint8 = 0x08
	BLUE_OFFSET  uint8 = 0x0
)

const RGB_MASK uint32 = 0xFFFFFF

// ColorVal is a 24-bit 0xRRGGBB colour as the companion app and the
// configuration express it.
type ColorVal struct {
	val uint32
}

func NewColor(c uint32) ColorVal {
	v := ColorVal{
		val: c & RGB_MASK,
	}
	return v
}

// NewRGB packs three channel bytes the way a colour packet carries them.
func NewRGB(r, g, b uint8) ColorVal {
	c := NewColor(0)
	c.SetR(r)
	c.SetG(g)
	c.SetB(b)
	return c
}

func (c ColorVal) Color() uint32 {
	return c.val
}

// Complement is the bitwise inverse, masked back to 24 bits.
func (c ColorVal) Complement() ColorVal {
	return NewColor(^c.val)
}

func (c ColorVal) IsBlack() bool {
	return c.val == 0
}

func (c ColorVal) ToRGBA() color.RGBA {
	return color.RGBA{c.GetR(), c.GetG(), c.GetB(), 255}
}

// ToRGB scales the channels by a global brightness in [0,1].
func (c ColorVal) ToRGB(brightness float64) color.NRGBA {
	if brightness < 0 {
		brightness = 0
	}
	if brightness > 1 {
		brightness = 1
	}
	aa := brightness * float64(MAX_BRIGHTNESS) / 255.0
	rr := float64(c.GetR()) * aa
	gg := float64(c.GetG()) * aa
	bb := float64(c.GetB()) * aa

	col := color.NRGBA{
		R: uint8(rr),
		G: uint8(gg),
		B: uint8(bb),
		A: 255,
	}

	return col
}

func FromColor(c color.Color) ColorVal {
	r, g, b, _ := c.RGBA()
	return NewRGB(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

func setcolor(c uint32, n uint8, off uint8) uint32 {
	var val uint32 = uint32(n) << off
	var mask uint32 = 0xFF << off
	return (c & (^mask)) | val
}

func getcolor(c uint32, off uint8) uint8 {
	var mask uint32 = 0xFF << off
	return uint8((c & (mask)) >> off)
}

func (c *ColorVal) SetR(r uint8) {
	c.val = setcolor(c.val, r, RED_OFFSET)
}
func (c *ColorVal) SetG(g uint8) {
	c.val = setcolor(c.val, g, GREEN_OFFSET)

}
func (c *ColorVal) SetB(b uint8) {
	c.val = setcolor(c.val, b, BLUE_OFFSET)
}

func (c ColorVal) GetR() uint8 {
	return getcolor(c.val, RED_OFFSET)
}
func (c ColorVal) GetG() uint8 {
	return getcolor(c.val, GREEN_OFFSET)

}
func (c ColorVal) GetB() uint8 {
	return getcolor(c.val, BLUE_OFFSET)
}

func (c ColorVal) Serialize() []byte {
	return []byte{c.GetR(), c.GetG(), c.GetB()}
}

// PickColor alternates the primary colour with its complement around the
// ring: even positions get c, odd positions get ^c.
func PickColor(c ColorVal, i int) ColorVal {
	if i%2 == 0 {
		return c
	}
	return c.Complement()
}
