package model_test

import (
	"bytes"
	"fmt"
	"image/color"
	"strconv"
	"testing"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spitest"
	"periph.io/x/devices/v3/nrzled"

	. "github.com/coreman2200/funtimes-snowglobe/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var TestRGBIsExpectedColor = []struct {
	R      uint8
	G      uint8
	B      uint8
	Expect uint32
}{
	{0x11, 0x22, 0x33, 0x112233},
	{0x2A, 0x44, 0x34, 0x2A4434},
	{0x3B, 0x88, 0x35, 0x3B8835},
	{0x00, 0xFF, 0x00, 0x00FF00},
	{0xFF, 0x00, 0x00, 0xFF0000},
}

var TestComplementIsMasked = []struct {
	Given  uint32
	Expect uint32
}{
	{0xFF0000, 0x00FFFF},
	{0x00FF00, 0xFF00FF},
	{0x000000, 0xFFFFFF},
	{0x123456, 0xEDCBA9},
	{0xFF123456, 0xEDCBA9},
}

func EntryBitRepresentation(c ColorVal) {
	fmt.Println("Color:" + strconv.FormatInt(int64(c.Color()), 2) + "(0x" + strconv.FormatInt(int64(c.Color()), 16) + ")")
	fmt.Println("Red:" + strconv.FormatInt(int64(c.GetR()), 2) + "(0x" + strconv.FormatInt(int64(c.GetR()), 16) + ")")
	fmt.Println("Green:" + strconv.FormatInt(int64(c.GetG()), 2) + "(0x" + strconv.FormatInt(int64(c.GetG()), 16) + ")")
	fmt.Println("Blue:" + strconv.FormatInt(int64(c.GetB()), 2) + "(0x" + strconv.FormatInt(int64(c.GetB()), 16) + ")")
}

func TestColorsRGB(t *testing.T) {
	for k, v := range TestRGBIsExpectedColor {
		t.Run("Given RGB"+strconv.FormatUint(uint64(k), 10), func(t *testing.T) {
			col := NewRGB(v.R, v.G, v.B)
			EntryBitRepresentation(col)
			assert.Equal(t, v.Expect, col.Color(), "should be same val")
			assert.Equal(t, []byte{v.R, v.G, v.B}, col.Serialize())
		},
		)
	}
}

func TestColorsComplement(t *testing.T) {
	for k, v := range TestComplementIsMasked {
		t.Run("Given "+strconv.FormatUint(uint64(k), 10), func(t *testing.T) {
			col := NewColor(v.Given)
			assert.Equal(t, v.Expect, col.Complement().Color())
			assert.LessOrEqual(t, col.Complement().Color(), RGB_MASK)
		})
	}
}

func TestPickColor(t *testing.T) {
	for _, c := range []uint32{0xFF0000, 0x00FF00, 0x123456, 0x000000, 0xFFFFFF} {
		col := NewColor(c)
		for i := 0; i < 10; i++ {
			got := PickColor(col, i)
			if i%2 == 0 {
				assert.Equal(t, c, got.Color())
			} else {
				assert.Equal(t, ^c&0xFFFFFF, got.Color())
			}
			assert.Equal(t, got, PickColor(col, i), "same index, same colour")
		}
	}
}

func TestToRGBBrightness(t *testing.T) {
	col := NewColor(0xFF8000)
	assert.Equal(t, color.NRGBA{R: 0xFF, G: 0x80, B: 0, A: 255}, col.ToRGB(1))
	assert.Equal(t, color.NRGBA{A: 255}, col.ToRGB(0))
	assert.Equal(t, col.ToRGB(1), col.ToRGB(3), "clamped above 1")
	half := col.ToRGB(0.5)
	assert.InDelta(t, 127, int(half.R), 1)
}

func TestRingSetWrapsAndFills(t *testing.T) {
	r := NewRing(10, nil)
	require.Equal(t, 10, r.Len())
	assert.Equal(t, 0, r.Lit())

	r.Set(-1, NewColor(0x0000FF))
	assert.Equal(t, uint32(0x0000FF), r.At(9).Color())
	assert.Equal(t, 1, r.Lit())

	r.Fill(NewColor(0x00FF00))
	assert.Equal(t, 10, r.Lit())

	r.Clear()
	assert.Equal(t, 0, r.Lit())

	r.SetBrightness(1.5)
	assert.Equal(t, 1.0, r.Brightness())
	r.SetBrightness(-1)
	assert.Equal(t, 0.0, r.Brightness())
}

func TestRingImageAppliesBrightness(t *testing.T) {
	r := NewRing(4, nil)
	r.FillWith(func(i int) ColorVal { return PickColor(NewColor(0xFF0000), i) })
	im := r.Image()
	require.Equal(t, 4, im.Bounds().Dx())
	assert.Equal(t, color.NRGBA{R: 0xFF, A: 255}, im.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{G: 0xFF, B: 0xFF, A: 255}, im.NRGBAAt(1, 0))

	r.SetBrightness(0)
	im = r.Image()
	assert.Equal(t, color.NRGBA{A: 255}, im.NRGBAAt(0, 0))
	// staged colours survive a dimmed frame
	assert.Equal(t, uint32(0xFF0000), r.At(0).Color())
}

func TestSPI_Empty(t *testing.T) {
	buf := bytes.Buffer{}
	o := nrzled.Opts{NumPixels: 0, Channels: 3, Freq: 2500 * physic.KiloHertz}
	d, err := nrzled.NewSPI(spitest.NewRecordRaw(&buf), &o)
	if err != nil {
		t.Fatal(err)
	}
	if got, expected := d.String(), "nrzled{recordraw}"; got != expected {
		t.Fatalf("\nGot:  %s\nWant: %s\n", got, expected)
	}

	if n, err := d.Write([]byte{}); n != 0 || err != nil {
		t.Fatalf("%d %v", n, err)
	}
}

func TestRingShowThroughNrzled(t *testing.T) {
	buf := bytes.Buffer{}
	o := nrzled.Opts{NumPixels: 10, Channels: 3, Freq: 2500 * physic.KiloHertz}
	d, err := nrzled.NewSPI(spitest.NewRecordRaw(&buf), &o)
	require.NoError(t, err)

	r := NewRing(10, d)
	r.Fill(NewColor(0x00FF00))
	require.NoError(t, r.Show())
	assert.NotZero(t, buf.Len(), "a frame should reach the SPI port")

	written := buf.Len()
	require.NoError(t, r.Halt())
	assert.Greater(t, buf.Len(), written, "halt blanks the ring")
	assert.Equal(t, 0, r.Lit())
}
