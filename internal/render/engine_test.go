package render

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/coreman2200/funtimes-snowglobe/internal/driver/fake"
	"github.com/coreman2200/funtimes-snowglobe/internal/flakes"
	"github.com/coreman2200/funtimes-snowglobe/internal/terrain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

var (
	red   = color.NRGBA{R: 255, A: 255}
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

func newScene(t *testing.T) (*Engine, *fake.Driver, *flakes.Field) {
	t.Helper()
	drv := fake.New(10, 10)
	tr := terrain.New(10, 10, white)
	f := flakes.New(flakes.Config{Count: 1, Sprites: 4, Spread: 1, Slope: 2}, tr, rand.New(rand.NewPCG(1, 2)))
	e, err := NewEngine(drv, LoadBackground("", red, 10, 10), BuiltinSheet(), f)
	require.NoError(t, err)
	return e, drv, f
}

func TestComposeLayers(t *testing.T) {
	e, drv, f := newScene(t)
	fl := &f.Flakes()[0]
	fl.Sprite, fl.X, fl.Row = 0, 2, 3
	f.Terrain().Deposit(5, 1, 2)

	require.NoError(t, e.ComposeAndPresent())
	require.Equal(t, 1, drv.Count)
	frame := drv.Last()

	assert.Equal(t, red, frame.NRGBAAt(0, 0), "background")
	assert.Equal(t, white, frame.NRGBAAt(3, 3), "flake pixel")
	assert.Equal(t, red, frame.NRGBAAt(2, 3), "flake transparency shows background")
	assert.Equal(t, white, frame.NRGBAAt(4, 9), "settled snow")
	assert.Equal(t, red, frame.NRGBAAt(4, 8), "terrain transparency shows background")
	assert.Equal(t, 1, e.Frames)
}

func TestFlakeAboveDisplayIsClipped(t *testing.T) {
	e, drv, f := newScene(t)
	fl := &f.Flakes()[0]
	fl.Sprite, fl.X, fl.Row = 0, 0, -1
	require.NoError(t, e.ComposeAndPresent())
	// row 1 of sprite 0 is solid
	for x := 0; x < 4; x++ {
		assert.Equal(t, white, drv.Last().NRGBAAt(x, 0))
	}
}

func TestAutoRefreshSuspends(t *testing.T) {
	e, drv, f := newScene(t)
	e.SetAutoRefresh(false)
	require.NoError(t, e.ComposeAndPresent())
	assert.Zero(t, drv.Count)

	e.SetAutoRefresh(true)
	f.Reset()
	assert.True(t, e.AutoRefresh(), "the field resumes refresh after a reset")
	require.NoError(t, e.ComposeAndPresent())
	assert.Equal(t, 1, drv.Count)
}

func TestPresentError(t *testing.T) {
	e, drv, _ := newScene(t)
	drv.Err = errors.New("i2c nack")
	assert.Error(t, e.ComposeAndPresent())
	assert.Zero(t, e.Frames)
}

func TestNewEngineRejectsBadInput(t *testing.T) {
	_, err := NewEngine(nil, nil, BuiltinSheet(), nil)
	assert.Error(t, err)
	_, err = NewEngine(fake.New(0, 0), nil, BuiltinSheet(), nil)
	assert.Error(t, err)
	_, err = NewEngine(fake.New(4, 4), nil, &Sheet{}, nil)
	assert.Error(t, err)
}

func TestLoadBackgroundFallback(t *testing.T) {
	bg := LoadBackground(filepath.Join(t.TempDir(), "missing.bmp"), red, 6, 4)
	assert.Equal(t, image.Rect(0, 0, 6, 4), bg.Bounds())
	r, g, b, _ := bg.At(5, 3).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0, 0}, [3]uint32{r, g, b})
}

func TestLoadBackgroundBMP(t *testing.T) {
	im := image.NewNRGBA(image.Rect(0, 0, 3, 3))
	for i := 3; i < len(im.Pix); i += 4 {
		im.Pix[i] = 255
	}
	im.SetNRGBA(1, 1, color.NRGBA{B: 255, A: 255})
	path := filepath.Join(t.TempDir(), "bg.bmp")
	w, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, bmp.Encode(w, im))
	require.NoError(t, w.Close())

	bg := LoadBackground(path, red, 10, 10)
	assert.Equal(t, image.Rect(0, 0, 3, 3), bg.Bounds())
	_, _, b, _ := bg.At(1, 1).RGBA()
	assert.Equal(t, uint32(0xffff), b)
}

func TestLoadSheetKeysTransparency(t *testing.T) {
	im := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	for x := 0; x < 8; x++ {
		for y := 0; y < 4; y++ {
			im.SetNRGBA(x, y, color.NRGBA{A: 255})
		}
	}
	im.SetNRGBA(5, 2, white)
	path := filepath.Join(t.TempDir(), "sheet.png")
	w, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(w, im))
	require.NoError(t, w.Close())

	s := LoadSheet(path, 4, 4, color.Black)
	require.Equal(t, 2, s.Count)
	assert.Equal(t, image.Rect(4, 0, 8, 4), s.Tile(1))
	assert.Equal(t, s.Tile(0), s.Tile(2), "indices wrap")
	assert.Equal(t, uint8(0), s.Image.NRGBAAt(0, 0).A)
	assert.Equal(t, white, s.Image.NRGBAAt(5, 2))
}

func TestLoadSheetFallsBackToBuiltin(t *testing.T) {
	s := LoadSheet(filepath.Join(t.TempDir(), "nope.bmp"), 4, 4, color.Black)
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 4, s.TileW)

	_, err := NewSheet(image.NewNRGBA(image.Rect(0, 0, 2, 2)), 4, 4, color.Black)
	assert.Error(t, err)
}
