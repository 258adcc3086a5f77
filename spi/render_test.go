package spi

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/spi/spitest"
)

func TestNewLedDrawerBlanksOnOpen(t *testing.T) {
	buf := bytes.Buffer{}
	d, err := NewLedDrawer(spitest.NewRecordRaw(&buf), 10)
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 10, 1), d.Bounds())
	assert.NotZero(t, buf.Len(), "halt writes a blank frame")
}

func TestNewLedDrawerDraws(t *testing.T) {
	buf := bytes.Buffer{}
	d, err := NewLedDrawer(spitest.NewRecordRaw(&buf), 3)
	require.NoError(t, err)
	blank := buf.Len()

	im := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	for x := 0; x < 3; x++ {
		im.SetNRGBA(x, 0, color.NRGBA{R: 255, A: 255})
	}
	require.NoError(t, d.Draw(d.Bounds(), im, image.Point{}))
	assert.Greater(t, buf.Len(), blank)
}

func TestLedOutputString(t *testing.T) {
	assert.Equal(t, "spi", (&LedOutput{Spi: true}).String())
	assert.Equal(t, "console", (&LedOutput{}).String())
}
