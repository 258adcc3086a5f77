// Package terrain tracks how much snow has settled in each display column.
//
// Heights are screen rows: a column starts at the display height (no snow)
// and counts down toward 0 (snow up to the top edge) as flakes land on it.
package terrain

import (
	"image"
	"image/color"
)

// Bitmap palette indices.
const (
	Clear uint8 = 0
	Snow  uint8 = 1
)

// Terrain is the ground line flakes fall onto plus the bitmap that paints it.
type Terrain struct {
	width     int
	maxHeight int
	depth     []int
	bitmap    *image.Paletted
}

// New builds an empty terrain of width columns, each maxHeight rows deep.
// The bitmap uses a two entry palette: transparent, then snow.
func New(width, maxHeight int, snow color.Color) *Terrain {
	if width < 1 {
		width = 1
	}
	if maxHeight < 0 {
		maxHeight = 0
	}
	pal := color.Palette{color.NRGBA{}, snow}
	t := &Terrain{
		width:     width,
		maxHeight: maxHeight,
		depth:     make([]int, width),
		bitmap:    image.NewPaletted(image.Rect(0, 0, width, maxHeight), pal),
	}
	t.Reset()
	return t
}

func (t *Terrain) Width() int     { return t.width }
func (t *Terrain) MaxHeight() int { return t.maxHeight }

// Height is the surface row at column x. Columns outside the terrain report
// the maximum height.
func (t *Terrain) Height(x int) int {
	if x < 0 || x >= t.width {
		return t.maxHeight
	}
	return t.depth[x]
}

// Heights is a read-only view of every column; callers must not modify it.
func (t *Terrain) Heights() []int {
	return t.depth
}

func (t *Terrain) Bitmap() *image.Paletted {
	return t.bitmap
}

// Reset empties every column and clears the bitmap.
func (t *Terrain) Reset() {
	for i := range t.depth {
		t.depth[i] = t.maxHeight
	}
	for i := range t.bitmap.Pix {
		t.bitmap.Pix[i] = Clear
	}
}

// Full reports whether every column is filled to the top.
func (t *Terrain) Full() bool {
	for _, d := range t.depth {
		if d != 0 {
			return false
		}
	}
	return true
}

// Deposit adds one row of snow to each column in [center-spread,
// center+spread) whose surface is no more than maxSlope-1 rows above its
// neighbours. Edge columns only compare against their single in-bounds
// neighbour. The slope checks all see the surface as it was before this call.
// It returns the number of columns that grew.
func (t *Terrain) Deposit(center, spread, maxSlope int) int {
	location := make([]int, 0, 2*spread)
	for x := center - spread; x < center+spread; x++ {
		if t.settles(x, maxSlope) {
			location = append(location, x)
		}
	}

	added := 0
	for _, x := range location {
		level := t.depth[x] - 1
		if level < 0 {
			continue
		}
		t.depth[x] = level
		t.bitmap.SetColorIndex(x, level, Snow)
		added++
	}
	return added
}

func (t *Terrain) settles(x, maxSlope int) bool {
	if x < 0 || x >= t.width {
		return false
	}
	d := t.depth[x]
	left := x > 0 && t.depth[x-1]-d >= maxSlope
	right := x < t.width-1 && t.depth[x+1]-d >= maxSlope
	return !left && !right
}
