package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/png"
	"os"

	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/bmp"
)

// Sheet is a grid of equally sized sprite tiles. The transparency key has
// already been turned into alpha.
type Sheet struct {
	Image *image.NRGBA
	TileW int
	TileH int
	Count int
}

// Tile is the source rectangle of sprite i, counted row-major. Indices past
// the end wrap.
func (s *Sheet) Tile(i int) image.Rectangle {
	cols := s.Image.Rect.Dx() / s.TileW
	i = ((i % s.Count) + s.Count) % s.Count
	x := (i % cols) * s.TileW
	y := (i / cols) * s.TileH
	return image.Rect(x, y, x+s.TileW, y+s.TileH).Add(s.Image.Rect.Min)
}

func decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	im, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return im, nil
}

// LoadBackground reads a BMP or PNG background. Any failure is logged and a
// solid w x h image in the fallback colour is returned instead.
func LoadBackground(path string, fallback color.Color, w, h int) image.Image {
	if path != "" {
		im, err := decode(path)
		if err == nil {
			return im
		}
		log.Warn().Err(err).Str("path", path).Msg("background unavailable, using solid colour")
	}
	bg := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(bg, bg.Rect, image.NewUniform(fallback), image.Point{}, draw.Src)
	return bg
}

// LoadSheet reads a sprite sheet cut into tileW x tileH tiles. Pixels equal
// to the transparent colour become fully transparent. When the file cannot
// be used the built-in flake sheet is returned.
func LoadSheet(path string, tileW, tileH int, transparent color.Color) *Sheet {
	if path != "" {
		im, err := decode(path)
		if err == nil {
			s, err := NewSheet(im, tileW, tileH, transparent)
			if err == nil {
				return s
			}
			log.Warn().Err(err).Str("path", path).Msg("sprite sheet unusable, using built-in flakes")
		} else {
			log.Warn().Err(err).Str("path", path).Msg("sprite sheet unavailable, using built-in flakes")
		}
	}
	return BuiltinSheet()
}

// NewSheet keys out the transparent colour of im and slices it into tiles.
func NewSheet(im image.Image, tileW, tileH int, transparent color.Color) (*Sheet, error) {
	if tileW < 1 || tileH < 1 {
		return nil, fmt.Errorf("tile size %dx%d", tileW, tileH)
	}
	b := im.Bounds()
	cols, rows := b.Dx()/tileW, b.Dy()/tileH
	if cols*rows == 0 {
		return nil, fmt.Errorf("sheet %dx%d smaller than one %dx%d tile", b.Dx(), b.Dy(), tileW, tileH)
	}
	kr, kg, kb, _ := transparent.RGBA()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := im.At(x, y)
			r, g, bb, _ := c.RGBA()
			if r == kr && g == kg && bb == kb {
				continue
			}
			out.Set(x-b.Min.X, y-b.Min.Y, c)
		}
	}
	return &Sheet{Image: out, TileW: tileW, TileH: tileH, Count: cols * rows}, nil
}

var builtinFlakes = [...]string{
	".#..",
	"####",
	"..#.",
	"....",

	"#..#",
	".##.",
	".##.",
	"#..#",

	".#..",
	"###.",
	".#..",
	"....",

	"....",
	".#..",
	"....",
	"....",
}

// BuiltinSheet is four 4x4 white flakes, largest first, laid out in a row.
func BuiltinSheet() *Sheet {
	const tile, n = 4, 4
	im := image.NewNRGBA(image.Rect(0, 0, tile*n, tile))
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	for s := 0; s < n; s++ {
		for y := 0; y < tile; y++ {
			row := builtinFlakes[s*tile+y]
			for x := 0; x < tile; x++ {
				if row[x] == '#' {
					im.SetNRGBA(s*tile+x, y, white)
				}
			}
		}
	}
	return &Sheet{Image: im, TileW: tile, TileH: tile, Count: n}
}
