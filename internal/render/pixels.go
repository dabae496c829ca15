package render

import (
	"image/color"

	"github.com/hsluv/hsluv-go"
)

// Ramp returns n colours stepping lightness from lightFrom to
// lightTo at a fixed HSLuv hue and saturation. Lightness and saturation are
// in [0, 100], hue in degrees.
func Ramp(n int, hue, sat, lightFrom, lightTo float64) []color.RGBA {
	out := make([]color.RGBA, n)
	for i := range out {
		l := lightFrom
		if n > 1 {
			l += (lightTo - lightFrom) * float64(i) / float64(n-1)
		}
		r, g, b := hsluv.HsluvToRGB(hue, sat, l)
		out[i] = color.RGBA{R: channel(r), G: channel(g), B: channel(b), A: 0xff}
	}
	return out
}

func channel(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 0xff
	}
	return uint8(v*0xff + 0.5)
}

// fillPaletteRGBA converts cell values into RGBA pixels using a palette. When
// the palette is empty the buffer is cleared to transparent black.
func fillPaletteRGBA(buf []byte, cells []uint8, palette []color.RGBA) {
	if len(palette) == 0 {
		for i := range buf {
			buf[i] = 0
		}
		return
	}

	last := len(palette) - 1
	for i, c := range cells {
		idx := int(c)
		if idx > last {
			idx = last
		}
		base := i * 4
		col := palette[idx]
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}
