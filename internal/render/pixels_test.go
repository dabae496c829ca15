package render

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRamp(t *testing.T) {
	r := Ramp(5, 250, 90, 80, 20)
	require.Len(t, r, 5)
	lum := func(c color.RGBA) int { return int(c.R) + int(c.G) + int(c.B) }
	for i := 1; i < len(r); i++ {
		assert.Less(t, lum(r[i]), lum(r[i-1]), "entry %d", i)
		assert.Equal(t, uint8(0xff), r[i].A)
	}
	assert.Greater(t, r[0].B, r[0].R)

	one := Ramp(1, 0, 0, 100, 0)
	assert.Equal(t, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, one[0])
	assert.Empty(t, Ramp(0, 0, 0, 0, 0))
}

func TestFillPaletteRGBA(t *testing.T) {
	palette := []color.RGBA{{R: 1, A: 255}, {G: 2, A: 255}}
	buf := make([]byte, 12)
	fillPaletteRGBA(buf, []uint8{0, 1, 9}, palette)
	assert.Equal(t, []byte{1, 0, 0, 255, 0, 2, 0, 255, 0, 2, 0, 255}, buf)

	fillPaletteRGBA(buf, []uint8{0, 1, 9}, nil)
	assert.Equal(t, make([]byte, 12), buf)
}
