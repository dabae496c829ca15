package flood

import (
	"github.com/chewxy/math32"
	"github.com/ojrac/opensimplex-go"

	"flood-ca/pkg/core"
)

// octave is one layer of the noise sum.
type octave struct {
	scale, amplitude float64
}

var octaves = []octave{
	{1.0 / 48, 1},
	{1.0 / 16, 0.35},
	{1.0 / 6, 0.1},
}

// terrain builds a valley draining towards the bottom rows inside an
// elliptical catchment, row-major from the top row. The valley axis shifts a
// little with the seed. Cells outside the catchment hold noData.
func terrain(w, h int, seed int64, relief, noData float32) []float32 {
	rng := core.NewRNG(seed)
	noises := make([]opensimplex.Noise, len(octaves))
	for i := range noises {
		noises[i] = opensimplex.New(rng.Seed())
	}
	axis := 0.5 + rng.Float32Range(-0.08, 0.08)

	out := make([]float32, w*h)
	for y := 0; y < h; y++ {
		fy := (float32(y) + 0.5) / float32(h)
		for x := 0; x < w; x++ {
			fx := (float32(x) + 0.5) / float32(w)
			ex, ey := (fx-0.5)/0.47, (fy-0.5)/0.47
			if ex*ex+ey*ey > 1 {
				out[y*w+x] = noData
				continue
			}
			var n float64
			for i, o := range octaves {
				n += o.amplitude * noises[i].Eval2(float64(x)*o.scale, float64(y)*o.scale)
			}
			across := math32.Abs(fx-axis) * 2
			v := 0.5*(1-fy) + 0.35*across*across + 0.1*float32(n)
			out[y*w+x] = relief * math32.Max(v, 0)
		}
	}
	return out
}
