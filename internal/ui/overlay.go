//go:build ebiten

package ui

import (
	"image/color"
	"math"

	"flood-ca/internal/core"
	"flood-ca/pkg/lattice"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

type boxProvider interface {
	Boxes() lattice.BoxList
}

type gaugeProvider interface {
	GaugePoints() []lattice.Point
}

type statusProvider interface {
	Status() []string
}

// Overlay draws optional debugging visuals on top of the base simulation.
type Overlay struct {
	sim        core.Sim
	scale      int
	showBoxes  bool
	showGauges bool
	showStatus bool

	pixel *ebiten.Image
}

// NewOverlay constructs a new overlay instance.
func NewOverlay(sim core.Sim, scale int) *Overlay {
	o := &Overlay{sim: sim, scale: scale, showGauges: true, showStatus: true}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update allows the overlay to update internal state.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		o.showBoxes = !o.showBoxes
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit2) {
		o.showGauges = !o.showGauges
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit3) {
		o.showStatus = !o.showStatus
	}
}

// Draw renders the overlay onto the provided screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	scale := float64(max(o.scale, 1))

	if o.showBoxes {
		if provider, ok := o.sim.(boxProvider); ok {
			outline := color.RGBA{R: 240, G: 80, B: 60, A: 200}
			for _, b := range provider.Boxes() {
				tl, br := b.TopLeft(), b.BottomRight()
				x1, y1 := float64(tl.X-1)*scale, float64(tl.Y-1)*scale
				x2, y2 := float64(br.X)*scale, float64(br.Y)*scale
				o.drawLine(screen, x1, y1, x2, y1, 1, outline)
				o.drawLine(screen, x2, y1, x2, y2, 1, outline)
				o.drawLine(screen, x2, y2, x1, y2, 1, outline)
				o.drawLine(screen, x1, y2, x1, y1, 1, outline)
			}
		}
	}

	if o.showGauges {
		if provider, ok := o.sim.(gaugeProvider); ok {
			for _, p := range provider.GaugePoints() {
				cx := (float64(p.X) - 0.5) * scale
				cy := (float64(p.Y) - 0.5) * scale
				o.drawPoint(screen, cx, cy, math.Max(scale*2, 4), color.RGBA{R: 255, G: 220, B: 40, A: 230})
			}
		}
	}

	if o.showStatus {
		if provider, ok := o.sim.(statusProvider); ok {
			face := basicfont.Face7x13
			for i, line := range provider.Status() {
				text.Draw(screen, line, face, 8, 18+i*15, color.RGBA{R: 230, G: 230, B: 240, A: 255})
			}
		}
	}
}

func (o *Overlay) drawPoint(screen *ebiten.Image, x, y, size float64, col color.RGBA) {
	if o.pixel == nil || size <= 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(size, size)
	op.GeoM.Translate(x-size*0.5, y-size*0.5)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
}

func (o *Overlay) drawLine(screen *ebiten.Image, x1, y1, x2, y2, thickness float64, col color.RGBA) {
	if o.pixel == nil || thickness <= 0 {
		return
	}
	dx := x2 - x1
	dy := y2 - y1
	length := math.Hypot(dx, dy)
	if length <= 1e-4 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(length, thickness)
	op.GeoM.Translate(0, -thickness/2)
	op.GeoM.Rotate(math.Atan2(dy, dx))
	op.GeoM.Translate(x1, y1)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
}
