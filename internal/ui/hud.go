//go:build ebiten

package ui

import (
	"image"
	"image/color"
	"math"
	"strconv"

	"flood-ca/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

const (
	panelPadding   = 12
	lineHeight     = 30
	infoHeight     = 15
	buttonSize     = 20
	buttonGap      = 6
	headerBaseline = 18
)

var (
	panelBG     = color.RGBA{R: 16, G: 16, B: 20, A: 255}
	textColor   = color.RGBA{R: 220, G: 220, B: 230, A: 255}
	mutedColor  = color.RGBA{R: 150, G: 150, B: 160, A: 255}
	buttonBG    = color.RGBA{R: 54, G: 56, B: 64, A: 255}
	buttonIdle  = color.RGBA{R: 32, G: 34, B: 40, A: 255}
	buttonLabel = color.RGBA{R: 230, G: 230, B: 240, A: 255}
)

// HUD renders a parameter panel to the right of the simulation view: the
// adjustable controls with -/+ buttons, then the read-only values.
type HUD struct {
	sim      core.Sim
	width    int
	panel    *ebiten.Image
	pixel    *ebiten.Image
	offsetX  int
	snapshot core.ParameterSnapshot

	controls    []controlState
	intSetter   core.IntParameterSetter
	floatSetter core.FloatParameterSetter
}

type controlState struct {
	control core.ParameterControl
	value   float64
	known   bool

	top         int
	minus, plus image.Rectangle
}

// NewHUD constructs a HUD of the given panel width. A sim without controls
// still gets its parameter listing.
func NewHUD(sim core.Sim, width int) *HUD {
	h := &HUD{sim: sim, width: max(width, 0)}
	h.pixel = ebiten.NewImage(1, 1)
	h.pixel.Fill(color.White)
	if p, ok := sim.(core.ParameterControlsProvider); ok {
		for i, c := range p.ParameterControls() {
			top := panelPadding + headerBaseline + 10 + i*lineHeight
			y := top + (lineHeight-buttonSize)/2
			plus := image.Rect(h.width-panelPadding-buttonSize, y, h.width-panelPadding, y+buttonSize)
			minus := plus.Sub(image.Pt(buttonSize+buttonGap, 0))
			h.controls = append(h.controls, controlState{control: c, top: top, minus: minus, plus: plus})
		}
	}
	h.intSetter, _ = sim.(core.IntParameterSetter)
	h.floatSetter, _ = sim.(core.FloatParameterSetter)
	return h
}

// Width returns the panel width in pixels.
func (h *HUD) Width() int { return h.width }

// Update refreshes values from the sim and applies button clicks. offsetX is
// where the panel starts on screen.
func (h *HUD) Update(offsetX int) {
	h.offsetX = offsetX
	if p, ok := h.sim.(core.ParameterProvider); ok {
		h.snapshot = p.Parameters()
	}
	for i := range h.controls {
		s := &h.controls[i]
		p, ok := h.snapshot.Lookup(s.control.Key)
		if !ok {
			s.known = false
			continue
		}
		v, err := strconv.ParseFloat(p.Value, 64)
		s.value, s.known = v, err == nil
	}
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	pt := image.Pt(mx-h.offsetX, my)
	for i := range h.controls {
		s := &h.controls[i]
		switch {
		case !s.known:
		case pt.In(s.minus):
			h.adjust(s, -1)
			return
		case pt.In(s.plus):
			h.adjust(s, 1)
			return
		}
	}
}

func (h *HUD) adjust(s *controlState, dir int) {
	target := s.control.Clamp(s.value + float64(dir)*s.control.Step)
	if math.Abs(target-s.value) < 1e-9 {
		return
	}
	var ok bool
	switch s.control.Type {
	case core.ParamTypeInt:
		if h.intSetter != nil {
			ok = h.intSetter.SetIntParameter(s.control.Key, int(math.Round(target)))
		}
	case core.ParamTypeFloat:
		if h.floatSetter != nil {
			ok = h.floatSetter.SetFloatParameter(s.control.Key, target)
		}
	}
	if ok {
		s.value = target
	}
}

// Draw paints the panel at the offset given to the last Update.
func (h *HUD) Draw(screen *ebiten.Image) {
	if h.width <= 0 {
		return
	}
	height := screen.Bounds().Dy()
	if h.panel == nil || h.panel.Bounds().Dy() != height {
		h.panel = ebiten.NewImage(h.width, height)
	}
	h.panel.Fill(panelBG)

	face := basicfont.Face7x13
	text.Draw(h.panel, h.sim.Name()+" parameters", face, panelPadding, panelPadding+headerBaseline-6, textColor)

	for i := range h.controls {
		s := &h.controls[i]
		base := s.top + lineHeight/2 + 4
		text.Draw(h.panel, s.control.Label, face, panelPadding, base, textColor)
		value := "--"
		if s.known {
			value = formatValue(s.control, s.value)
		}
		w := text.BoundString(face, value).Dx()
		text.Draw(h.panel, value, face, s.minus.Min.X-buttonGap-w, base, textColor)
		h.drawButton(s.minus, "-", s.known && s.control.Clamp(s.value-s.control.Step) != s.value)
		h.drawButton(s.plus, "+", s.known && s.control.Clamp(s.value+s.control.Step) != s.value)
	}

	y := panelPadding + headerBaseline + 10 + len(h.controls)*lineHeight + infoHeight
	for _, g := range h.snapshot.Groups {
		text.Draw(h.panel, g.Name, face, panelPadding, y, mutedColor)
		y += infoHeight
		for _, p := range g.Params {
			text.Draw(h.panel, p.Label+": "+p.Value, face, panelPadding+8, y, textColor)
			y += infoHeight
		}
		y += infoHeight / 2
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(h.offsetX), 0)
	screen.DrawImage(h.panel, op)
}

func (h *HUD) drawButton(r image.Rectangle, label string, enabled bool) {
	bg := buttonBG
	if !enabled {
		bg = buttonIdle
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(r.Dx()), float64(r.Dy()))
	op.GeoM.Translate(float64(r.Min.X), float64(r.Min.Y))
	op.ColorScale.ScaleWithColor(bg)
	h.panel.DrawImage(h.pixel, op)

	face := basicfont.Face7x13
	b := text.BoundString(face, label)
	x := r.Min.X + (r.Dx()-b.Dx())/2
	y := r.Min.Y + (r.Dy()+b.Dy())/2
	fg := buttonLabel
	if !enabled {
		fg = mutedColor
	}
	text.Draw(h.panel, label, face, x, y, fg)
}

// formatValue prints v with as many decimals as the control step needs.
func formatValue(c core.ParameterControl, v float64) string {
	if c.Type == core.ParamTypeInt {
		return strconv.Itoa(int(math.Round(v)))
	}
	prec := 1
	switch {
	case c.Step < 0.001:
		prec = 4
	case c.Step < 0.01:
		prec = 3
	case c.Step < 0.1:
		prec = 2
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}
