package stage

import (
	"github.com/anthonynsimon/bild/parallel"
	"github.com/rm-hull/winter-studio/internal/png"
)

// GradientStop is a non-premultiplied colour with alpha in [0,1].
type GradientStop struct {
	R, G, B, A float64
}

var (
	ColdLightTop    = GradientStop{R: 200, G: 220, B: 255, A: 0.1}
	ColdLightBottom = GradientStop{R: 180, G: 200, B: 255, A: 0}
)

// GradientWashStage blends a vertical linear gradient over the whole frame.
// A zero value uses the cold-light stops. Re-applying it tints further: it
// is a blend, not a replace.
type GradientWashStage struct {
	Top    GradientStop
	Bottom GradientStop
}

func (s *GradientWashStage) stops() (GradientStop, GradientStop) {
	if s.Top == (GradientStop{}) && s.Bottom == (GradientStop{}) {
		return ColdLightTop, ColdLightBottom
	}
	return s.Top, s.Bottom
}

// At returns the gradient colour at normalised position t in [0,1].
func (s *GradientWashStage) At(t float64) GradientStop {
	top, bottom := s.stops()
	t = clamp(t, 0, 1)
	lerp := func(a, b float64) float64 { return a + (b-a)*t }
	return GradientStop{
		R: lerp(top.R, bottom.R),
		G: lerp(top.G, bottom.G),
		B: lerp(top.B, bottom.B),
		A: lerp(top.A, bottom.A),
	}
}

// Process samples the gradient at each row's pixel centre.
func (s *GradientWashStage) Process(p *png.PixelBuffer) error {
	if err := p.Validate(); err != nil {
		return err
	}

	height := p.Height()
	parallel.Line(height, func(start, end int) {
		for y := start; y < end; y++ {
			c := s.At((float64(y) + 0.5) / float64(height))
			px := row(p.Img, y)
			for i := 0; i < len(px); i += 4 {
				blendOver(px[i:i+4], c.R, c.G, c.B, c.A)
			}
		}
	})
	return nil
}
