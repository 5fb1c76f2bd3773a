package stage

import (
	"github.com/anthonynsimon/bild/parallel"
	"github.com/rm-hull/winter-studio/internal/png"
)

type PreFilterStage struct {
	Brightness float64 // percent, 100 is identity
	Contrast   float64 // percent, 100 is identity
}

// Process scales every colour channel by Brightness/100, then stretches it
// around the mid-point 128 by Contrast/100. Alpha is left alone.
func (s *PreFilterStage) Process(p *png.PixelBuffer) error {
	if err := p.Validate(); err != nil {
		return err
	}

	brightness := max(s.Brightness, 0) / 100
	contrast := max(s.Contrast, 0) / 100

	var lut [256]uint8
	for i := range lut {
		v := clamp(float64(i)*brightness, 0, 255)
		lut[i] = clamp8((v-128)*contrast + 128)
	}

	parallel.Line(p.Height(), func(start, end int) {
		for y := start; y < end; y++ {
			px := row(p.Img, y)
			for i := 0; i < len(px); i += 4 {
				px[i] = lut[px[i]]
				px[i+1] = lut[px[i+1]]
				px[i+2] = lut[px[i+2]]
			}
		}
	})
	return nil
}
