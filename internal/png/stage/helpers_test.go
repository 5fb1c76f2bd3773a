package stage

import (
	"image"
	"image/color"

	"github.com/rm-hull/winter-studio/internal/png"
)

// scriptedRand replays a fixed sequence of rolls, cycling when exhausted.
type scriptedRand struct {
	rolls []float64
	n     int
}

func (s *scriptedRand) Float64() float64 {
	v := s.rolls[s.n%len(s.rolls)]
	s.n++
	return v
}

func solidBuffer(w, h int, c color.NRGBA) *png.PixelBuffer {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return &png.PixelBuffer{Img: img, Bounds: img.Bounds()}
}

func pixel(p *png.PixelBuffer, x, y int) color.NRGBA {
	return p.Img.NRGBAAt(p.Bounds.Min.X+x, p.Bounds.Min.Y+y)
}

func clonePix(p *png.PixelBuffer) []uint8 {
	return append([]uint8(nil), p.Img.Pix...)
}
