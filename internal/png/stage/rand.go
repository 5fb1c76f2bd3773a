package stage

import (
	"image"
	"math"
	"math/rand/v2"
)

// Rand is the only source of randomness the stages use, so tests can
// substitute a seeded or scripted generator.
type Rand interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
}

// NewRand returns a PCG generator; seed 0 picks a random seed.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func randOrDefault(rng Rand) Rand {
	if rng == nil {
		return NewRand(0)
	}
	return rng
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clamp8(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// blendOver composites a non-premultiplied colour with alpha a over the
// NRGBA pixel px in place.
func blendOver(px []uint8, r, g, b, a float64) {
	if a <= 0 {
		return
	}
	da := float64(px[3]) / 255
	oa := a + da*(1-a)
	if oa <= 0 {
		px[0], px[1], px[2], px[3] = 0, 0, 0, 0
		return
	}
	keep := da * (1 - a)
	px[0] = clamp8((r*a + float64(px[0])*keep) / oa)
	px[1] = clamp8((g*a + float64(px[1])*keep) / oa)
	px[2] = clamp8((b*a + float64(px[2])*keep) / oa)
	px[3] = clamp8(oa * 255)
}

// row returns the pixel bytes of row y of a zero-origin img.
func row(img *image.NRGBA, y int) []uint8 {
	start := y * img.Stride
	return img.Pix[start : start+4*img.Rect.Dx()]
}
