package stage

import (
	"github.com/rm-hull/winter-studio/internal/png"
)

const (
	// GroundLine is the fraction of the height below which rows count as ground.
	GroundLine = 0.5
	// FrostFactor is the tint strength for ground pixels that miss the coverage roll.
	FrostFactor = 0.3
)

// SnowTint is added to R, G and B at full strength; blue gains most.
var SnowTint = [3]float64{80, 90, 100}

type SnowCoverStage struct {
	Coverage float64 // probability in [0,1] that a ground pixel gets full snow
	Rand     Rand
}

// IsGround reports whether row y (0 at the top) lies in the ground region.
func IsGround(y, height int) bool {
	return float64(y) > float64(height)*GroundLine
}

// Process tints the ground region toward a cool white. Each ground pixel
// rolls independently: below Coverage it gets the full tint, otherwise the
// FrostFactor tint, so even 0% coverage leaves a frost trace.
func (s *SnowCoverStage) Process(p *png.PixelBuffer) error {
	if err := p.Validate(); err != nil {
		return err
	}

	rng := randOrDefault(s.Rand)
	coverage := clamp(s.Coverage, 0, 1)
	height := p.Height()

	for y := 0; y < height; y++ {
		if !IsGround(y, height) {
			continue
		}
		px := row(p.Img, y)
		for i := 0; i < len(px); i += 4 {
			factor := FrostFactor
			if rng.Float64() < coverage {
				factor = 1
			}
			px[i] = clamp8(float64(px[i]) + SnowTint[0]*factor)
			px[i+1] = clamp8(float64(px[i+1]) + SnowTint[1]*factor)
			px[i+2] = clamp8(float64(px[i+2]) + SnowTint[2]*factor)
		}
	}
	return nil
}
