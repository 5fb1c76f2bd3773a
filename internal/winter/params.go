package winter

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

const (
	MinSnowCover  = 0
	MaxSnowCover  = 100
	MinSnowflakes = 0
	MaxSnowflakes = 100
	MinBrightness = 50
	MaxBrightness = 150
	MinContrast   = 50
	MaxContrast   = 150
)

// ParameterSet holds the four slider values that drive the effect.
type ParameterSet struct {
	SnowCover        float64 `json:"snowCover" form:"snowCover" validate:"gte=0,lte=100"`
	SnowflakeDensity float64 `json:"snowflakes" form:"snowflakes" validate:"gte=0,lte=100"`
	Brightness       float64 `json:"brightness" form:"brightness" validate:"gte=50,lte=150"`
	Contrast         float64 `json:"contrast" form:"contrast" validate:"gte=50,lte=150"`
}

var validate = validator.New()

// DefaultParameters are the values the editor opens with.
func DefaultParameters() ParameterSet {
	return ParameterSet{
		SnowCover:        70,
		SnowflakeDensity: 80,
		Brightness:       100,
		Contrast:         100,
	}
}

// Validate rejects out-of-range values; use it at input boundaries.
func (p ParameterSet) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}

// Clamp forces every value into range. NaN falls back to the default.
func (p ParameterSet) Clamp() ParameterSet {
	d := DefaultParameters()
	return ParameterSet{
		SnowCover:        clampOr(p.SnowCover, MinSnowCover, MaxSnowCover, d.SnowCover),
		SnowflakeDensity: clampOr(p.SnowflakeDensity, MinSnowflakes, MaxSnowflakes, d.SnowflakeDensity),
		Brightness:       clampOr(p.Brightness, MinBrightness, MaxBrightness, d.Brightness),
		Contrast:         clampOr(p.Contrast, MinContrast, MaxContrast, d.Contrast),
	}
}

// Coverage is SnowCover normalised to [0,1].
func (p ParameterSet) Coverage() float64 {
	return p.SnowCover / 100
}

func clampOr(v, lo, hi, fallback float64) float64 {
	if math.IsNaN(v) {
		return fallback
	}
	return math.Max(lo, math.Min(hi, v))
}
