package winter

import (
	"fmt"
	"image"

	"github.com/rm-hull/winter-studio/internal/png"
	"github.com/rm-hull/winter-studio/internal/png/stage"
)

// EffectPipeline runs the winter stages in their fixed order. It holds no
// per-run state besides the random source, so one pipeline may serve many
// runs as long as Rand is not shared between goroutines.
type EffectPipeline struct {
	Rand stage.Rand
}

func NewEffectPipeline(rng stage.Rand) *EffectPipeline {
	if rng == nil {
		rng = stage.NewRand(0)
	}
	return &EffectPipeline{Rand: rng}
}

// Stages lists the stages for params in execution order.
func (e *EffectPipeline) Stages(params ParameterSet) []png.PipelineStage {
	params = params.Clamp()
	return []png.PipelineStage{
		&stage.PreFilterStage{Brightness: params.Brightness, Contrast: params.Contrast},
		&stage.SnowCoverStage{Coverage: params.Coverage(), Rand: e.Rand},
		&stage.SnowflakeStage{Density: params.SnowflakeDensity, Rand: e.Rand},
		&stage.GradientWashStage{},
	}
}

// Run copies src into a fresh buffer and applies every stage to it. src is
// only read, so repeated runs never compound.
func (e *EffectPipeline) Run(src image.Image, params ParameterSet) (*png.PixelBuffer, error) {
	buf, err := png.NewPixelBuffer(src)
	if err != nil {
		return nil, err
	}

	if err := buf.Pipeline(e.Stages(params)...); err != nil {
		return nil, fmt.Errorf("failed to process winter pipeline: %w", err)
	}
	return buf, nil
}
