package winter

import (
	"image"

	"github.com/rm-hull/winter-studio/internal/png"
	"github.com/rm-hull/winter-studio/internal/png/stage"
)

// Studio keeps one source image and re-renders it whenever the parameters
// change. It is not safe for concurrent use.
type Studio struct {
	source   image.Image
	params   ParameterSet
	pipeline *EffectPipeline
	buffer   *png.PixelBuffer
}

// NewStudio renders src once with the given starting parameters.
func NewStudio(src image.Image, params ParameterSet, rng stage.Rand) (*Studio, error) {
	s := &Studio{
		source:   src,
		pipeline: NewEffectPipeline(rng),
	}
	if err := s.SetParameters(params); err != nil {
		return nil, err
	}
	return s, nil
}

// SetParameters discards the previous render and runs the pipeline again
// from the source. On failure the previous render and parameters are kept.
func (s *Studio) SetParameters(params ParameterSet) error {
	params = params.Clamp()
	buf, err := s.pipeline.Run(s.source, params)
	if err != nil {
		return err
	}
	s.params = params
	s.buffer = buf
	return nil
}

func (s *Studio) Parameters() ParameterSet {
	return s.params
}

func (s *Studio) Buffer() *png.PixelBuffer {
	return s.buffer
}

// Rerun renders the current parameters again, giving a fresh flake scatter.
func (s *Studio) Rerun() error {
	return s.SetParameters(s.params)
}

func (s *Studio) Export(format png.Format) ([]byte, error) {
	return png.Encode(s.buffer, format)
}
