package png

import (
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

var (
	ErrImageLoad     = errors.New("failed to load image")
	ErrInvalidBuffer = errors.New("invalid pixel buffer")
	ErrEncode        = errors.New("failed to encode image")
)

// PixelBuffer is the mutable working copy a single pipeline run owns.
type PixelBuffer struct {
	Img    *image.NRGBA
	Bounds image.Rectangle
}

type PipelineStage interface {
	Process(buf *PixelBuffer) error
}

// NewPixelBuffer copies src into a fresh NRGBA buffer, leaving src untouched.
func NewPixelBuffer(src image.Image) (*PixelBuffer, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: no source image", ErrInvalidBuffer)
	}
	if src.Bounds().Empty() {
		return nil, fmt.Errorf("%w: source image has zero dimensions", ErrInvalidBuffer)
	}
	img := imaging.Clone(src)
	return &PixelBuffer{
		Img:    img,
		Bounds: img.Bounds(),
	}, nil
}

func NewPixelBufferFromReader(r io.Reader) (*PixelBuffer, error) {
	img, err := Decode(r)
	if err != nil {
		return nil, err
	}
	return NewPixelBuffer(img)
}

func (p *PixelBuffer) Width() int {
	return p.Bounds.Dx()
}

func (p *PixelBuffer) Height() int {
	return p.Bounds.Dy()
}

// Validate reports ErrInvalidBuffer for nil, zero-dimension or truncated
// buffers. Stages address pixels from the top-left, so the origin must be (0,0).
func (p *PixelBuffer) Validate() error {
	if p == nil || p.Img == nil {
		return fmt.Errorf("%w: missing image", ErrInvalidBuffer)
	}
	if p.Bounds.Empty() {
		return fmt.Errorf("%w: zero dimensions %v", ErrInvalidBuffer, p.Bounds)
	}
	if p.Bounds.Min != (image.Point{}) {
		return fmt.Errorf("%w: origin %v is not (0,0)", ErrInvalidBuffer, p.Bounds.Min)
	}
	if p.Bounds != p.Img.Rect {
		return fmt.Errorf("%w: bounds %v do not match image %v", ErrInvalidBuffer, p.Bounds, p.Img.Rect)
	}
	if p.Img.Stride < 4*p.Width() {
		return fmt.Errorf("%w: stride %d too small for width %d", ErrInvalidBuffer, p.Img.Stride, p.Width())
	}
	if need := p.Img.Stride*(p.Height()-1) + 4*p.Width(); len(p.Img.Pix) < need {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrInvalidBuffer, len(p.Img.Pix), need)
	}
	return nil
}

func (p *PixelBuffer) Write(w io.Writer) error {
	data, err := Encode(p, FormatPNG)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write encoded image: %w", err)
	}
	return nil
}

func (p *PixelBuffer) Pipeline(stages ...PipelineStage) error {
	if err := p.Validate(); err != nil {
		return err
	}
	for _, stage := range stages {
		if err := stage.Process(p); err != nil {
			return err
		}
	}
	return nil
}
