package png

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	stdpng "image/png"
	"testing"

	"github.com/kettek/apng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStage struct {
	name string
	log  *[]string
	err  error
}

func (s *recordingStage) Process(_ *PixelBuffer) error {
	*s.log = append(*s.log, s.name)
	return s.err
}

func gradientImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 10), uint8(y * 10), 128, 255})
		}
	}
	return img
}

func TestNewPixelBuffer(t *testing.T) {
	t.Run("copies the source", func(t *testing.T) {
		src := gradientImage(4, 3)
		buf, err := NewPixelBuffer(src)
		require.NoError(t, err)
		assert.Equal(t, 4, buf.Width())
		assert.Equal(t, 3, buf.Height())
		assert.Equal(t, src.Pix, buf.Img.Pix)

		buf.Img.Pix[0] = 99
		assert.Equal(t, uint8(0), src.Pix[0])
	})

	t.Run("rebases offset images", func(t *testing.T) {
		src := gradientImage(6, 6).SubImage(image.Rect(2, 2, 5, 4))
		buf, err := NewPixelBuffer(src)
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 3, 2), buf.Bounds)
		assert.Equal(t, color.NRGBA{20, 20, 128, 255}, buf.Img.NRGBAAt(0, 0))
	})

	t.Run("rejects nil and empty images", func(t *testing.T) {
		_, err := NewPixelBuffer(nil)
		assert.ErrorIs(t, err, ErrInvalidBuffer)

		_, err = NewPixelBuffer(image.NewNRGBA(image.Rect(0, 0, 0, 5)))
		assert.ErrorIs(t, err, ErrInvalidBuffer)
	})
}

func TestPixelBuffer_Validate(t *testing.T) {
	valid := func() *PixelBuffer {
		img := gradientImage(3, 3)
		return &PixelBuffer{Img: img, Bounds: img.Bounds()}
	}

	tests := []struct {
		name   string
		mutate func(p *PixelBuffer) *PixelBuffer
	}{
		{"nil buffer", func(_ *PixelBuffer) *PixelBuffer { return nil }},
		{"nil image", func(p *PixelBuffer) *PixelBuffer { p.Img = nil; return p }},
		{"zero bounds", func(p *PixelBuffer) *PixelBuffer { p.Bounds = image.Rectangle{}; return p }},
		{"mismatched bounds", func(p *PixelBuffer) *PixelBuffer { p.Bounds = image.Rect(0, 0, 2, 2); return p }},
		{"offset origin", func(p *PixelBuffer) *PixelBuffer {
			p.Img.Rect = p.Img.Rect.Add(image.Pt(1, 1))
			p.Bounds = p.Img.Rect
			return p
		}},
		{"short stride", func(p *PixelBuffer) *PixelBuffer { p.Img.Stride = 4; return p }},
		{"truncated pixels", func(p *PixelBuffer) *PixelBuffer { p.Img.Pix = p.Img.Pix[:10]; return p }},
	}

	assert.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.mutate(valid()).Validate(), ErrInvalidBuffer)
		})
	}
}

func TestPixelBuffer_Pipeline(t *testing.T) {
	t.Run("runs stages in order", func(t *testing.T) {
		var log []string
		buf, err := NewPixelBuffer(gradientImage(2, 2))
		require.NoError(t, err)

		err = buf.Pipeline(
			&recordingStage{name: "first", log: &log},
			&recordingStage{name: "second", log: &log},
			&recordingStage{name: "third", log: &log},
		)
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "second", "third"}, log)
	})

	t.Run("stops at the first failure", func(t *testing.T) {
		var log []string
		boom := errors.New("boom")
		buf, err := NewPixelBuffer(gradientImage(2, 2))
		require.NoError(t, err)

		err = buf.Pipeline(
			&recordingStage{name: "first", log: &log, err: boom},
			&recordingStage{name: "second", log: &log},
		)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, []string{"first"}, log)
	})

	t.Run("refuses invalid buffers", func(t *testing.T) {
		var log []string
		err := (&PixelBuffer{}).Pipeline(&recordingStage{name: "first", log: &log})
		assert.ErrorIs(t, err, ErrInvalidBuffer)
		assert.Empty(t, log)
	})
}

func TestEncode(t *testing.T) {
	buf, err := NewPixelBuffer(gradientImage(5, 7))
	require.NoError(t, err)

	t.Run("png round trip", func(t *testing.T) {
		data, err := Encode(buf, FormatPNG)
		require.NoError(t, err)
		require.NotEmpty(t, data)

		img, err := stdpng.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, image.Pt(5, 7), img.Bounds().Size())
	})

	t.Run("webp round trip", func(t *testing.T) {
		data, err := Encode(buf, FormatWebP)
		require.NoError(t, err)

		img, err := Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, image.Pt(5, 7), img.Bounds().Size())
	})

	t.Run("write matches encode", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, buf.Write(&out))
		data, err := Encode(buf, FormatPNG)
		require.NoError(t, err)
		assert.Equal(t, data, out.Bytes())
	})

	t.Run("empty buffer", func(t *testing.T) {
		data, err := Encode(&PixelBuffer{}, FormatPNG)
		assert.ErrorIs(t, err, ErrEncode)
		assert.ErrorIs(t, err, ErrInvalidBuffer)
		assert.Nil(t, data)
	})

	t.Run("unknown format", func(t *testing.T) {
		data, err := Encode(buf, Format("bmp"))
		assert.ErrorIs(t, err, ErrEncode)
		assert.Nil(t, data)
	})
}

func TestDecode(t *testing.T) {
	t.Run("garbage", func(t *testing.T) {
		img, err := Decode(bytes.NewReader([]byte("not an image")))
		assert.ErrorIs(t, err, ErrImageLoad)
		assert.Nil(t, img)
	})

	t.Run("nil reader", func(t *testing.T) {
		_, err := Decode(nil)
		assert.ErrorIs(t, err, ErrImageLoad)
	})

	t.Run("png", func(t *testing.T) {
		var data bytes.Buffer
		require.NoError(t, stdpng.Encode(&data, gradientImage(3, 2)))

		buf, err := NewPixelBufferFromReader(&data)
		require.NoError(t, err)
		assert.Equal(t, color.NRGBA{10, 10, 128, 255}, buf.Img.NRGBAAt(1, 1))
	})
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"", "png", "PNG", ".png", "apng"} {
		f, err := ParseFormat(s)
		require.NoError(t, err)
		assert.Equal(t, FormatPNG, f)
	}

	f, err := ParseFormat("webp")
	require.NoError(t, err)
	assert.Equal(t, FormatWebP, f)
	assert.Equal(t, "image/webp", f.ContentType())

	_, err = ParseFormat("gif")
	assert.Error(t, err)
}

func TestFormat_Filename(t *testing.T) {
	assert.Equal(t, "winter-photo.png", FormatPNG.Filename("winter-photo.png"))
	assert.Equal(t, "winter-photo.webp", FormatWebP.Filename("winter-photo.png"))
	assert.Equal(t, "snow.webp", FormatWebP.Filename("snow"))
}

func TestAnimate(t *testing.T) {
	a, err := NewPixelBuffer(gradientImage(4, 4))
	require.NoError(t, err)
	b, err := NewPixelBuffer(gradientImage(4, 4))
	require.NoError(t, err)

	t.Run("encodes frames", func(t *testing.T) {
		data, err := Animate([]*PixelBuffer{a, b}, 0.5)
		require.NoError(t, err)

		img, err := stdpng.Decode(bytes.NewReader(data))
		require.NoError(t, err, "APNG falls back to its first frame for plain PNG decoders")
		assert.Equal(t, image.Pt(4, 4), img.Bounds().Size())
	})

	t.Run("frame delay round trips", func(t *testing.T) {
		for _, delay := range []float64{0.001, 0.25, MaxFrameDelay} {
			data, err := Animate([]*PixelBuffer{a, b}, delay)
			require.NoError(t, err)

			decoded, err := apng.DecodeAll(bytes.NewReader(data))
			require.NoError(t, err)
			last := decoded.Frames[len(decoded.Frames)-1]
			assert.InDelta(t, delay, float64(last.DelayNumerator)/float64(last.DelayDenominator), 1e-9)
		}
	})

	t.Run("frame delay out of range", func(t *testing.T) {
		for _, delay := range []float64{0, -1, 65.536, 70} {
			data, err := Animate([]*PixelBuffer{a, b}, delay)
			assert.ErrorIs(t, err, ErrEncode, "delay %v", delay)
			assert.Nil(t, data)
		}
	})

	t.Run("no frames", func(t *testing.T) {
		_, err := Animate(nil, 0.5)
		assert.ErrorIs(t, err, ErrEncode)
	})

	t.Run("mismatched frames", func(t *testing.T) {
		c, err := NewPixelBuffer(gradientImage(2, 2))
		require.NoError(t, err)
		_, err = Animate([]*PixelBuffer{a, c}, 0.5)
		assert.ErrorIs(t, err, ErrEncode)
	})
}
