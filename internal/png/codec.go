package png

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type Format string

const (
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
)

// ParseFormat maps a user supplied name (or file extension) to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(s), ".") {
	case "", "png", "apng":
		return FormatPNG, nil
	case "webp":
		return FormatWebP, nil
	default:
		return "", fmt.Errorf("unsupported output format %q", s)
	}
}

func (f Format) ContentType() string {
	if f == FormatWebP {
		return "image/webp"
	}
	return "image/png"
}

// Filename swaps the extension of name for the format's own.
func (f Format) Filename(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + "." + string(f)
}

// Decode reads any registered raster format, honouring EXIF orientation.
func Decode(r io.Reader) (image.Image, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: no reader", ErrImageLoad)
	}
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImageLoad, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: image has zero dimensions", ErrImageLoad)
	}
	return img, nil
}

// Encode rasterizes the buffer into the requested format. The returned
// bytes are never partial: any failure yields ErrEncode and no data.
func Encode(buf *PixelBuffer, format Format) ([]byte, error) {
	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	var out bytes.Buffer
	var err error
	switch format {
	case FormatPNG, "":
		err = png.Encode(&out, buf.Img)
	case FormatWebP:
		err = nativewebp.Encode(&out, buf.Img, nil)
	default:
		err = fmt.Errorf("unsupported output format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return out.Bytes(), nil
}
