package stage

import (
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/gogpu/gg"
	"github.com/rm-hull/winter-studio/internal/png"
	"golang.org/x/image/draw"
)

const (
	MaxFlakes       = 300
	MinFlakeRadius  = 1.0
	MaxFlakeRadius  = 5.0
	MinFlakeOpacity = 0.2
	MaxFlakeOpacity = 1.0

	// GlowThreshold is the roll a flake must exceed to get a halo (30% chance).
	GlowThreshold = 0.7
	GlowScale     = 1.5
	GlowSpread    = 3.0
	GlowOpacity   = 0.5

	haloTileSize = 64
)

// Flake is one translucent white circle; it only lives for a single render.
type Flake struct {
	X, Y    float64
	Radius  float64
	Opacity float64
	Glow    bool
}

// reach is the pixel rectangle a circle of radius r around the flake can touch.
func (f Flake) reach(r float64) image.Rectangle {
	return image.Rect(
		int(math.Floor(f.X-r))-1,
		int(math.Floor(f.Y-r))-1,
		int(math.Ceil(f.X+r))+1,
		int(math.Ceil(f.Y+r))+1,
	)
}

// FlakeCount is floor(density/100 * MaxFlakes) with density clamped to [0,100].
func FlakeCount(density float64) int {
	return int(math.Floor(clamp(density, 0, 100) * MaxFlakes / 100))
}

// GenerateFlakes samples a fresh scatter over a width x height frame. Each
// flake draws, in order: x, y, radius, opacity and the glow roll.
func GenerateFlakes(rng Rand, density float64, width, height int) []Flake {
	rng = randOrDefault(rng)
	n := FlakeCount(density)
	flakes := make([]Flake, n)
	for i := range flakes {
		flakes[i] = Flake{
			X:       rng.Float64() * float64(width),
			Y:       rng.Float64() * float64(height),
			Radius:  MinFlakeRadius + rng.Float64()*(MaxFlakeRadius-MinFlakeRadius),
			Opacity: MinFlakeOpacity + rng.Float64()*(MaxFlakeOpacity-MinFlakeOpacity),
		}
		flakes[i].Glow = rng.Float64() > GlowThreshold
	}
	return flakes
}

type SnowflakeStage struct {
	Density float64 // [0,100]
	Rand    Rand
}

// Process scatters flakes over the buffer. Halos are softened on their own
// layer and laid down first so the sharp cores always sit on top of them;
// cores are then filled in generation order with normal alpha compositing.
func (s *SnowflakeStage) Process(p *png.PixelBuffer) error {
	if err := p.Validate(); err != nil {
		return err
	}

	flakes := GenerateFlakes(s.Rand, s.Density, p.Width(), p.Height())
	if len(flakes) == 0 {
		return nil
	}

	if err := drawHalos(p, flakes); err != nil {
		return err
	}
	return drawCores(p, flakes)
}

// haloLayer paints the glowing flakes' halos onto a transparent frame-sized
// layer and reports whether any were drawn.
func haloLayer(width, height int, flakes []Flake) (*gg.Context, bool, error) {
	layer := gg.NewContext(width, height)
	drawn := false
	for _, f := range flakes {
		if !f.Glow {
			continue
		}
		layer.SetRGBA(1, 1, 1, GlowOpacity*f.Opacity)
		layer.DrawCircle(f.X, f.Y, f.Radius*GlowScale)
		if err := layer.Fill(); err != nil {
			_ = layer.Close()
			return nil, false, fmt.Errorf("failed to draw flake halo: %w", err)
		}
		drawn = true
	}
	return layer, drawn, nil
}

// haloTiles marks the haloTileSize blocks of the frame a softened halo can reach.
func haloTiles(frame image.Rectangle, flakes []Flake) []image.Rectangle {
	cols := (frame.Dx() + haloTileSize - 1) / haloTileSize
	rows := (frame.Dy() + haloTileSize - 1) / haloTileSize
	marked := make([]bool, cols*rows)

	for _, f := range flakes {
		if !f.Glow {
			continue
		}
		r := f.reach(f.Radius*GlowScale + 3*GlowSpread).Intersect(frame)
		if r.Empty() {
			continue
		}
		for ty := r.Min.Y / haloTileSize; ty <= (r.Max.Y-1)/haloTileSize; ty++ {
			for tx := r.Min.X / haloTileSize; tx <= (r.Max.X-1)/haloTileSize; tx++ {
				marked[ty*cols+tx] = true
			}
		}
	}

	var tiles []image.Rectangle
	for i, ok := range marked {
		if !ok {
			continue
		}
		tx, ty := i%cols, i/cols
		tile := image.Rect(tx*haloTileSize, ty*haloTileSize, (tx+1)*haloTileSize, (ty+1)*haloTileSize)
		tiles = append(tiles, tile.Intersect(frame))
	}
	return tiles
}

// drawHalos softens the halo layer one tile at a time. Each tile is blurred
// with enough surrounding margin for the kernel, so the result matches
// blurring the whole layer while only paying for the tiles halos touch.
func drawHalos(p *png.PixelBuffer, flakes []Flake) error {
	frame := image.Rect(0, 0, p.Width(), p.Height())
	layer, drawn, err := haloLayer(p.Width(), p.Height(), flakes)
	if err != nil {
		return err
	}
	defer func() {
		_ = layer.Close()
	}()
	if !drawn {
		return nil
	}

	halos := layer.Image()
	margin := int(math.Ceil(GlowSpread)) + 1
	for _, tile := range haloTiles(frame, flakes) {
		padded := tile.Inset(-margin).Intersect(frame)
		scratch := image.NewRGBA(image.Rect(0, 0, padded.Dx(), padded.Dy()))
		draw.Draw(scratch, scratch.Bounds(), halos, padded.Min, draw.Src)

		soft := blur.Gaussian(scratch, GlowSpread)
		draw.Draw(p.Img, tile, soft, tile.Min.Sub(padded.Min), draw.Over)
	}
	return nil
}

func drawCores(p *png.PixelBuffer, flakes []Flake) error {
	frame := image.Rect(0, 0, p.Width(), p.Height())
	dc := gg.NewContextForImage(p.Img)
	defer func() {
		_ = dc.Close()
	}()

	for _, f := range flakes {
		dc.SetRGBA(1, 1, 1, f.Opacity)
		dc.DrawCircle(f.X, f.Y, f.Radius)
		if err := dc.Fill(); err != nil {
			return fmt.Errorf("failed to draw flake: %w", err)
		}
	}

	// Copy back only what the flakes touched so the rest of the buffer
	// does not round-trip through premultiplied alpha.
	rendered := dc.Image()
	for _, f := range flakes {
		r := f.reach(f.Radius).Intersect(frame)
		if r.Empty() {
			continue
		}
		draw.Draw(p.Img, r, rendered, r.Min, draw.Src)
	}
	return nil
}
