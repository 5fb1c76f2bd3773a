package cmd

import (
	"errors"
	"fmt"
	"log"

	"github.com/dustin/go-humanize"
	"github.com/rm-hull/winter-studio/internal/png"
	"github.com/rm-hull/winter-studio/internal/png/stage"
	"github.com/rm-hull/winter-studio/internal/winter"
)

type AnimateOptions struct {
	Params     winter.ParameterSet
	Seed       uint64
	Frames     int
	FrameDelay float64 // seconds
}

// Animate renders the same parameters Frames times and loops the results as
// an APNG; each run scatters new flakes, which reads as falling snow.
func Animate(inPath, outPath string, opts AnimateOptions) error {
	if opts.Frames < 1 {
		return errors.New("frame count must be at least 1")
	}
	if err := png.CheckFrameDelay(opts.FrameDelay); err != nil {
		return err
	}
	if err := opts.Params.Validate(); err != nil {
		return err
	}

	src, err := loadSource(inPath)
	if err != nil {
		return err
	}

	studio, err := winter.NewStudio(src, opts.Params, stage.NewRand(opts.Seed))
	if err != nil {
		return err
	}

	frames := make([]*png.PixelBuffer, 0, opts.Frames)
	frames = append(frames, studio.Buffer())
	for len(frames) < opts.Frames {
		if err := studio.Rerun(); err != nil {
			return fmt.Errorf("failed to render frame %d: %w", len(frames), err)
		}
		frames = append(frames, studio.Buffer())
	}

	data, err := png.Animate(frames, opts.FrameDelay)
	if err != nil {
		return err
	}

	if err := writeFile(outPath, data); err != nil {
		return fmt.Errorf("failed to export %s: %w", outPath, err)
	}

	log.Printf("Wrote %s (%d frames, %s)", outPath, len(frames), humanize.Bytes(uint64(len(data))))
	return nil
}
