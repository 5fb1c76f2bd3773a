package cmd

import (
	"fmt"
	"log"

	"github.com/dustin/go-humanize"
	"github.com/rm-hull/winter-studio/internal/png"
	"github.com/rm-hull/winter-studio/internal/png/stage"
	"github.com/rm-hull/winter-studio/internal/winter"
)

type RenderOptions struct {
	Params winter.ParameterSet
	Seed   uint64 // 0 picks a random seed
	Format png.Format
}

// Apply renders the winter effect over inPath once and exports it to outPath.
func Apply(inPath, outPath string, opts RenderOptions) error {
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

	data, err := studio.Export(opts.Format)
	if err != nil {
		return err
	}

	if err := writeFile(outPath, data); err != nil {
		return fmt.Errorf("failed to export %s: %w", outPath, err)
	}

	buf := studio.Buffer()
	log.Printf("Wrote %s (%dx%d, %s)", outPath, buf.Width(), buf.Height(), humanize.Bytes(uint64(len(data))))
	return nil
}
