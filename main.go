package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/rm-hull/winter-studio/cmd"
	"github.com/rm-hull/winter-studio/internal"
	"github.com/rm-hull/winter-studio/internal/config"
	"github.com/rm-hull/winter-studio/internal/png"
	"github.com/rm-hull/winter-studio/internal/winter"
	"github.com/spf13/cobra"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}

// renderFlags holds the slider flags shared by apply and animate. Flags the
// user did not pass fall back to the WINTER_* configuration.
type renderFlags struct {
	params winter.ParameterSet
	seed   uint64
}

func (f *renderFlags) register(c *cobra.Command) {
	defaults := winter.DefaultParameters()
	c.Flags().Float64Var(&f.params.SnowCover, "snow-cover", defaults.SnowCover, "Snow cover on the ground, 0-100 (default from WINTER_SNOW_COVER)")
	c.Flags().Float64Var(&f.params.SnowflakeDensity, "snowflakes", defaults.SnowflakeDensity, "Snowflake density, 0-100 (default from WINTER_SNOWFLAKES)")
	c.Flags().Float64Var(&f.params.Brightness, "brightness", defaults.Brightness, "Brightness percentage, 50-150 (default from WINTER_BRIGHTNESS)")
	c.Flags().Float64Var(&f.params.Contrast, "contrast", defaults.Contrast, "Contrast percentage, 50-150 (default from WINTER_CONTRAST)")
	c.Flags().Uint64Var(&f.seed, "seed", 0, "Random seed, 0 picks one at random (default from WINTER_SEED)")
}

func (f *renderFlags) resolve(c *cobra.Command, cfg *config.Config) (winter.ParameterSet, uint64) {
	params := cfg.Parameters()
	seed := cfg.Seed

	changed := c.Flags().Changed
	if changed("snow-cover") {
		params.SnowCover = f.params.SnowCover
	}
	if changed("snowflakes") {
		params.SnowflakeDensity = f.params.SnowflakeDensity
	}
	if changed("brightness") {
		params.Brightness = f.params.Brightness
	}
	if changed("contrast") {
		params.Contrast = f.params.Contrast
	}
	if changed("seed") {
		seed = f.seed
	}
	return params, seed
}

func newRootCmd() *cobra.Command {
	var port int
	var debug bool
	var outPath string
	var format string
	var frames int
	var delay float64

	rootCmd := &cobra.Command{
		Use:          "winter-studio",
		Long:         `Winter Studio: snow cover, snowflakes and cold light for a single photo`,
		SilenceUsage: true,
	}

	var applyFlags renderFlags
	applyCmd := &cobra.Command{
		Use:   "apply <image> [--out <path>] [--format png|webp]",
		Short: "Apply the winter effect to an image and export it",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			f, err := png.ParseFormat(format)
			if err != nil {
				return err
			}
			out := outPath
			if out == "" {
				out = f.Filename(cfg.ExportFilename)
			}
			params, seed := applyFlags.resolve(c, cfg)
			return cmd.Apply(args[0], out, cmd.RenderOptions{Params: params, Seed: seed, Format: f})
		},
	}
	applyFlags.register(applyCmd)
	applyCmd.Flags().StringVar(&outPath, "out", "", "Output path (default: export filename from config)")
	applyCmd.Flags().StringVar(&format, "format", "png", "Output format: png or webp")

	var animateFlags renderFlags
	animateCmd := &cobra.Command{
		Use:   "animate <image> [--frames <n>] [--delay <seconds>] [--out <path>]",
		Short: "Render a looping snowfall animation (APNG)",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			out := outPath
			if out == "" {
				out = png.FormatPNG.Filename(cfg.ExportFilename)
			}
			params, seed := animateFlags.resolve(c, cfg)
			return cmd.Animate(args[0], out, cmd.AnimateOptions{Params: params, Seed: seed, Frames: frames, FrameDelay: delay})
		},
	}
	animateFlags.register(animateCmd)
	animateCmd.Flags().StringVar(&outPath, "out", "", "Output path (default: export filename from config)")
	animateCmd.Flags().IntVar(&frames, "frames", 8, "Number of frames")
	animateCmd.Flags().Float64Var(&delay, "delay", 0.25, "Delay between frames in seconds, up to 65.535")

	apiServerCmd := &cobra.Command{
		Use:   "api-server [--port <port>] [--debug]",
		Short: "Start HTTP API server",
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !c.Flags().Changed("port") {
				port = cfg.Port
			}
			internal.ShowVersion()
			internal.StudioSettings()
			log.Printf("Loaded configuration: %+v", *cfg)
			cmd.ApiServer(cfg, port, debug)
			return nil
		},
	}
	apiServerCmd.Flags().IntVar(&port, "port", 8080, "Port to run HTTP server on (default from WINTER_PORT)")
	apiServerCmd.Flags().BoolVar(&debug, "debug", false, "Enable debugging (pprof) - WARNING: do not enable in production")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			internal.ShowVersion()
		},
	}

	rootCmd.AddCommand(applyCmd, animateCmd, apiServerCmd, versionCmd)
	return rootCmd
}
