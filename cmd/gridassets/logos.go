package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/michaelscutari/gridassets/internal/fetch"
	"github.com/michaelscutari/gridassets/internal/normalize"
	"github.com/michaelscutari/gridassets/internal/pipeline"
	"github.com/michaelscutari/gridassets/internal/report"
	"github.com/michaelscutari/gridassets/internal/store"
	"github.com/spf13/cobra"
)

var logosCmd = &cobra.Command{
	Use:   "logos",
	Short: "Download team logos and center them on a fixed canvas",
	Long: `Download every team logo in the catalog, scale it to fit inside the
canvas minus the margin, center it on a transparent background and save
it as {team}.png.`,
	Args: cobra.NoArgs,
	RunE: runLogos,
}

var (
	logosOut     string
	logosWorkers int
	logosTimeout time.Duration
	logosWidth   int
	logosHeight  int
	logosMargin  int
	logosUpscale bool
)

func init() {
	logosCmd.Flags().StringVarP(&logosOut, "out", "o", "public/cars", "Output directory for logo images")
	logosCmd.Flags().IntVarP(&logosWorkers, "workers", "w", 1, "Number of concurrent downloads")
	logosCmd.Flags().DurationVar(&logosTimeout, "timeout", fetch.DefaultTimeout, "Timeout for each download")
	logosCmd.Flags().IntVar(&logosWidth, "width", 0, "Canvas width (0 = catalog value)")
	logosCmd.Flags().IntVar(&logosHeight, "height", 0, "Canvas height (0 = catalog value)")
	logosCmd.Flags().IntVar(&logosMargin, "margin", -1, "Margin in pixels (-1 = catalog value)")
	logosCmd.Flags().BoolVar(&logosUpscale, "upscale", false, "Enlarge logos smaller than the canvas")
}

func runLogos(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	nopts := normalize.Options{
		Canvas:       cat.Canvas(),
		Margin:       cat.Logos.Margin,
		AllowUpscale: logosUpscale,
	}
	if logosWidth > 0 {
		nopts.Canvas.Width = logosWidth
	}
	if logosHeight > 0 {
		nopts.Canvas.Height = logosHeight
	}
	if logosMargin >= 0 {
		nopts.Margin = logosMargin
	}
	if err := nopts.Canvas.Validate(nopts.Margin); err != nil {
		return err
	}

	outDir, err := filepath.Abs(logosOut)
	if err != nil {
		return fmt.Errorf("failed to resolve output path: %w", err)
	}

	s, err := store.Open(outDir)
	if err != nil {
		return err
	}
	defer s.Close()

	log.Info("processing logos", "dir", s.Dir(),
		"canvas", fmt.Sprintf("%dx%d", nopts.Canvas.Width, nopts.Canvas.Height), "margin", nopts.Margin)

	opts := pipeline.DefaultOptions().
		WithWorkers(logosWorkers).
		WithTimeout(logosTimeout)

	ctx, stop := signalContext()
	defer stop()

	runner := pipeline.NewRunner(opts, fetch.NewClient(opts.Timeout, log), s, pipeline.Normalizer(nopts), log)
	summary := runner.Run(ctx, cat.LogoAssets(), nil)

	report.Print(cmd.OutOrStdout(), "Logos", s.Dir(), summary)
	return nil
}
