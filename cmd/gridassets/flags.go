package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/michaelscutari/gridassets/internal/fetch"
	"github.com/michaelscutari/gridassets/internal/pipeline"
	"github.com/michaelscutari/gridassets/internal/report"
	"github.com/michaelscutari/gridassets/internal/store"
	"github.com/spf13/cobra"
)

var flagsCmd = &cobra.Command{
	Use:   "flags",
	Short: "Download nationality flags",
	Long: `Download a flag image for every nationality in the catalog and save it
as {country-code}.png. Failed downloads are logged and skipped.`,
	Args: cobra.NoArgs,
	RunE: runFlags,
}

var (
	flagsOut     string
	flagsWorkers int
	flagsTimeout time.Duration
)

func init() {
	flagsCmd.Flags().StringVarP(&flagsOut, "out", "o", "public/flag-images", "Output directory for flag images")
	flagsCmd.Flags().IntVarP(&flagsWorkers, "workers", "w", 1, "Number of concurrent downloads")
	flagsCmd.Flags().DurationVar(&flagsTimeout, "timeout", fetch.DefaultTimeout, "Timeout for each download")
}

func runFlags(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	outDir, err := filepath.Abs(flagsOut)
	if err != nil {
		return fmt.Errorf("failed to resolve output path: %w", err)
	}

	s, err := store.Open(outDir)
	if err != nil {
		return err
	}
	defer s.Close()

	log.Info("downloading flags", "dir", s.Dir())

	opts := pipeline.DefaultOptions().
		WithWorkers(flagsWorkers).
		WithTimeout(flagsTimeout)

	ctx, stop := signalContext()
	defer stop()

	assets, skips := cat.FlagAssets()
	runner := pipeline.NewRunner(opts, fetch.NewClient(opts.Timeout, log), s, pipeline.Passthrough, log)
	summary := runner.Run(ctx, assets, skips)

	report.Print(cmd.OutOrStdout(), "Flags", s.Dir(), summary)
	return nil
}
