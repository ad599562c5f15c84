package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gosimple/slug"
	"github.com/michaelscutari/gridassets/internal/normalize"
	"github.com/michaelscutari/gridassets/internal/store"
	"github.com/spf13/cobra"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <image>",
	Short: "Center a local image on a transparent canvas",
	Long: `Apply the logo normalization to a local file. Useful for checking a
replacement logo before adding its URL to the catalog. The output is
written as {slug}.png in the output directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runNormalize,
}

var (
	normOut     string
	normName    string
	normWidth   int
	normHeight  int
	normMargin  int
	normUpscale bool
)

func init() {
	normalizeCmd.Flags().StringVarP(&normOut, "out", "o", ".", "Output directory")
	normalizeCmd.Flags().StringVarP(&normName, "name", "n", "", "Output name (default: slug of the input file name)")
	normalizeCmd.Flags().IntVar(&normWidth, "width", 300, "Canvas width")
	normalizeCmd.Flags().IntVar(&normHeight, "height", 300, "Canvas height")
	normalizeCmd.Flags().IntVar(&normMargin, "margin", 40, "Margin in pixels")
	normalizeCmd.Flags().BoolVar(&normUpscale, "upscale", false, "Enlarge images smaller than the canvas")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	res, err := normalize.Run(src, normalize.Options{
		Canvas:       normalize.Canvas{Width: normWidth, Height: normHeight},
		Margin:       normMargin,
		AllowUpscale: normUpscale,
	})
	if err != nil {
		return err
	}

	name := normName
	if name == "" {
		base := filepath.Base(args[0])
		name = slug.Make(strings.TrimSuffix(base, filepath.Ext(base)))
	}
	if name == "" {
		return fmt.Errorf("cannot derive an output name from %q, use --name", args[0])
	}

	s, err := store.Open(normOut)
	if err != nil {
		return err
	}
	defer s.Close()

	path, err := s.Write(name, "png", res.Data)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Source:  %dx%d\n", res.SrcWidth, res.SrcHeight)
	fmt.Fprintf(out, "Scaled:  %dx%d at (%d, %d)\n", res.Bounds.Dx(), res.Bounds.Dy(), res.Bounds.Min.X, res.Bounds.Min.Y)
	fmt.Fprintf(out, "Output:  %s (%dx%d, %s)\n", path, res.Width, res.Height, humanize.Bytes(uint64(len(res.Data))))
	return nil
}
