package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the asset catalog",
	Long:  `Print every flag and logo the tool knows about, with its output name and source URL.`,
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	flags, skips := cat.FlagAssets()
	logos := cat.LogoAssets()

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "KIND\tNAME\tFILE\tURL\n")
	for _, a := range flags {
		fmt.Fprintf(w, "%s\t%s\t%s.%s\t%s\n", a.Kind, a.Name, a.ID, a.Ext, a.URL)
	}
	for _, s := range skips {
		fmt.Fprintf(w, "%s\t%s\t-\t(%s)\n", "flag", s.Name, s.Reason)
	}
	for _, a := range logos {
		fmt.Fprintf(w, "%s\t%s\t%s.%s\t%s\n", a.Kind, a.Name, a.ID, a.Ext, a.URL)
	}
	w.Flush()

	c := cat.Canvas()
	fmt.Fprintf(out, "\n%s flags, %s logos (canvas %dx%d, margin %d)\n",
		humanize.Comma(int64(len(flags))), humanize.Comma(int64(len(logos))), c.Width, c.Height, cat.Logos.Margin)
	return nil
}
