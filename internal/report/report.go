package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/michaelscutari/gridassets/internal/asset"
)

// Summary renders a run summary for the console. Failures and skips are
// listed by name so they can be retried by hand.
func Summary(title, dir string, s *asset.Summary) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	line := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(value)
		b.WriteString("\n")
	}

	line("Output", pathStyle.Render(dir))
	line("Saved", okStyle.Render(fmt.Sprintf("%s (%s)",
		FormatCount(int64(s.Count(asset.StatusOK))), FormatSize(s.TotalBytes()))))

	if n := s.Count(asset.StatusFailed); n > 0 {
		line("Failed", failStyle.Render(FormatCount(int64(n))))
	}
	if n := s.Count(asset.StatusSkipped); n > 0 {
		line("Skipped", skipStyle.Render(FormatCount(int64(n))))
	}

	for _, r := range s.Results {
		switch r.Status {
		case asset.StatusFailed:
			fmt.Fprintf(&b, "  %s %s: %v\n", failStyle.Render("x"), displayName(r.Asset), r.Err)
		case asset.StatusSkipped:
			fmt.Fprintf(&b, "  %s %s: %v\n", skipStyle.Render("-"), displayName(r.Asset), r.Err)
		}
	}

	return b.String()
}

// Print writes the rendered summary to w.
func Print(w io.Writer, title, dir string, s *asset.Summary) {
	fmt.Fprint(w, Summary(title, dir, s))
}

func displayName(a asset.Asset) string {
	switch {
	case a.ID != "" && a.Name != "" && a.ID != a.Name:
		return fmt.Sprintf("%s (%s)", a.Name, a.ID)
	case a.ID != "":
		return a.ID
	default:
		return a.Name
	}
}
