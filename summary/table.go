package summary

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"
)

// WriteTable renders stats as an aligned text table.
func WriteTable(w io.Writer, stats []Stat) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	lo, hi := "lower", "upper"
	if len(stats) > 0 {
		lo = fmt.Sprintf("lower %g%%", math.Round(1000*stats[0].Mass)/10)
		hi = fmt.Sprintf("upper %g%%", math.Round(1000*stats[0].Mass)/10)
	}
	if _, err := fmt.Fprintf(tw, "parameter\tmean\tsd\t%s\t%s\tess\tr_hat\t\n", lo, hi); err != nil {
		return err
	}

	for _, s := range stats {
		_, err := fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%s\t%s\t\n",
			s.Name, s.Mean, s.SD, s.Lower, s.Upper, formatDiag(s.ESS, "%.0f"), formatDiag(s.RHat, "%.3f"))
		if err != nil {
			return err
		}
	}

	return tw.Flush()
}

func formatDiag(v float64, format string) string {
	if math.IsNaN(v) {
		return "-"
	}

	return fmt.Sprintf(format, v)
}
