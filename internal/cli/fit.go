package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/arloliu/ic50"
	"github.com/arloliu/ic50/dose"
	"github.com/arloliu/ic50/internal/config"
	"github.com/arloliu/ic50/internal/metrics"
	"github.com/arloliu/ic50/model"
	"github.com/arloliu/ic50/sampler"
	"github.com/arloliu/ic50/summary"
)

type fitOptions struct {
	input      string
	configPath string
	draws      int
	burn       int
	chains     int
	seed       uint64
	mass       float64
	interval   string
	packing    string
	metricsOut string
}

func newFitCommand(root *rootOptions) *cobra.Command {
	opts := &fitOptions{}

	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Estimate per-drug IC50 from a CSV table",
		Long: `Fit reads a CSV table with drug, concentration and measurement columns,
samples the posterior and prints a summary of every parameter.

Flags override the values of the --config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			f, err := os.Open(opts.input)
			if err != nil {
				return fmt.Errorf("failed to open input: %w", err)
			}
			defer f.Close()

			ds, err := dose.ReadCSV(f, cfg.CSVOptions()...)
			if err != nil {
				return err
			}

			return runFit(cmd, root, cfg, ds, nil)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.input, "input", "i", "", "CSV file with drug, concentration and measurement columns")
	f.StringVarP(&opts.configPath, "config", "c", "", "YAML run configuration")
	f.IntVar(&opts.draws, "draws", 0, "Iterations per chain, warm-up included")
	f.IntVar(&opts.burn, "burn", 0, "Warm-up iterations per chain")
	f.IntVar(&opts.chains, "chains", 0, "Number of chains")
	f.Uint64Var(&opts.seed, "seed", 0, "Random seed")
	f.Float64Var(&opts.mass, "mass", 0, "Credible interval mass")
	f.StringVar(&opts.interval, "interval", "", "Interval kind: hpd, equal-tailed")
	f.StringVar(&opts.packing, "packing", "", "Pack the trace in memory: none, zstd, s2, lz4")
	f.StringVar(&opts.metricsOut, "metrics-out", "", "Write Prometheus metrics to this textfile")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

// loadConfig reads the config file, if any, and overlays the flags the user set.
func loadConfig(cmd *cobra.Command, opts *fitOptions) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	f := cmd.Flags()
	if f.Changed("draws") {
		cfg.Sampler.Draws = opts.draws
	}
	if f.Changed("burn") {
		cfg.Sampler.Burn = opts.burn
	}
	if f.Changed("chains") {
		cfg.Sampler.Chains = opts.chains
	}
	if f.Changed("seed") {
		cfg.Sampler.Seed = opts.seed
	}
	if f.Changed("mass") {
		cfg.Summary.Mass = opts.mass
	}
	if f.Changed("interval") {
		cfg.Summary.Interval = opts.interval
	}
	if f.Changed("packing") {
		cfg.Sampler.Packing = opts.packing
	}
	if f.Changed("metrics-out") {
		cfg.Metrics.Textfile = opts.metricsOut
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// runFit fits ds and prints the results. When truth is non-nil it is shown
// next to the recovered IC50 of each drug.
func runFit(cmd *cobra.Command, root *rootOptions, cfg *config.Config, ds dose.Dataset, truth []float64) error {
	fitOpts, err := cfg.FitOptions()
	if err != nil {
		return err
	}
	fitOpts = append(fitOpts, ic50.WithLogger(root.logger))

	var m *metrics.Metrics
	if cfg.Metrics.Textfile != "" {
		m = metrics.New()
		fitOpts = append(fitOpts, ic50.WithSamplerOptions(sampler.WithObserver(m)))
	}

	res, err := ic50.Fit(cmd.Context(), ds, fitOpts...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s: %d observations, %d drugs, %s\n\n",
		res.RunID, res.Model.Observations(), res.Model.Drugs(), res.Duration.Round(time.Millisecond))
	if err := writeIC50Table(out, res, truth); err != nil {
		return err
	}
	fmt.Fprintln(out)
	if err := summary.WriteTable(out, res.Summary); err != nil {
		return err
	}

	for _, w := range res.Warnings() {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}

	if m != nil {
		m.ObserveFit(res, time.Now())
		if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	return nil
}

func writeIC50Table(w io.Writer, res *ic50.Result, truth []float64) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	header := "drug\tic50\tlower\tupper"
	if truth != nil {
		header += "\ttrue"
	}
	fmt.Fprintln(tw, header+"\t")

	for g := range res.Model.Drugs() {
		s, ok := res.Stat(model.IC50, g)
		if !ok {
			continue
		}
		fmt.Fprintf(tw, "%s\t%.3f\t%.3f\t%.3f", res.Model.Label(g), s.Mean, s.Lower, s.Upper)
		if g < len(truth) {
			fmt.Fprintf(tw, "\t%g", truth[g])
		}
		fmt.Fprintln(tw, "\t")
	}

	return tw.Flush()
}
