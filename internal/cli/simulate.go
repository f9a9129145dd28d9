package cli

import (
	"github.com/spf13/cobra"

	"github.com/arloliu/ic50/dose"
	"github.com/arloliu/ic50/synth"
)

type simulateOptions struct {
	ic50         []float64
	beta         float64
	noise        float64
	seed         uint64
	coarseMax    float64
	coarsePoints int
	fineWidth    float64
	finePoints   int
}

func newSimulateCommand() *cobra.Command {
	def := synth.DefaultConfig()
	opts := &simulateOptions{
		ic50:         def.IC50,
		beta:         def.Beta,
		noise:        def.NoiseSD,
		seed:         def.Seed,
		coarseMax:    120,
		coarsePoints: 25,
		fineWidth:    5,
		finePoints:   21,
	}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Generate a synthetic dose-response table as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			grid, err := synth.TwoPassGrid(
				synth.Range{Min: 0, Max: opts.coarseMax, Points: opts.coarsePoints},
				opts.ic50,
				synth.Window{HalfWidth: opts.fineWidth, Points: opts.finePoints},
			)
			if err != nil {
				return err
			}

			ds, err := synth.Generate(synth.Config{
				IC50:    opts.ic50,
				Beta:    opts.beta,
				NoiseSD: opts.noise,
				Grid:    grid,
				Seed:    opts.seed,
			})
			if err != nil {
				return err
			}

			return dose.WriteCSV(cmd.OutOrStdout(), ds)
		},
	}

	f := cmd.Flags()
	f.Float64SliceVar(&opts.ic50, "ic50", opts.ic50, "True IC50 of each drug")
	f.Float64Var(&opts.beta, "beta", opts.beta, "True response amplitude")
	f.Float64Var(&opts.noise, "noise", opts.noise, "Standard deviation of the measurement noise")
	f.Uint64Var(&opts.seed, "seed", opts.seed, "Random seed")
	f.Float64Var(&opts.coarseMax, "coarse-max", opts.coarseMax, "Upper end of the coarse concentration sweep")
	f.IntVar(&opts.coarsePoints, "coarse-points", opts.coarsePoints, "Points in the coarse sweep")
	f.Float64Var(&opts.fineWidth, "fine-width", opts.fineWidth, "Half width of the refinement window around each IC50")
	f.IntVar(&opts.finePoints, "fine-points", opts.finePoints, "Points in each refinement window")

	return cmd
}
