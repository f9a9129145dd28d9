package cli

import (
	"github.com/spf13/cobra"

	"github.com/arloliu/ic50/internal/config"
	"github.com/arloliu/ic50/synth"
)

func newDemoCommand(root *rootOptions) *cobra.Command {
	cfg := config.Default()

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Simulate the reference scenario and recover its IC50s",
		Long: `Demo generates three drugs with IC50s 42, 13 and 88, fits them and prints the
recovered values next to the truth.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sc := synth.DefaultConfig()
			ds, err := synth.Generate(sc)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			return runFit(cmd, root, &cfg, ds, sc.IC50)
		},
	}

	f := cmd.Flags()
	f.IntVar(&cfg.Sampler.Draws, "draws", cfg.Sampler.Draws, "Iterations per chain, warm-up included")
	f.IntVar(&cfg.Sampler.Burn, "burn", cfg.Sampler.Burn, "Warm-up iterations per chain")
	f.IntVar(&cfg.Sampler.Chains, "chains", cfg.Sampler.Chains, "Number of chains")
	f.Uint64Var(&cfg.Sampler.Seed, "seed", cfg.Sampler.Seed, "Random seed")

	return cmd
}
