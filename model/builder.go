package model

import (
	"errors"

	"github.com/arloliu/ic50/dose"
	"github.com/arloliu/ic50/errs"
	"github.com/arloliu/ic50/internal/options"
)

// Builder collects observations and declares a Model from them.
type Builder struct {
	cfg Config
	obs []dose.Observation
}

// NewBuilder creates a Builder with the given options applied over DefaultConfig.
func NewBuilder(opts ...Option) (*Builder, error) {
	cfg := DefaultConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	return &Builder{cfg: cfg}, nil
}

// Add appends observations. Each is validated; on error nothing is added.
func (b *Builder) Add(obs ...dose.Observation) error {
	if len(obs) == 0 {
		return nil
	}
	if err := (dose.Dataset{Observations: obs}).Validate(); err != nil {
		var ie *errs.InputError
		if errors.As(err, &ie) && ie.Index >= 0 {
			ie.Index += len(b.obs)
		}

		return err
	}
	b.obs = append(b.obs, obs...)

	return nil
}

// AddDataset appends a dataset and adopts its labels unless WithNames was used.
func (b *Builder) AddDataset(ds dose.Dataset) error {
	if err := b.Add(ds.Observations...); err != nil {
		return err
	}
	if len(b.cfg.Labels) == 0 && len(ds.Labels) > 0 {
		b.cfg.Labels = append([]string(nil), ds.Labels...)
	}

	return nil
}

// Build resolves the drug groups and returns the declared Model.
//
// Without WithDrugCount the drug count is the larger of the number of labels
// and the largest drug index plus one, so a labelled drug without data is
// reported rather than dropped.
//
// Returns:
//   - *Model: The declared model, one parameter block per drug
//   - error: errs.InputError when there are no observations, when a drug index
//     is outside the drug count, or when any drug in [0, drugs) has no
//     observations, since its parameters would be identified by the prior alone
func (b *Builder) Build() (*Model, error) {
	if len(b.obs) == 0 {
		return nil, errs.Input("observations", "model has no observations")
	}

	drugs := b.cfg.Drugs
	if drugs == 0 {
		drugs = (dose.Dataset{Observations: b.obs, Labels: b.cfg.Labels}).Drugs()
	}

	m := &Model{
		drugs:      drugs,
		groups:     make([]Group, drugs),
		slots:      make([]int, len(b.obs)),
		obs:        append([]dose.Observation(nil), b.obs...),
		betaPrior:  b.cfg.BetaPrior,
		ic50Prior:  b.cfg.IC50Prior,
		noisePrior: b.cfg.NoisePrior,
	}

	for i, o := range b.obs {
		if o.Drug >= drugs {
			return nil, errs.InputAt("drug", i, "drug index %d out of range [0, %d)", o.Drug, drugs)
		}
		g := &m.groups[o.Drug]
		g.Index = append(g.Index, i)
		g.Conc = append(g.Conc, o.Concentration)
		g.Resp = append(g.Resp, o.Measurement)
		m.slots[i] = o.Drug * ParamsPerDrug
	}

	for d := range m.groups {
		if len(m.groups[d].Index) == 0 {
			return nil, errs.InputForDrug("observations", d, "drug has no observations")
		}
		m.groups[d].Drug = d
		m.groups[d].Label = (dose.Dataset{Labels: b.cfg.Labels}).Label(d)
	}

	m.names = make([]string, 0, drugs*ParamsPerDrug)
	for d := range drugs {
		for _, p := range paramKinds {
			m.names = append(m.names, ParamName(p, d))
		}
	}

	b.cfg.Logger.Debug("model declared",
		"drugs", drugs,
		"observations", len(b.obs),
		"parameters", len(m.names),
	)

	return m, nil
}
