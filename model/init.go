package model

import (
	"fmt"
	"math"

	"github.com/arloliu/ic50/dose"
	"github.com/arloliu/ic50/regression"
)

// InitialPoint returns a data-driven unconstrained starting point for the
// posterior mode search.
//
// Each drug's amplitude and IC50 come from the best closed-form regression fit
// of its observations; the noise starts at the residual RMSE of the unit-slope
// curve through those values, floored so its logarithm stays finite on
// noiseless data.
func (m *Model) InitialPoint(opts ...regression.Option) ([]float64, error) {
	x := make([]float64, m.Dim())
	for g := range m.drugs {
		grp := &m.groups[g]
		fit, err := regression.FitLogistic(grp.Conc, grp.Resp, opts...)
		if err != nil {
			return nil, fmt.Errorf("initial point for drug %d: %w", g, err)
		}

		ss := 0.0
		for i, c := range grp.Conc {
			r := grp.Resp[i] - dose.Response(c, fit.Beta, fit.IC50)
			ss += r * r
		}
		noise := math.Sqrt(ss / float64(grp.Len()))
		noise = math.Max(noise, 1e-3*math.Max(math.Abs(fit.Beta), 1))

		s := g * ParamsPerDrug
		x[s] = fit.Beta
		x[s+1] = fit.IC50
		x[s+2] = math.Log(noise)
	}

	return x, nil
}
