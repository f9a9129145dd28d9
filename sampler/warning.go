package sampler

import "fmt"

// WarningKind classifies a convergence warning.
type WarningKind int

const (
	// LowESS: the effective sample size is below the configured minimum.
	LowESS WarningKind = iota + 1
	// HighRHat: split R-hat exceeds the configured maximum, or is undefined.
	HighRHat
	// LowAcceptance: the post-warm-up acceptance rate is below the lower bound.
	LowAcceptance
	// HighAcceptance: the post-warm-up acceptance rate is above the upper bound.
	HighAcceptance
	// NumericalRejections: proposals were rejected after warm-up because the
	// log density was NaN or +Inf.
	NumericalRejections
)

func (k WarningKind) String() string {
	switch k {
	case LowESS:
		return "low-ess"
	case HighRHat:
		return "high-rhat"
	case LowAcceptance:
		return "low-acceptance"
	case HighAcceptance:
		return "high-acceptance"
	case NumericalRejections:
		return "numerical-rejections"
	default:
		return "unknown"
	}
}

// Warning is a non-fatal convergence diagnostic attached to a Result.
type Warning struct {
	Kind      WarningKind
	Param     string
	Value     float64
	Threshold float64
}

func (w Warning) String() string {
	switch w.Kind {
	case LowESS:
		return fmt.Sprintf("%s: effective sample size %.0f below %.0f", w.Param, w.Value, w.Threshold)
	case HighRHat:
		return fmt.Sprintf("%s: split R-hat %.3f above %.3f", w.Param, w.Value, w.Threshold)
	case LowAcceptance:
		return fmt.Sprintf("%s: acceptance rate %.3f below %.3f", w.Param, w.Value, w.Threshold)
	case HighAcceptance:
		return fmt.Sprintf("%s: acceptance rate %.3f above %.3f", w.Param, w.Value, w.Threshold)
	case NumericalRejections:
		return fmt.Sprintf("%s: %.0f proposals rejected for non-finite log density", w.Param, w.Value)
	default:
		return fmt.Sprintf("%s: %s", w.Param, w.Kind)
	}
}

func (c *Config) warnings(diags []ParamDiagnostics) []Warning {
	var out []Warning
	for _, d := range diags {
		if d.ESS < c.MinESS {
			out = append(out, Warning{Kind: LowESS, Param: d.Name, Value: d.ESS, Threshold: c.MinESS})
		}
		if !(d.RHat <= c.MaxRHat) {
			out = append(out, Warning{Kind: HighRHat, Param: d.Name, Value: d.RHat, Threshold: c.MaxRHat})
		}
		if d.Acceptance < c.MinAcceptance {
			out = append(out, Warning{Kind: LowAcceptance, Param: d.Name, Value: d.Acceptance, Threshold: c.MinAcceptance})
		}
		if d.Acceptance > c.MaxAcceptance {
			out = append(out, Warning{Kind: HighAcceptance, Param: d.Name, Value: d.Acceptance, Threshold: c.MaxAcceptance})
		}
		if d.Numerical > 0 {
			out = append(out, Warning{Kind: NumericalRejections, Param: d.Name, Value: float64(d.Numerical)})
		}
	}

	return out
}
