// Package regression fits the logistic-decay dose-response curve to a single
// drug's observations by cheap closed-form methods.
//
// The fits are not the estimate the caller is after; they provide the starting
// point for the posterior mode search, where a poor start would leave the
// optimizer stranded on the flat tails of the curve.
//
// # Methods
//
// Three candidate fits are computed and ranked by R² on the response scale:
//
//   - **Logit**: linearizes ln(beta/y - 1) = slope*(c - ic50) and solves by
//     ordinary least squares, estimating both the slope and the IC50
//   - **UnitSlope**: the same linearization with the slope fixed at 1, which
//     matches the Bayesian model; the IC50 is the mean of c - ln(beta/y - 1)
//   - **HalfMax**: a step-function fit locating the concentration where the
//     response crosses beta/2; it needs no points strictly inside (0, beta)
//     and therefore always succeeds
//
// The amplitude beta is estimated from the responses at the lowest
// concentrations unless fixed with WithBeta.
//
// # Usage
//
//	res, err := regression.Analyze(conc, resp)
//	if err != nil {
//	    return err
//	}
//	best := res.BestFit
//	fmt.Printf("%s: IC50=%.2f (R²=%.4f)\n", best.Method, best.IC50, best.RSquared)
//
//	for _, m := range res.AllModels {
//	    fmt.Println(m)
//	}
package regression
