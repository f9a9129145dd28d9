package dose

import "math"

// Response evaluates the logistic-decay dose-response curve
//
//	beta / (1 + exp(c - ic50))
//
// without overflow. The exponent is kept non-positive by branching on the sign
// of c - ic50, so the result is finite for any finite input and equals beta/2
// at c == ic50.
func Response(c, beta, ic50 float64) float64 {
	x := c - ic50
	if x >= 0 {
		e := math.Exp(-x)
		return beta * e / (1 + e)
	}

	return beta / (1 + math.Exp(x))
}
