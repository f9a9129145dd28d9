// Package summary reduces a posterior trace to per-parameter point estimates
// and credible intervals.
//
// Summarize is a pure function of the trace: it reads the visible draws of
// every chain, pools them, and reports the posterior mean, standard deviation,
// and an interval of the requested mass. The default interval is the highest
// posterior density (HPD) interval, the narrowest interval that holds the
// requested share of draws. The equal-tailed alternative cuts the same mass
// symmetrically from both tails.
//
// Both interval kinds are widened when needed so that Lower <= Mean <= Upper.
package summary
