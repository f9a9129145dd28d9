// Package model declares the per-drug Bayesian logistic-decay model.
//
// For each drug g the model has three parameters with independent priors:
//
//	beta[g]  ~ Normal(0, 100²)
//	ic50[g]  ~ Normal(0, 100²)
//	noise[g] ~ HalfCauchy(100²)
//
// and every observation i of drug g(i) is modelled as
//
//	y[i] ~ Normal(beta[g(i)] / (1 + exp(c[i] - ic50[g(i)])), noise[g(i)])
//
// A Model is pure structure: it evaluates the log posterior but never samples.
// Samplers work in an unconstrained space where noise is replaced by its
// logarithm; Constrain and Unconstrain convert between the two, and the log
// density includes the Jacobian of that change.
//
// Parameter vectors are laid out drug-major: slot 3g holds beta[g], 3g+1 holds
// ic50[g] and 3g+2 holds noise[g] (or its logarithm). The posterior factorizes
// over drugs, which Blocks and BlockLogDensity expose so that a sampler only
// re-evaluates the drug whose parameters changed.
package model
