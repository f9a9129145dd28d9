// Package sampler is a random-walk Metropolis sampling facility for
// unnormalized log densities.
//
// The sampler is generic over a Target. When the target also implements
// BlockedTarget, the log density is treated as a sum of independent block
// terms and a proposal only re-evaluates the block it touches. Targets that
// implement Transformer have their draws recorded in constrained space.
//
// Each chain updates one coordinate at a time with a Gaussian proposal whose
// scale is tuned during warm-up from the acceptance rate of the last tuning
// window, and frozen afterwards so the retained draws come from a fixed
// Markov kernel. A proposal whose log density is NaN or +Inf is rejected and
// counted as a numerical rejection; it never aborts the run.
//
// Convergence problems are reported as Warnings on the Result, never as
// errors.
package sampler
