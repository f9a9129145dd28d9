// Package dose holds the dose-response observation records consumed by the
// IC50 model, the categorical drug label encoder and the CSV input boundary.
//
// Observations are validated when they are constructed or loaded, so that
// downstream packages can assume every drug index is non-negative, every
// concentration is finite and non-negative, and every measurement is finite.
package dose
