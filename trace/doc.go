// Package trace stores the posterior draws produced by a sampler.
//
// A Trace holds one column of float64 draws per parameter and chain, in draw
// order and including the warm-up prefix. Discard returns a view without that
// prefix; the view shares storage with its parent.
//
// Long multi-chain traces can be packed in memory: Pack Gorilla-encodes every
// column and optionally compresses it with one of the compress codecs. Reads
// decode transparently, so callers never observe whether a trace is packed.
// Nothing is written outside the process.
//
// Concurrency: different chains may be appended from different goroutines.
// A chain itself must not be appended concurrently, and Pack must not run
// concurrently with any other method.
package trace
