// Package encoding implements the column encodings used to hold MCMC trace
// columns compactly in memory.
//
// Gorilla XOR encoding is the default. Consecutive draws of a random-walk
// Metropolis chain repeat exactly whenever a proposal is rejected, and
// accepted moves change only the low mantissa bits, which is the access
// pattern Gorilla was designed for: an unchanged value costs a single bit.
// See https://www.vldb.org/pvldb/vol8/p1816-teller.pdf for algorithm details.
//
// The raw encoding stores each value as 8 little-endian bytes and leaves all
// size reduction to the compression codec.
package encoding
