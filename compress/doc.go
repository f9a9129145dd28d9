// Package compress provides the codecs that shrink packed trace columns.
//
// A packed column is first Gorilla-encoded (see internal/encoding) and then
// optionally passed through one of these general-purpose codecs:
//   - None: keep the Gorilla bytes as they are
//   - Zstd: best ratio, slowest to pack
//   - S2: balanced
//   - LZ4: fastest to unpack
//
// Packing happens once after sampling while reads happen many times during
// summarization, so codecs favour cheap decompression. All codecs are stateless
// values and safe for concurrent use.
package compress
