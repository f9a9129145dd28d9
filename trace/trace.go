package trace

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/arloliu/ic50/compress"
	"github.com/arloliu/ic50/format"
	"github.com/arloliu/ic50/internal/collision"
	"github.com/arloliu/ic50/internal/encoding"
)

// ErrPacked is returned when appending to a packed trace.
var ErrPacked = errors.New("trace is packed")

// ParamID returns the stable 64-bit ID of a parameter name.
func ParamID(name string) uint64 {
	return collision.ID(name)
}

// column holds the draws of one parameter in one chain.
type column struct {
	dense  []float64
	packed []byte
	count  int
}

type store struct {
	names        []string
	ids          map[uint64]int
	hasCollision bool

	chains   [][]column
	encoding format.EncodingType
	codec    format.CompressionType
	stats    compress.Stats
}

// Trace is a view over per-chain parameter draws starting at an offset.
type Trace struct {
	s      *store
	offset int
}

// Sample is one draw of every parameter.
type Sample struct {
	Chain  int
	Draw   int
	Values []float64
}

// New creates an empty trace for the given parameter names and chain count.
func New(names []string, chains int) (*Trace, error) {
	if chains < 1 {
		return nil, fmt.Errorf("trace needs at least one chain, got %d", chains)
	}
	if len(names) == 0 {
		return nil, errors.New("trace needs at least one parameter")
	}

	tr := collision.NewTracker()
	s := &store{
		ids:    make(map[uint64]int, len(names)),
		chains: make([][]column, chains),
	}
	for i, name := range names {
		id, err := tr.Track(name)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		if _, taken := s.ids[id]; !taken {
			s.ids[id] = i
		}
	}
	s.names = slices.Clone(tr.Names())
	s.hasCollision = tr.HasCollision()

	for c := range s.chains {
		s.chains[c] = make([]column, len(names))
	}

	return &Trace{s: s}, nil
}

// Reserve preallocates room for n draws per chain.
func (t *Trace) Reserve(n int) {
	for _, cols := range t.s.chains {
		for p := range cols {
			cols[p].dense = slices.Grow(cols[p].dense, n)
		}
	}
}

// Append records one draw of every parameter for chain.
func (t *Trace) Append(chain int, values []float64) error {
	if t.s.codec != 0 {
		return ErrPacked
	}
	if chain < 0 || chain >= len(t.s.chains) {
		return fmt.Errorf("chain %d out of range [0, %d)", chain, len(t.s.chains))
	}
	cols := t.s.chains[chain]
	if len(values) != len(cols) {
		return fmt.Errorf("draw has %d values, trace has %d parameters", len(values), len(cols))
	}

	for p, v := range values {
		cols[p].dense = append(cols[p].dense, v)
		cols[p].count++
	}

	return nil
}

// Names returns the parameter names.
func (t *Trace) Names() []string {
	return slices.Clone(t.s.names)
}

// Chains returns the number of chains.
func (t *Trace) Chains() int {
	return len(t.s.chains)
}

// Offset returns the number of leading draws per chain hidden by this view.
func (t *Trace) Offset() int {
	return t.offset
}

// Len returns the number of visible draws per chain, the minimum over chains.
func (t *Trace) Len() int {
	n := -1
	for _, cols := range t.s.chains {
		if len(cols) == 0 {
			continue
		}
		if n < 0 || cols[0].count < n {
			n = cols[0].count
		}
	}

	return max(0, n-t.offset)
}

// Discard returns a view without the first n draws of each chain, on top of
// any draws this view already hides.
func (t *Trace) Discard(n int) *Trace {
	return &Trace{s: t.s, offset: t.offset + max(0, n)}
}

// Index returns the position of a parameter name.
func (t *Trace) Index(name string) (int, bool) {
	if !t.s.hasCollision {
		i, ok := t.s.ids[ParamID(name)]
		return i, ok
	}

	i := slices.Index(t.s.names, name)

	return i, i >= 0
}

// ChainValues returns the visible draws of parameter p in chain c. The
// result is a fresh slice.
func (t *Trace) ChainValues(c, p int) ([]float64, error) {
	if c < 0 || c >= len(t.s.chains) {
		return nil, fmt.Errorf("chain %d out of range [0, %d)", c, len(t.s.chains))
	}
	if p < 0 || p >= len(t.s.names) {
		return nil, fmt.Errorf("parameter %d out of range [0, %d)", p, len(t.s.names))
	}

	n := t.Len()
	if n == 0 {
		return []float64{}, nil
	}

	all, err := t.s.read(c, p)
	if err != nil {
		return nil, err
	}

	return slices.Clone(all[t.offset : t.offset+n]), nil
}

// Values returns the visible draws of a named parameter with all chains
// concatenated in chain order.
func (t *Trace) Values(name string) ([]float64, error) {
	p, ok := t.Index(name)
	if !ok {
		return nil, fmt.Errorf("unknown parameter %q", name)
	}

	out := make([]float64, 0, t.Len()*t.Chains())
	for c := range t.s.chains {
		v, err := t.ChainValues(c, p)
		if err != nil {
			return nil, err
		}
		out = append(out, v...)
	}

	return out, nil
}

// At returns draw d (relative to the view) of chain c.
func (t *Trace) At(c, d int) (Sample, error) {
	if d < 0 || d >= t.Len() {
		return Sample{}, fmt.Errorf("draw %d out of range [0, %d)", d, t.Len())
	}

	s := Sample{Chain: c, Draw: d, Values: make([]float64, len(t.s.names))}
	for p := range t.s.names {
		v, err := t.ChainValues(c, p)
		if err != nil {
			return Sample{}, err
		}
		s.Values[p] = v[d]
	}

	return s, nil
}

// Samples iterates over the visible draws, chain by chain. Iteration stops
// early if a packed column cannot be decoded.
func (t *Trace) Samples() iter.Seq[Sample] {
	return func(yield func(Sample) bool) {
		n := t.Len()
		for c := range t.s.chains {
			cols := make([][]float64, len(t.s.names))
			for p := range cols {
				v, err := t.ChainValues(c, p)
				if err != nil {
					return
				}
				cols[p] = v
			}

			for d := range n {
				vals := make([]float64, len(cols))
				for p := range cols {
					vals[p] = cols[p][d]
				}
				if !yield(Sample{Chain: c, Draw: d, Values: vals}) {
					return
				}
			}
		}
	}
}

// Packed reports whether the trace has been packed, and with which codec.
func (t *Trace) Packed() (format.CompressionType, bool) {
	return t.s.codec, t.s.codec != 0
}

// Pack Gorilla-encodes every column and compresses it with codec, releasing
// the dense storage. Packing applies to the whole trace, not just this view,
// and can be done once.
func (t *Trace) Pack(ct format.CompressionType) (compress.Stats, error) {
	return t.PackWith(format.TypeGorilla, ct)
}

// PackWith is Pack with an explicit column encoding.
func (t *Trace) PackWith(et format.EncodingType, ct format.CompressionType) (compress.Stats, error) {
	if t.s.codec != 0 {
		return t.s.stats, ErrPacked
	}
	codec, err := compress.GetCodec(ct)
	if err != nil {
		return compress.Stats{}, err
	}

	stats := compress.Stats{Algorithm: ct}
	packed := make([][][]byte, len(t.s.chains))
	for c, cols := range t.s.chains {
		packed[c] = make([][]byte, len(cols))
		for p := range cols {
			enc, err := encoding.NewEncoder(et)
			if err != nil {
				return compress.Stats{}, err
			}
			enc.WriteSlice(cols[p].dense)
			data, err := codec.Compress(enc.Finish())
			if err != nil {
				return compress.Stats{}, fmt.Errorf("pack chain %d parameter %s: %w", c, t.s.names[p], err)
			}
			packed[c][p] = data
			stats.RawSize += int64(8 * cols[p].count)
			stats.PackedSize += int64(len(data))
		}
	}

	for c, cols := range t.s.chains {
		for p := range cols {
			cols[p].packed = packed[c][p]
			cols[p].dense = nil
		}
	}
	t.s.encoding = et
	t.s.codec = ct
	t.s.stats = stats

	return stats, nil
}

// read returns every draw of a column, decoding it if packed. The result
// must not be modified when the trace is dense.
func (s *store) read(c, p int) ([]float64, error) {
	col := &s.chains[c][p]
	if s.codec == 0 {
		return col.dense, nil
	}

	codec, err := compress.GetCodec(s.codec)
	if err != nil {
		return nil, err
	}
	raw, err := codec.Decompress(col.packed)
	if err != nil {
		return nil, fmt.Errorf("unpack chain %d parameter %s: %w", c, s.names[p], err)
	}

	return encoding.Decode(s.encoding, make([]float64, 0, col.count), raw, col.count)
}
