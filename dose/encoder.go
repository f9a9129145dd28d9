package dose

import "slices"

// Encoder maps categorical drug labels to dense zero-based indices in
// first-seen order. The zero value is not usable; call NewEncoder.
type Encoder struct {
	index  map[string]int
	labels []string
}

// NewEncoder creates an empty label encoder.
func NewEncoder() *Encoder {
	return &Encoder{index: make(map[string]int)}
}

// Encode returns the index of label, assigning the next free index the first
// time a label is seen.
func (e *Encoder) Encode(label string) int {
	if idx, ok := e.index[label]; ok {
		return idx
	}

	idx := len(e.labels)
	e.index[label] = idx
	e.labels = append(e.labels, label)

	return idx
}

// Lookup returns the index of a known label.
func (e *Encoder) Lookup(label string) (int, bool) {
	idx, ok := e.index[label]
	return idx, ok
}

// Label returns the label assigned to idx.
func (e *Encoder) Label(idx int) (string, bool) {
	if idx < 0 || idx >= len(e.labels) {
		return "", false
	}

	return e.labels[idx], true
}

// Labels returns all labels ordered by index.
func (e *Encoder) Labels() []string {
	return slices.Clone(e.labels)
}

// Len returns the number of distinct labels.
func (e *Encoder) Len() int {
	return len(e.labels)
}
