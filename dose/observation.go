package dose

import (
	"iter"
	"math"
	"strconv"

	"github.com/arloliu/ic50/errs"
)

// Observation is a single measured response of one drug at one concentration.
type Observation struct {
	// Drug is the dense zero-based drug index.
	Drug int
	// Concentration is the applied dose. Zero is valid.
	Concentration float64
	// Measurement is the observed response.
	Measurement float64
}

// NewObservation creates a validated Observation.
func NewObservation(drug int, concentration, measurement float64) (Observation, error) {
	o := Observation{Drug: drug, Concentration: concentration, Measurement: measurement}
	if err := o.validate(-1); err != nil {
		return Observation{}, err
	}

	return o, nil
}

func (o Observation) validate(index int) error {
	switch {
	case o.Drug < 0:
		return errs.InputAt("drug", index, "drug index must be >= 0, got %d", o.Drug)
	case math.IsNaN(o.Concentration) || math.IsInf(o.Concentration, 0):
		return errs.InputAt("concentration", index, "must be finite, got %v", o.Concentration)
	case o.Concentration < 0:
		return errs.InputAt("concentration", index, "must be >= 0, got %g", o.Concentration)
	case math.IsNaN(o.Measurement) || math.IsInf(o.Measurement, 0):
		return errs.InputAt("measurement", index, "must be finite, got %v", o.Measurement)
	}

	return nil
}

// Dataset is an ordered collection of observations with optional drug labels.
//
// Repeated concentrations and repeated drugs are expected; no uniqueness is
// enforced.
type Dataset struct {
	Observations []Observation
	// Labels maps drug index to a display label. It may be shorter than the
	// number of drugs, in which case the index itself is used.
	Labels []string
}

// Len returns the number of observations.
func (d Dataset) Len() int {
	return len(d.Observations)
}

// Drugs returns the number of drug groups implied by the data: the largest
// drug index plus one, or the number of labels if that is larger.
func (d Dataset) Drugs() int {
	n := len(d.Labels)
	for _, o := range d.Observations {
		if o.Drug+1 > n {
			n = o.Drug + 1
		}
	}

	return n
}

// Validate checks every observation and reports the first invalid record.
func (d Dataset) Validate() error {
	if len(d.Observations) == 0 {
		return errs.Input("observations", "dataset is empty")
	}
	for i, o := range d.Observations {
		if err := o.validate(i); err != nil {
			return err
		}
	}

	return nil
}

// All iterates over the observations with their record index.
func (d Dataset) All() iter.Seq2[int, Observation] {
	return func(yield func(int, Observation) bool) {
		for i, o := range d.Observations {
			if !yield(i, o) {
				return
			}
		}
	}
}

// Columns returns the concentration and measurement columns of one drug in
// record order.
func (d Dataset) Columns(drug int) (conc, resp []float64) {
	for _, o := range d.Observations {
		if o.Drug == drug {
			conc = append(conc, o.Concentration)
			resp = append(resp, o.Measurement)
		}
	}

	return conc, resp
}

// Label returns the display label of a drug.
func (d Dataset) Label(drug int) string {
	if drug >= 0 && drug < len(d.Labels) && d.Labels[drug] != "" {
		return d.Labels[drug]
	}

	return "drug " + strconv.Itoa(drug)
}
