// Package errs defines the error taxonomy shared by the ic50 packages.
//
// Two classes of failure exist:
//
//   - Input errors: the data or configuration handed to a component is invalid
//     (a drug group without observations, a negative concentration, a malformed
//     CSV row). They are raised before any sampling starts.
//   - Numerical errors: a log density evaluated to NaN or +Inf. Inside the sampler
//     they are converted to rejected proposals and never escape; they are surfaced
//     as errors only by checked evaluation helpers.
//
// Convergence problems are not errors at all; see sampler.Warning.
//
// Use errors.Is with ErrInput / ErrNumerical, or the IsInput / IsNumerical helpers,
// to classify an error regardless of how deeply it was wrapped.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for classification with errors.Is.
var (
	ErrInput     = errors.New("invalid input")
	ErrNumerical = errors.New("numerical error")
)

// InputError describes invalid data or configuration.
type InputError struct {
	// Field names the offending field or option (e.g. "concentration").
	Field string
	// Index is the zero-based record index, or -1 when not applicable.
	Index int
	// Drug is the drug index involved, or -1 when not applicable.
	Drug int
	// Reason is a short human-readable explanation.
	Reason string
}

// Error implements the error interface.
func (e *InputError) Error() string {
	var sb strings.Builder
	sb.WriteString("invalid input")
	if e.Field != "" {
		sb.WriteString(" ")
		sb.WriteString(e.Field)
	}
	if e.Index >= 0 {
		fmt.Fprintf(&sb, " at record %d", e.Index)
	}
	if e.Drug >= 0 {
		fmt.Fprintf(&sb, " (drug %d)", e.Drug)
	}
	if e.Reason != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Reason)
	}

	return sb.String()
}

// Unwrap returns ErrInput so that errors.Is(err, ErrInput) holds.
func (e *InputError) Unwrap() error {
	return ErrInput
}

// Input creates an InputError that is not tied to a record or a drug.
func Input(field, format string, args ...any) error {
	return &InputError{Field: field, Index: -1, Drug: -1, Reason: fmt.Sprintf(format, args...)}
}

// InputAt creates an InputError for the record at index.
func InputAt(field string, index int, format string, args ...any) error {
	return &InputError{Field: field, Index: index, Drug: -1, Reason: fmt.Sprintf(format, args...)}
}

// InputForDrug creates an InputError for a drug group.
func InputForDrug(field string, drug int, format string, args ...any) error {
	return &InputError{Field: field, Index: -1, Drug: drug, Reason: fmt.Sprintf(format, args...)}
}

// NumericalError reports a non-finite value produced by a numerical routine.
type NumericalError struct {
	// Op names the computation (e.g. "log density").
	Op string
	// Value is the offending result.
	Value float64
}

// Error implements the error interface.
func (e *NumericalError) Error() string {
	return fmt.Sprintf("numerical error in %s: result %v", e.Op, e.Value)
}

// Unwrap returns ErrNumerical so that errors.Is(err, ErrNumerical) holds.
func (e *NumericalError) Unwrap() error {
	return ErrNumerical
}

// Numerical creates a NumericalError.
func Numerical(op string, value float64) error {
	return &NumericalError{Op: op, Value: value}
}

// IsInput reports whether err is an input error.
func IsInput(err error) bool {
	return err != nil && errors.Is(err, ErrInput)
}

// IsNumerical reports whether err is a numerical error.
func IsNumerical(err error) bool {
	return err != nil && errors.Is(err, ErrNumerical)
}
