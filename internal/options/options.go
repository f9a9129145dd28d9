// Package options implements the generic functional option pattern used by the
// configurable ic50 components (model builder, sampler, summarizer).
package options

import "fmt"

// Option configures a target of type T.
type Option[T any] interface {
	apply(T) error
	name() string
}

// Func is a named functional option wrapping a function.
type Func[T any] struct {
	label     string
	applyFunc func(T) error
}

func (f *Func[T]) apply(target T) error {
	return f.applyFunc(target)
}

func (f *Func[T]) name() string {
	return f.label
}

// New creates a named option from a function that may fail.
// The name is used to prefix the error returned by Apply.
func New[T any](name string, fn func(T) error) *Func[T] {
	return &Func[T]{label: name, applyFunc: fn}
}

// NoError creates a named option from a function that cannot fail.
func NoError[T any](name string, fn func(T)) *Func[T] {
	return &Func[T]{
		label: name,
		applyFunc: func(target T) error {
			fn(target)
			return nil
		},
	}
}

// Validator is implemented by configuration targets that check their own
// consistency once every option has been applied.
type Validator interface {
	Validate() error
}

// Apply applies opts to target in order and stops at the first failing option.
//
// When target implements Validator, Validate is called after all options have
// been applied, so that constraints spanning several options (e.g. burn-in
// smaller than the draw count) are checked once.
//
// Parameters:
//   - target: The value being configured
//   - opts: Options applied in order
//
// Returns:
//   - error: The first option error, prefixed with the option name, or the validation error
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(target); err != nil {
			return fmt.Errorf("option %s: %w", opt.name(), err)
		}
	}

	if v, ok := any(target).(Validator); ok {
		return v.Validate()
	}

	return nil
}
