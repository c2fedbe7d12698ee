package protocol

import "fmt"

// Option holds a value that is either present or absent. The zero value is
// absent.
type Option[T any] struct {
	value T
	ok    bool
}

// Some returns a present option.
func Some[T any](v T) Option[T] { return Option[T]{value: v, ok: true} }

// None returns an absent option.
func None[T any]() Option[T] { return Option[T]{} }

// Valid reports whether a value is present.
func (o Option[T]) Valid() bool { return o.ok }

// Get returns the value, or ErrInvalidState when absent.
func (o Option[T]) Get() (T, error) {
	if !o.ok {
		var zero T
		return zero, fmt.Errorf("option not set: %w", ErrInvalidState)
	}
	return o.value, nil
}

// Or returns the value, or def when absent.
func (o Option[T]) Or(def T) T {
	if !o.ok {
		return def
	}
	return o.value
}

func (o Option[T]) String() string {
	if !o.ok {
		return "<none>"
	}
	return fmt.Sprint(o.value)
}
