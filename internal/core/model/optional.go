package model

// Optional distinguishes a field left untouched from a field explicitly set, including set to nil.
// The zero value is Unchanged.
type Optional[T any] struct {
	value T
	set   bool
}

// SetTo returns an Optional holding v.
func SetTo[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// Unchanged returns an Optional holding nothing.
func Unchanged[T any]() Optional[T] {
	return Optional[T]{}
}

// IsSet reports whether a value was supplied.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// Get returns the value and whether it was supplied.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}
