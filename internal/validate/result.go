package validate

// Result is an immutable verdict on a single value. Reason is empty whenever
// Valid is true; an invalid result may also carry no reason, which marks
// input the user has not typed yet rather than input that is wrong.
type Result[T any] struct {
	Valid  bool
	Reason string
	Data   T
}

// Success returns a valid result for v.
func Success[T any](v T) Result[T] {
	return Result[T]{Valid: true, Data: v}
}

// Failure returns an invalid result for v with an optional reason.
func Failure[T any](reason string, v T) Result[T] {
	return Result[T]{Valid: false, Reason: reason, Data: v}
}
