package opk

import "fmt"

// State tags the outcome of a single pull from a container stream.
type State uint8

const (
	// StateItem means a value is available.
	StateItem State = iota
	// StateDone means the stream ended cleanly.
	StateDone
	// StateFailed means the stream broke; Err holds the reason.
	StateFailed
)

// String returns a human-readable state name
func (s State) String() string {
	switch s {
	case StateItem:
		return "item"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Result is one pull from a document or pair stream.
type Result[T any] struct {
	Value T
	State State
	Err   error
}

// Item wraps an available value.
func Item[T any](v T) Result[T] {
	return Result[T]{Value: v, State: StateItem}
}

// Done marks the clean end of a stream.
func Done[T any]() Result[T] {
	return Result[T]{State: StateDone}
}

// Failed marks a broken stream. The error is wrapped in ErrCorruptMetadata
// unless it already is one.
func Failed[T any](err error) Result[T] {
	return Result[T]{State: StateFailed, Err: corrupt(err)}
}

// Pair is one key/value entry of a metadata document.
type Pair struct {
	Key   string
	Value string
}
