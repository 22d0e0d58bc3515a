package builtins

import "fmt"

// ArgumentCountError reports a builtin invoked with the wrong number of
// arguments. Want is a human description ("exactly 1", "1 or 2") because a
// few builtins accept a small range.
type ArgumentCountError struct {
	Builtin string
	Want    string
	Got     int
}

func (e *ArgumentCountError) Error() string {
	return fmt.Sprintf("%s() expects %s argument(s), got %d", e.Builtin, e.Want, e.Got)
}

// ArgumentTypeError reports an argument whose dynamic type a builtin does
// not accept. Index is zero-based.
type ArgumentTypeError struct {
	Builtin string
	Index   int
	Want    string
	Got     string
}

func (e *ArgumentTypeError) Error() string {
	return fmt.Sprintf("%s() argument %d must be %s, got %s", e.Builtin, e.Index+1, e.Want, e.Got)
}

func countError(builtin, want string, got int) error {
	return &ArgumentCountError{Builtin: builtin, Want: want, Got: got}
}

func typeError(builtin string, index int, want, got string) error {
	return &ArgumentTypeError{Builtin: builtin, Index: index, Want: want, Got: got}
}
