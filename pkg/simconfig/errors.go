package simconfig

import "fmt"

// InvalidArgumentError reports a value that fails the builder's validation
// rules (bad enum value, non-positive number, out-of-range flag).
type InvalidArgumentError struct {
	Field  string
	Value  string
	Reason string
}

func (e InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// NotFoundError reports a missing rule table file.
type NotFoundError struct {
	Path string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("rules file %s not found", e.Path)
}

// FormatError reports malformed tabular rule data. Row is 1-based and counts
// non-empty records in file order.
type FormatError struct {
	Path   string
	Row    int
	Reason string
}

func (e FormatError) Error() string {
	return fmt.Sprintf("%s: row %d: %s", e.Path, e.Row, e.Reason)
}

// InvalidStateError reports an operation attempted in a state that forbids it,
// such as exporting an empty rule list or mutating a disabled module.
type InvalidStateError struct {
	Op     string
	Reason string
}

func (e InvalidStateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}
