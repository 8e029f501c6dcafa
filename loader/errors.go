package loader

import (
	"fmt"
	"io"
	"os"
)

// Location is a position within a declaration file.
type Location struct {
	File string
	Line int
	Col  int
}

func (l Location) String() string {
	if l.Line == 0 {
		return l.File
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Col)
}

// LocatedError is an error tied to a position in a declaration file.
type LocatedError struct {
	Loc Location
	Err error
}

func (e *LocatedError) Error() string { return fmt.Sprintf("%s: %v", e.Loc, e.Err) }
func (e *LocatedError) Unwrap() error { return e.Err }

// Errorf builds a LocatedError.  A %w verb in format is kept unwrappable.
func Errorf(loc Location, format string, args ...any) error {
	return &LocatedError{Loc: loc, Err: fmt.Errorf(format, args...)}
}

type ErrorCollector struct {
	// Errors for this file
	Errors []error

	// Max errors before we give up with ErrTooManyErrors
	// 0 => no limit
	MaxErrors int
}

// ErrTooManyErrors is raised through panic when MaxErrors is reached and
// recovered by the loader.
var ErrTooManyErrors = fmt.Errorf("too many errors")

func (f *ErrorCollector) HasErrors() bool {
	return len(f.Errors) > 0
}

func (f *ErrorCollector) PrintErrors() {
	f.WriteErrors(os.Stderr)
}

func (f *ErrorCollector) WriteErrors(w io.Writer) {
	for _, err := range f.Errors {
		fmt.Fprintln(w, err)
	}
}

func (i *ErrorCollector) AddErrors(errs ...error) {
	for _, err := range errs {
		i.Errors = append(i.Errors, err)
		if i.MaxErrors > 0 && len(i.Errors) >= i.MaxErrors {
			panic(ErrTooManyErrors)
		}
	}
}

// Errorf records a positioned error and returns false so callers can write
// `return c.Errorf(...)` from validation helpers.
func (i *ErrorCollector) Errorf(pos Location, format string, args ...any) bool {
	i.AddErrors(Errorf(pos, format, args...))
	return false
}

// guard recovers the panic raised by AddErrors once MaxErrors is reached.
func (i *ErrorCollector) guard() {
	if r := recover(); r != nil && r != ErrTooManyErrors {
		panic(r)
	}
}
