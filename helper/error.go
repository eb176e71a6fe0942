package helper

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Error is an error with a trace of the operations it passed through.
type Error struct {
	Original error
	Trace    []string
}

// NewError wraps err with the given operation and the calling function.
// Wrapping an *Error extends its trace instead of nesting it.
func NewError(trace string, err error) error {
	if err == nil {
		return nil
	}

	step := trace
	if pc, _, _, ok := runtime.Caller(1); ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			name := fn.Name()
			if i := strings.LastIndex(name, "/"); i >= 0 {
				name = name[i+1:]
			}
			step = fmt.Sprintf("%s (%s)", trace, name)
		}
	}

	var e *Error
	if errors.As(err, &e) {
		return &Error{
			Original: e.Original,
			Trace:    append([]string{step}, e.Trace...),
		}
	}

	return &Error{
		Original: err,
		Trace:    []string{step},
	}
}

// Error joins the trace with the original error message.
func (e *Error) Error() string {
	if len(e.Trace) == 0 {
		return e.Original.Error()
	}
	return fmt.Sprintf("%s: %s", strings.Join(e.Trace, ": "), e.Original.Error())
}

// Unwrap returns the original error so errors.Is and errors.As keep working.
func (e *Error) Unwrap() error {
	return e.Original
}
