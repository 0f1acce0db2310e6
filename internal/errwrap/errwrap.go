// Package errwrap contains small error helpers shared across the engine.
package errwrap

import (
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// Wrapf adds a new error onto an existing chain of errors. If err is nil,
// the result is nil, so this is safe to call unconditionally.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// Append safely appends an error onto an existing one. A nil reterr or a
// nil err is handled without needing to be special-cased by the caller, so
// this is safe to use as `reterr = errwrap.Append(reterr, err)` in a loop
// over a worker crew's per-port results.
func Append(reterr, err error) error {
	if reterr == nil {
		return err
	}
	if err == nil {
		return reterr
	}
	return multierror.Append(reterr, err)
}

// String returns the error's message, or "" for a nil error.
func String(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
