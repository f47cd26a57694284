package mdbx

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/keeldb/mdbx/internal/capi"
)

var (
	ErrEnvClosed        = errors.New("mdbx: environment is closed")
	ErrTxnDone          = errors.New("mdbx: transaction is finished")
	ErrCursorClosed     = errors.New("mdbx: cursor is closed")
	ErrSequenceOverflow = errors.New("mdbx: sequence increment overflows")
	ErrIterArgs         = errors.New("mdbx: start key and from-next are mutually exclusive")
)

// Error is a failure reported by the storage engine. Code is the engine's
// result code verbatim; negative codes are engine-defined, positive codes
// are inherited from the operating system.
type Error struct {
	Code int
	Desc string
}

func (e *Error) Error() string {
	if e.Desc != "" {
		return fmt.Sprintf("mdbx: %s", e.Desc)
	}
	return fmt.Sprintf("mdbx: engine error %d", e.Code)
}

// Unwrap exposes OS-inherited codes as unix.Errno so callers can match them
// with errors.Is.
func (e *Error) Unwrap() error {
	if e.Code > 0 {
		return unix.Errno(e.Code)
	}
	return nil
}

// IsBusy reports whether err is the engine's busy condition, e.g. a close
// refused while dependents are still live elsewhere, or a failed try-mode
// write transaction.
func IsBusy(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == capi.Busy
}

// IsNotFound reports whether err carries one of the engine's absence codes.
// The data operations translate those into empty results themselves; this
// helps callers of paths that don't, such as opening a missing named map.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && absent(e.Code)
}

// IsKeyExist reports whether err is the engine's key-exists rejection from a
// no-overwrite or no-dup-data put.
func IsKeyExist(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == capi.KeyExist
}

// apiErr converts a result code into an error. Success and ResultTrue are
// not failures and map to nil; absence codes are not translated here since
// lookups report them as empty results instead.
func apiErr(api capi.API, code int) error {
	if code == capi.Success || code == capi.ResultTrue {
		return nil
	}
	desc := api.StrError(code)
	if desc == "" && code > 0 {
		desc = unix.Errno(code).Error()
	}
	return &Error{Code: code, Desc: desc}
}

// absent reports whether code means "no matching entry": not-found from
// lookups, no-data from an unpositioned cursor.
func absent(code int) bool {
	return code == capi.NotFound || code == capi.ENoData
}
