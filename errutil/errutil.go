// Copyright (C) 2021-2025 Chronicle Labs, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package errutil defines the error taxonomy shared by all stream packages.
//
// Every failure is classified into exactly one of three kinds:
//
//   - KindIO: local filesystem failures (missing file, permission denied,
//     unexpected end of data).
//   - KindNetwork: failures originating from a remote transport or a remote
//     service call.
//   - KindNotSupported: unrecognized schemes, write-unsupported codecs and
//     situations where a required size cannot be determined.
//
// Errors are matched with errors.Is against ErrIO, ErrNetwork and
// ErrNotSupported, or inspected with errors.As for *Error.
package errutil

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind is the category of an error.
type Kind int

const (
	KindIO Kind = iota + 1
	KindNetwork
	KindNotSupported
)

// String implements the fmt.Stringer interface.
func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindNetwork:
		return "network"
	case KindNotSupported:
		return "not supported"
	default:
		return "unknown"
	}
}

// Sentinels used with errors.Is to match a kind regardless of the
// operation or the underlying cause.
var (
	ErrIO           = &Error{Kind: KindIO}
	ErrNetwork      = &Error{Kind: KindNetwork}
	ErrNotSupported = &Error{Kind: KindNotSupported}
)

// Error is a classified error. The underlying cause is kept intact and is
// reachable through errors.Unwrap.
type Error struct {
	Kind     Kind
	Op       string // operation, e.g. "open", "head", "cache"
	Location string // location the operation was performed on
	Msg      string // optional description, used when Err is nil
	Err      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	b.WriteString(" error")
	if e.Op != "" {
		b.WriteString(": ")
		b.WriteString(e.Op)
	}
	if e.Location != "" {
		b.WriteString(" ")
		b.WriteString(e.Location)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a sentinel of the same kind. Only targets
// without an operation, location and cause are treated as sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Op != "" || t.Location != "" || t.Msg != "" || t.Err != nil {
		return e == t
	}
	return e.Kind == t.Kind
}

// IOError classifies err as a local I/O failure. If err is already
// classified, it is returned unchanged.
func IOError(op, location string, err error) error {
	return classify(KindIO, op, location, err)
}

// NetworkError classifies err as a remote transport failure. If err is
// already classified, it is returned unchanged.
func NetworkError(op, location string, err error) error {
	return classify(KindNetwork, op, location, err)
}

// NotSupported returns a not-supported error carrying a descriptive message.
func NotSupported(format string, args ...any) error {
	return &Error{Kind: KindNotSupported, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or zero if err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsIO reports whether err is a local I/O error.
func IsIO(err error) bool { return errors.Is(err, ErrIO) }

// IsNetwork reports whether err is a network error.
func IsNetwork(err error) bool { return errors.Is(err, ErrNetwork) }

// IsNotSupported reports whether err is a not-supported error.
func IsNotSupported(err error) bool { return errors.Is(err, ErrNotSupported) }

func classify(kind Kind, op, location string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: kind, Op: op, Location: location, Err: err}
}

// StatusError reports an unexpected status code returned by a remote
// service.
type StatusError struct {
	Code int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if text := http.StatusText(e.Code); text != "" {
		return fmt.Sprintf("unexpected status code: %d %s", e.Code, text)
	}
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

// StatusCode extracts the remote status code from err.
func StatusCode(err error) (int, bool) {
	var s *StatusError
	if errors.As(err, &s) {
		return s.Code, true
	}
	return 0, false
}

// Append combines the provided error with a list of errors.
func Append(err error, errs ...error) error {
	if err == nil && len(errs) == 0 {
		return nil
	}
	// Using type casting instead of errors.As is intentional.
	var mErr MultiError
	if e, ok := err.(MultiError); ok {
		mErr = e
	} else if err != nil {
		mErr = MultiError{err}
	}
	for _, e := range errs {
		if e == nil {
			continue
		}
		if m, ok := e.(MultiError); ok {
			mErr = append(mErr, m...)
		} else {
			mErr = append(mErr, e)
		}
	}
	switch len(mErr) {
	case 0:
		return nil
	case 1:
		return mErr[0]
	default:
		return mErr
	}
}

// MultiError is a collection of errors.
type MultiError []error

// Error implements the error interface.
func (m MultiError) Error() string {
	if len(m) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("following errors occurred: [")
	for i, err := range m {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(err.Error())
	}
	b.WriteString("]")
	return b.String()
}

// Unwrap unwraps all errors.
func (m MultiError) Unwrap() []error {
	return m
}
