package forge

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes forge failures for the UI's error policy.
type ErrorKind int

const (
	// KindApi means the remote call failed or returned an unexpected shape.
	KindApi ErrorKind = iota
	// KindAuth means no usable credential.
	KindAuth
	// KindIo means a local file or process failure.
	KindIo
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindIo:
		return "io"
	}
	return "api"
}

type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func apiErrorf(format string, args ...any) error {
	return &Error{Kind: KindApi, Msg: fmt.Sprintf(format, args...)}
}

// ApiError wraps err as a remote-call failure.
func ApiError(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindApi, Err: err}
}

// AuthError reports a missing or unusable credential.
func AuthError(msg string) error {
	return &Error{Kind: KindAuth, Msg: msg}
}

// IoError wraps a local file or process failure.
func IoError(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindIo, Err: err}
}

// IsKind reports whether err is a forge error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == kind
}
