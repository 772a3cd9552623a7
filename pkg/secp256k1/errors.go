package secp256k1

import (
	"errors"
	"fmt"
)

// Kind classifies the operation category that failed.
type Kind uint8

const (
	KindGenerate Kind = iota + 1
	KindImport
	KindExport
	KindConvert
	KindSign
	KindVerify
	KindRecover
)

// String returns the fixed message for the kind.
func (k Kind) String() string {
	switch k {
	case KindGenerate:
		return "could not generate"
	case KindImport:
		return "could not import"
	case KindExport:
		return "could not export"
	case KindConvert:
		return "could not convert"
	case KindSign:
		return "could not sign"
	case KindVerify:
		return "could not verify"
	case KindRecover:
		return "could not recover"
	default:
		return "unknown error"
	}
}

// Name returns the taxonomy name, e.g. "ImportError".
func (k Kind) Name() string {
	switch k {
	case KindGenerate:
		return "GenerateError"
	case KindImport:
		return "ImportError"
	case KindExport:
		return "ExportError"
	case KindConvert:
		return "ConvertError"
	case KindSign:
		return "SignError"
	case KindVerify:
		return "VerifyError"
	case KindRecover:
		return "RecoverError"
	default:
		return "UnknownError"
	}
}

// Error is the only error type returned across the adapter boundary. Err
// holds the backend-specific cause.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "secp256k1: " + e.Kind.String()
	}
	return fmt.Sprintf("secp256k1: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind when that error carries no
// cause, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrGenerate = &Error{Kind: KindGenerate}
	ErrImport   = &Error{Kind: KindImport}
	ErrExport   = &Error{Kind: KindExport}
	ErrConvert  = &Error{Kind: KindConvert}
	ErrSign     = &Error{Kind: KindSign}
	ErrVerify   = &Error{Kind: KindVerify}
	ErrRecover  = &Error{Kind: KindRecover}
)

// Causes shared by all adapters.
var (
	// ErrFreed is the cause when a handle is used after Free.
	ErrFreed = errors.New("secp256k1: handle already freed")

	// ErrForeignHandle is the cause when a handle created by a different
	// engine instance is passed where a native handle is required and cannot
	// be converted.
	ErrForeignHandle = errors.New("secp256k1: handle belongs to another engine")

	// ErrNoAdapter is returned by Get when no adapter is active.
	ErrNoAdapter = errors.New("secp256k1: no active adapter")

	// ErrInvalidLength is the cause for inputs of the wrong size.
	ErrInvalidLength = errors.New("secp256k1: invalid length")

	// ErrEmptyDigest is the cause when a digest has no bytes.
	ErrEmptyDigest = errors.New("secp256k1: empty digest")

	// ErrInvalidRecoveryID is the cause for recovery ids outside [0, 3].
	ErrInvalidRecoveryID = errors.New("secp256k1: recovery id out of range")
)

// Wrap classifies cause under kind. Any *Error in cause, directly or inside
// joined causes, loses its kind so that exactly one kind reaches the caller.
// Wrap returns nil for a nil cause.
func Wrap(kind Kind, cause error) error {
	if cause == nil {
		return nil
	}
	if e, ok := cause.(*Error); ok && e.Kind == kind {
		return e
	}
	cause, _ = untag(cause)
	return &Error{Kind: kind, Err: cause}
}

// untag strips *Error layers from err and from every branch of a joined
// error. It reports whether anything was stripped.
func untag(err error) (error, bool) {
	switch e := err.(type) {
	case *Error:
		if e.Err == nil {
			return nil, true
		}
		inner, _ := untag(e.Err)
		return inner, true
	case interface{ Unwrap() []error }:
		var (
			errs    []error
			changed bool
		)
		for _, c := range e.Unwrap() {
			u, ok := untag(c)
			changed = changed || ok
			if u != nil {
				errs = append(errs, u)
			}
		}
		if !changed {
			return err, false
		}
		return &joined{msg: err.Error(), errs: errs}, true
	default:
		return err, false
	}
}

// joined keeps the message of a rebuilt multi-cause error.
type joined struct {
	msg  string
	errs []error
}

func (j *joined) Error() string { return j.msg }

func (j *joined) Unwrap() []error { return j.errs }

// KindOf reports the kind of err if it is (or wraps) a *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// LengthError builds an ErrInvalidLength cause that records what was
// expected.
func LengthError(what string, got int, want ...int) error {
	return fmt.Errorf("%w: %s must be %v bytes, got %d", ErrInvalidLength, what, want, got)
}
