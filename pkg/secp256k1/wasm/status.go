package wasm

import (
	"fmt"

	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/internal/hostmod"
)

// StatusError is the cause reported when an engine export fails.
type StatusError struct {
	Export string
	Code   uint32
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("wasm: %s: %s (status %d)", e.Export, statusText(e.Code), e.Code)
}

// Unwrap exposes ErrOutOfMemory for allocation failures.
func (e *StatusError) Unwrap() error {
	if e.Code == hostmod.StatusMemory {
		return ErrOutOfMemory
	}
	return nil
}

func statusText(code uint32) string {
	switch code {
	case hostmod.StatusOK:
		return "no error recorded"
	case hostmod.StatusParam:
		return "invalid parameter"
	case hostmod.StatusMemory:
		return "out of memory"
	case hostmod.StatusInvalidKey:
		return "invalid private key"
	case hostmod.StatusInvalidPoint:
		return "invalid public key"
	case hostmod.StatusInvalidSignature:
		return "invalid signature"
	case hostmod.StatusRecoveryFailed:
		return "recovery failed"
	case hostmod.StatusEntropy:
		return "entropy source failed"
	default:
		return "unknown error"
	}
}
