// Package secp256k1 defines a backend-agnostic API for secp256k1 keys and
// recoverable ECDSA signatures.
//
// Callers program against three capabilities, PrivateKey, PublicKey and
// SignatureAndRecovery, obtained from the factories grouped in an Adapter.
// Adapters are interchangeable engines:
//
//   - pure: in-heap arithmetic (package pure)
//   - wasm: a compiled module running in a wazero linear memory (package wasm)
//
// Swapping engines changes the Adapter value only, never the call sites:
//
//	adapter := pure.New()
//	key, err := adapter.PrivateKey.Random()
//	if err != nil {
//	    return err
//	}
//	defer key.Free()
//
//	sig, err := key.Sign(memory.Own(digest))
//	if err != nil {
//	    return err
//	}
//	defer sig.Free()
//
// # Ownership
//
// Every handle owns its backend resource and must be freed exactly once;
// Free is idempotent and every method on a freed handle fails with ErrFreed
// as the cause. Byte inputs and outputs are memory.Copiable capsules; see
// package memory for the ownership modes.
//
// # Errors
//
// Every fallible method returns a *Error of exactly one Kind. Backend errors
// are kept as the cause:
//
//	if errors.Is(err, secp256k1.ErrImport) {
//	    // malformed or out-of-range input
//	}
//
// # Active adapter
//
// Set and Get manage a process-wide adapter slot intended to be configured
// once at start-up. Libraries should prefer taking an *Adapter explicitly.
package secp256k1
