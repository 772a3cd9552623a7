package secp256k1

import "github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/memory"

// ZeroizeBytes overwrites the provided slice with zeros and prevents compiler
// dead store elimination using runtime.KeepAlive.
//
// This cannot guarantee complete sanitization because of copies made by the
// garbage collector or the engines, but it is applied to every temporary
// buffer that held a private scalar.
func ZeroizeBytes(buf []byte) {
	memory.Zeroize(buf)
}
