// Package pure is the in-heap secp256k1 adapter. All arithmetic runs in Go
// via btcec/v2; no foreign memory is involved, so every capsule it returns
// owns a heap slice.
package pure
