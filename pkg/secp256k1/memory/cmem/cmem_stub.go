//go:build !cgo || windows

package cmem

import "github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/memory"

// Alloc is unavailable without cgo.
func Alloc(data []byte) (*memory.Foreign, error) {
	return nil, ErrNotBuilt
}

// Live always returns 0 without cgo.
func Live() int64 { return 0 }
