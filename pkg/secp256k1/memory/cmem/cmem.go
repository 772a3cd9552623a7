//go:build cgo && !windows

package cmem

/*
#include <stdlib.h>
#include <string.h>
*/
import "C"

import (
	"runtime"
	"sync/atomic"
	"unsafe"

	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/memory"
)

var live atomic.Int64

// region is a malloc'd span. The pointer is never exposed outside this
// package.
type region struct {
	ptr  unsafe.Pointer
	size int
}

func (r *region) Bytes() []byte {
	if r.ptr == nil {
		return nil
	}
	return unsafe.Slice((*byte)(r.ptr), r.size)
}

func (r *region) Free() {
	if r.ptr == nil {
		return
	}
	C.memset(r.ptr, 0, C.size_t(r.size))
	C.free(r.ptr)
	r.ptr = nil
	live.Add(-1)
	runtime.SetFinalizer(r, nil)
}

// Alloc copies data into a freshly malloc'd buffer and wraps it as a foreign
// capsule. Empty input still allocates one byte so the capsule has a distinct
// address.
func Alloc(data []byte) (*memory.Foreign, error) {
	size := len(data)
	n := size
	if n == 0 {
		n = 1
	}

	ptr := C.malloc(C.size_t(n))
	if ptr == nil {
		return nil, ErrOutOfMemory
	}
	if size > 0 {
		C.memcpy(ptr, unsafe.Pointer(&data[0]), C.size_t(size))
	}
	live.Add(1)

	r := &region{ptr: ptr, size: size}
	runtime.SetFinalizer(r, (*region).Free)
	return memory.WrapForeign(r), nil
}

// Live returns the number of buffers allocated by Alloc and not yet freed.
func Live() int64 {
	return live.Load()
}
