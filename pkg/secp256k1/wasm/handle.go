package wasm

import (
	"context"

	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1"
)

// handle is the offset of an engine object together with the export that
// releases it.
type handle struct {
	m      *Module
	ptr    uint32
	freeFn string
}

func (h *handle) live() (uint32, error) {
	if h == nil || h.ptr == 0 {
		return 0, secp256k1.ErrFreed
	}
	return h.ptr, nil
}

// release calls the free export once. It reports whether anything was
// released.
func (h *handle) release() bool {
	if h == nil || h.ptr == 0 {
		return false
	}
	ptr := h.ptr
	h.ptr = 0
	if _, err := h.m.invoke(h.freeFn, ptr); err != nil {
		h.m.log.Debug(context.Background(), "handle free failed", "export", h.freeFn, "error", err)
	}
	return true
}
