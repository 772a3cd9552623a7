package wasm

import (
	"context"
	"fmt"
	"runtime"

	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1"
	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/internal/hostmod"
	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/memory"
)

// region is a linear-memory allocation made through the alloc export.
type region struct {
	m    *Module
	ptr  uint32
	size uint32
}

var _ memory.Region = (*region)(nil)

// Bytes returns a fresh view; views do not survive memory growth.
func (r *region) Bytes() []byte {
	b, ok := r.m.mem.Read(r.ptr, r.size)
	if !ok {
		return nil
	}
	return b
}

func (r *region) Free() {
	if _, err := r.m.invoke(hostmod.ExportFree, r.ptr); err != nil {
		r.m.log.Debug(context.Background(), "free failed", "ptr", r.ptr, "error", err)
	}
}

// alloc reserves n bytes of linear memory as a foreign capsule.
func (m *Module) alloc(n uint32) (*memory.Foreign, *region, error) {
	ptr, err := m.create(hostmod.ExportAlloc, n)
	if err != nil {
		return nil, nil, err
	}
	r := &region{m: m, ptr: ptr, size: n}
	return memory.WrapForeign(r), r, nil
}

// place copies b into a new allocation.
func (m *Module) place(b []byte) (*memory.Foreign, error) {
	f, r, err := m.alloc(uint32(len(b)))
	if err != nil {
		return nil, err
	}
	if len(b) > 0 && !m.mem.Write(r.ptr, b) {
		f.Free()
		return nil, fmt.Errorf("wasm: write %d bytes at %d: %w", len(b), r.ptr, ErrOutOfMemory)
	}
	return f, nil
}

// arg locates input bytes inside linear memory.
type arg struct {
	ptr uint32
	n   uint32
}

// view reads the argument back. The view is valid until the next call into
// the engine.
func (m *Module) view(a arg) []byte {
	b, _ := m.mem.Read(a.ptr, a.n)
	return b
}

// input makes c addressable by the engine. A capsule allocated by m is used
// in place; anything else is copied into a temporary allocation. release
// frees the temporary and, when c was moved in, c itself. It must always be
// called, and only after the engine is done with the argument.
func (m *Module) input(c memory.Copiable) (arg, func(), error) {
	inner, owned := memory.Take(c)
	release := func() {}
	if owned {
		release = inner.Free
	}

	if f, ok := inner.(*memory.Foreign); ok {
		if r, ok := f.Region().(*region); ok && r.m == m {
			return arg{ptr: r.ptr, n: r.size}, func() {
				release()
				runtime.KeepAlive(f)
			}, nil
		}
	}

	b, err := memory.View(inner)
	if err != nil {
		release()
		return arg{}, func() {}, err
	}
	tmp, err := m.place(b)
	if err != nil {
		release()
		return arg{}, func() {}, err
	}
	r := tmp.Region().(*region)
	return arg{ptr: r.ptr, n: r.size}, func() {
		tmp.Free()
		release()
	}, nil
}

// digest is input for pre-hashed messages; empty digests are rejected.
func (m *Module) digest(c memory.Copiable) (arg, func(), error) {
	a, release, err := m.input(c)
	if err != nil {
		return a, release, err
	}
	if a.n == 0 {
		release()
		return arg{}, func() {}, secp256k1.ErrEmptyDigest
	}
	return a, release, nil
}

// output allocates n bytes for fill to write through an export, then copies
// the result to the heap and frees the allocation. fill reports how many
// bytes it wrote.
func (m *Module) output(n uint32, fill func(out uint32) (uint32, error)) (memory.Copiable, error) {
	f, r, err := m.alloc(n)
	if err != nil {
		return nil, err
	}
	written, err := fill(r.ptr)
	if err != nil {
		f.Free()
		return nil, err
	}
	b := f.CopyAndFree()
	if written != n {
		secp256k1.ZeroizeBytes(b)
		return nil, fmt.Errorf("wasm: engine wrote %d bytes, want %d", written, n)
	}
	return memory.Own(b), nil
}
