package memory

import (
	"io"
	"sync"
)

// Region is a span of memory owned by a foreign allocator.
//
// Bytes returns the current view of the span. Views may be invalidated when
// the foreign allocator grows its memory, so Foreign never caches them.
// Free returns the span to its allocator; it is called at most once.
type Region interface {
	Bytes() []byte
	Free()
}

// Foreign is a zero-copy capsule over a Region.
type Foreign struct {
	mu     sync.Mutex
	region Region
	n      int
}

var _ Copiable = (*Foreign)(nil)

// WrapForeign takes ownership of r. The region is released by Free.
func WrapForeign(r Region) *Foreign {
	f := &Foreign{region: r}
	if r != nil {
		f.n = len(r.Bytes())
	}
	return f
}

// Region returns the wrapped region, or nil after Free. Allocators use it to
// recognise their own capsules and consume them in place.
func (f *Foreign) Region() Region {
	if f == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.region
}

// Bytes returns a view into foreign memory, or nil after Free.
func (f *Foreign) Bytes() []byte {
	r := f.Region()
	if r == nil {
		return nil
	}
	return r.Bytes()
}

// Len returns the size of the region, or 0 after Free.
func (f *Foreign) Len() int {
	if f.Region() == nil {
		return 0
	}
	return f.n
}

// Copy materializes the region into a heap slice.
func (f *Foreign) Copy() []byte {
	b := f.Bytes()
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// CopyAndFree materializes the region and releases it.
func (f *Foreign) CopyAndFree() []byte {
	out := f.Copy()
	f.Free()
	return out
}

// WriteTo writes the region to w without copying it to the heap first.
func (f *Foreign) WriteTo(w io.Writer) (int64, error) {
	return writeTo(w, f.Bytes())
}

// Free zeroizes the region and returns it to its allocator. Subsequent calls
// are no-ops.
func (f *Foreign) Free() {
	if f == nil {
		return
	}
	f.mu.Lock()
	r := f.region
	f.region = nil
	f.mu.Unlock()

	if r == nil {
		return
	}
	Zeroize(r.Bytes())
	r.Free()
}

// Freed reports whether the region has been released.
func (f *Foreign) Freed() bool {
	return f.Region() == nil
}
