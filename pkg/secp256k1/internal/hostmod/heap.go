package hostmod

import (
	"math"
	"sort"

	"github.com/tetratelabs/wazero/api"
)

type span struct {
	off  uint32
	size uint32
}

// heap is a first-fit allocator over a linear memory. Offsets below heapBase
// are never handed out so that 0 can mean "null".
type heap struct {
	mem      api.Memory
	maxPages uint32
	top      uint32
	free     []span // sorted by offset, coalesced
	used     map[uint32]uint32
}

func newHeap(mem api.Memory, maxPages uint32) *heap {
	return &heap{
		mem:      mem,
		maxPages: maxPages,
		top:      heapBase,
		used:     make(map[uint32]uint32),
	}
}

func (h *heap) alloc(n uint32) (uint32, bool) {
	if n == 0 {
		n = 1
	}
	if n > math.MaxUint32-allocAlign {
		return 0, false
	}
	size := (n + allocAlign - 1) &^ (allocAlign - 1)

	for i, s := range h.free {
		if s.size < size {
			continue
		}
		if s.size == size {
			h.free = append(h.free[:i], h.free[i+1:]...)
		} else {
			h.free[i] = span{off: s.off + size, size: s.size - size}
		}
		h.used[s.off] = size
		return s.off, true
	}

	end := uint64(h.top) + uint64(size)
	if end > math.MaxUint32 {
		return 0, false
	}
	if end > uint64(h.mem.Size()) && !h.grow(end) {
		return 0, false
	}
	ptr := h.top
	h.top = uint32(end)
	h.used[ptr] = size
	return ptr, true
}

func (h *heap) grow(end uint64) bool {
	have := uint64(h.mem.Size())
	need := (end - have + pageSize - 1) / pageSize
	if h.maxPages != 0 && have/pageSize+need > uint64(h.maxPages) {
		return false
	}
	_, ok := h.mem.Grow(uint32(need))
	return ok
}

// release zeroizes and frees the block at ptr. It reports false for pointers
// that are not live allocations, including double frees.
func (h *heap) release(ptr uint32) bool {
	size, ok := h.used[ptr]
	if !ok {
		return false
	}
	delete(h.used, ptr)
	if b, ok := h.mem.Read(ptr, size); ok {
		clear(b)
	}
	h.insertFree(span{off: ptr, size: size})
	return true
}

func (h *heap) insertFree(s span) {
	i := sort.Search(len(h.free), func(i int) bool { return h.free[i].off > s.off })
	h.free = append(h.free, span{})
	copy(h.free[i+1:], h.free[i:])
	h.free[i] = s

	if i+1 < len(h.free) && h.free[i].off+h.free[i].size == h.free[i+1].off {
		h.free[i].size += h.free[i+1].size
		h.free = append(h.free[:i+1], h.free[i+2:]...)
	}
	if i > 0 && h.free[i-1].off+h.free[i-1].size == h.free[i].off {
		h.free[i-1].size += h.free[i].size
		h.free = append(h.free[:i], h.free[i+1:]...)
	}

	if n := len(h.free); n > 0 {
		last := h.free[n-1]
		if last.off+last.size == h.top {
			h.top = last.off
			h.free = h.free[:n-1]
		}
	}
}

// sizeOf returns the usable size of a live block.
func (h *heap) sizeOf(ptr uint32) (uint32, bool) {
	size, ok := h.used[ptr]
	return size, ok
}

func (h *heap) live() uint32 {
	return uint32(len(h.used))
}
