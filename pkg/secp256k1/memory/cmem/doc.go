// Package cmem places byte capsules in C-heap memory.
//
// It is the only package in the module that imports "C". Buffers allocated
// here are owned by the C allocator: the returned capsule must be freed, which
// zeroizes the buffer and calls free(3). A finalizer frees buffers that become
// unreachable without an explicit Free, but callers should not rely on it.
//
// Without cgo (or on Windows) Alloc returns ErrNotBuilt.
package cmem
