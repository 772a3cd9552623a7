package memory

import (
	"errors"
	"io"
	"runtime"
)

var (
	// ErrFreed is returned when a capsule is read after it was released.
	ErrFreed = errors.New("memory: capsule already freed")

	// ErrNil is returned when a nil capsule is passed where bytes are required.
	ErrNil = errors.New("memory: nil capsule")
)

// Copiable is a read-only view over bytes with deterministic release.
//
// Bytes returns nil once the capsule has been freed. The returned slice is a
// view: for foreign capsules it aliases memory that is reclaimed by Free, so
// callers that need to keep the bytes must use Copy.
type Copiable interface {
	Bytes() []byte
	Len() int
	Copy() []byte
	CopyAndFree() []byte
	WriteTo(w io.Writer) (int64, error)
	Free()
	Freed() bool
}

// View returns the read view of c, rejecting nil and released capsules.
func View(c Copiable) ([]byte, error) {
	if c == nil {
		return nil, ErrNil
	}
	if c.Freed() {
		return nil, ErrFreed
	}
	return c.Bytes(), nil
}

// Zeroize overwrites buf with zeros. runtime.KeepAlive keeps the stores from
// being eliminated.
func Zeroize(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
	runtime.KeepAlive(buf)
}

func writeTo(w io.Writer, b []byte) (int64, error) {
	if b == nil {
		return 0, ErrFreed
	}
	n, err := w.Write(b)
	return int64(n), err
}
